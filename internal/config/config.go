package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/MimeLyc/transcribe-videos/pkg/log"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Config holds all application configuration.
// Values come from environment variables (optionally seeded from a .env file)
// and may be overridden by Options built from command-line flags.
//
// Environment Variables:
// Deepgram:
// - DG_KEY: Deepgram API key (DEEPGRAM_API_KEY is accepted as a fallback)
// - DG_API_URL: API base URL (default: https://api.deepgram.com/v1)
// - DG_MODEL: model name (optional, service default when empty)
// - DG_LANGUAGE: BCP 47 language of the audio (optional)
// - DG_TIMEOUT: request timeout in seconds, 0 disables (default: 0)
//
// Media:
// - FFMPEG_PATH: transcoder binary (default: ffmpeg)
// - WORK_DIR: directory downloads are written to (default: .)
//
// System:
// - LOG_LEVEL: debug, info, warn, error (default: info)
// - HISTORY_DB: sqlite file recording runs, empty disables (default: "")
type Config struct {
	Deepgram DeepgramConfig `json:"deepgram"`
	Media    MediaConfig    `json:"media"`
	System   SystemConfig   `json:"system"`
}

type DeepgramConfig struct {
	APIKey   string       `json:"-"`
	APIURL   string       `json:"api_url"`
	Model    string       `json:"model"`
	Language language.Tag `json:"language"`
	Timeout  int          `json:"timeout"`
}

// LanguageCode returns the configured language or "" when unset.
func (c DeepgramConfig) LanguageCode() string {
	if c.Language == language.Und {
		return ""
	}
	return c.Language.String()
}

type MediaConfig struct {
	FFmpegPath string `json:"ffmpeg_path"`
	WorkDir    string `json:"work_dir"`
}

type SystemConfig struct {
	LogLevel  string `json:"log_level"`
	HistoryDB string `json:"history_db"`
}

// Option is a function type for configuring Config
type Option func(*Config)

func WithWorkDir(dir string) Option {
	return func(c *Config) {
		if strings.TrimSpace(dir) != "" {
			c.Media.WorkDir = dir
		}
	}
}

func WithFFmpegPath(path string) Option {
	return func(c *Config) {
		if strings.TrimSpace(path) != "" {
			c.Media.FFmpegPath = path
		}
	}
}

func WithHistoryDB(path string) Option {
	return func(c *Config) {
		if strings.TrimSpace(path) != "" {
			c.System.HistoryDB = path
		}
	}
}

func WithLogLevel(level string) Option {
	return func(c *Config) {
		if strings.TrimSpace(level) != "" {
			c.System.LogLevel = level
		}
	}
}

// LoadDotEnv loads variables from the given .env files without overriding
// the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	tag, err := parseLanguage(getEnvString("DG_LANGUAGE", ""))
	if err != nil {
		return nil, err
	}

	config := &Config{
		Deepgram: DeepgramConfig{
			APIKey:   getEnvString("DG_KEY", getEnvString("DEEPGRAM_API_KEY", "")),
			APIURL:   getEnvString("DG_API_URL", "https://api.deepgram.com/v1"),
			Model:    getEnvString("DG_MODEL", ""),
			Language: tag,
			Timeout:  getEnvInt("DG_TIMEOUT", 0),
		},
		Media: MediaConfig{
			FFmpegPath: getEnvString("FFMPEG_PATH", "ffmpeg"),
			WorkDir:    getEnvString("WORK_DIR", "."),
		},
		System: SystemConfig{
			LogLevel:  getEnvString("LOG_LEVEL", "info"),
			HistoryDB: getEnvString("HISTORY_DB", ""),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Debug("Config: api_url=%s model=%q language=%q ffmpeg=%s work_dir=%s history_db=%q",
		config.Deepgram.APIURL,
		config.Deepgram.Model,
		config.Deepgram.LanguageCode(),
		config.Media.FFmpegPath,
		config.Media.WorkDir,
		config.System.HistoryDB)
	return config, nil
}

// validate checks the values that must be sane before any run starts.
// The API key is checked by the Deepgram client itself so that commands
// which never transcribe (history) work without it.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Deepgram.APIURL) == "" {
		return fmt.Errorf("DG_API_URL must not be empty")
	}
	if c.Deepgram.Timeout < 0 {
		return fmt.Errorf("DG_TIMEOUT must not be negative")
	}
	if strings.TrimSpace(c.Media.FFmpegPath) == "" {
		return fmt.Errorf("FFMPEG_PATH must not be empty")
	}
	if strings.TrimSpace(c.Media.WorkDir) == "" {
		return fmt.Errorf("WORK_DIR must not be empty")
	}
	return nil
}

func parseLanguage(raw string) (language.Tag, error) {
	if strings.TrimSpace(raw) == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, fmt.Errorf("invalid DG_LANGUAGE %q: %w", raw, err)
	}
	return tag, nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
