package deepgram

import (
	"fmt"
)

// Config holds the configuration for the Deepgram client
//
// APIKey: Deepgram API key (required)
// APIURL: API base URL, e.g. https://api.deepgram.com/v1 (required)
// Model: Optional model name, service default when empty
// Language: Optional BCP 47 language of the audio
// Timeout: Request timeout in seconds, 0 leaves the request unbounded
// Punctuate: Ask the service for punctuation-normalised output
type Config struct {
	APIKey    string `json:"-"`
	APIURL    string `json:"api_url"`
	Model     string `json:"model"`
	Language  string `json:"language"`
	Timeout   int    `json:"timeout"`
	Punctuate bool   `json:"punctuate"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.APIURL == "" {
		return fmt.Errorf("API URL is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// GetHeaders returns the headers for a pre-recorded transcription request
func (c *Config) GetHeaders(mimeType string) map[string]string {
	return map[string]string{
		"Authorization": "Token " + c.APIKey,
		"Content-Type":  mimeType,
		"Accept":        "application/json",
	}
}
