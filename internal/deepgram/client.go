package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/MimeLyc/transcribe-videos/pkg/log"
)

// Client is a Deepgram pre-recorded transcription client.
// It is built once from Config and passed to whatever needs it.
//
// config: Configuration for the Deepgram API
// httpClient: HTTP client for API requests
// baseURL: Base URL for the Deepgram API
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Deepgram client with the given configuration
//
// Returns an error if the configuration is invalid, most commonly because
// the API key is missing from the environment.
//
// Example:
//
//	client, err := deepgram.NewClient(&deepgram.Config{
//		APIKey:    os.Getenv("DG_KEY"),
//		APIURL:    "https://api.deepgram.com/v1",
//		Punctuate: true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Client{
		config:  config,
		baseURL: strings.TrimRight(config.APIURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}, nil
}

// TranscribeFile reads the whole audio file into memory, submits it as
// audio/wav and returns the results object.
//
// A response without results fails with ErrResultUndefined.
func (c *Client) TranscribeFile(ctx context.Context, path string) (Results, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	log.Info("Sending %s (%d bytes) to Deepgram for transcription", path, len(audio))
	resp, err := c.PreRecorded(ctx, audio, MimeTypeWav)
	if err != nil {
		return nil, err
	}
	if !resp.Results.Defined() {
		return nil, ErrResultUndefined
	}
	return resp.Results, nil
}

// PreRecorded submits a complete audio payload in a single request.
//
// ctx: Context for the request
// audio: Encoded audio bytes
// mimeType: Media type of audio, e.g. MimeTypeWav
func (c *Client) PreRecorded(ctx context.Context, audio []byte, mimeType string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.listenURL(), bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range c.config.GetHeaders(mimeType) {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if os.IsTimeout(err) {
			return nil, fmt.Errorf("request timed out: %w", err)
		}
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		// best effort, the body is kept either way
		_ = json.Unmarshal(body, apiErr)
		return nil, apiErr
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	log.Debug("Deepgram response received: request_id=%s", out.RequestID)

	return &out, nil
}

func (c *Client) listenURL() string {
	query := url.Values{}
	if c.config.Punctuate {
		query.Set("punctuate", "true")
	}
	if c.config.Model != "" {
		query.Set("model", c.config.Model)
	}
	if c.config.Language != "" {
		query.Set("language", c.config.Language)
	}

	u := c.baseURL + "/listen"
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
