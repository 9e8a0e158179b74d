package deepgram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okResponse = `{
	"metadata": {"request_id": "req-1", "duration": 1.5},
	"results": {
		"channels": [{
			"alternatives": [{
				"transcript": "Hello, world.",
				"confidence": 0.98,
				"words": [{"word": "hello", "start": 0.1, "end": 0.4, "confidence": 0.99, "punctuated_word": "Hello,"}]
			}]
		}]
	}
}`

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		APIKey:    "test-key",
		APIURL:    url,
		Punctuate: true,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	config := &Config{
		APIKey: "test-key",
		APIURL: "https://api.example.com/v1/",
	}

	client, err := NewClient(config)
	require.NoError(t, err)
	assert.Equal(t, config, client.config)
	assert.Equal(t, "https://api.example.com/v1", client.baseURL)
	assert.Zero(t, client.httpClient.Timeout)

	_, err = NewClient(&Config{APIURL: "https://api.example.com/v1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "API key is required")

	_, err = NewClient(&Config{APIKey: "k", APIURL: "u", Timeout: -1})
	assert.Error(t, err)
}

func TestClient_TranscribeFile(t *testing.T) {
	audio := []byte("RIFF....WAVEfmt fake pcm")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/listen", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("punctuate"))
		assert.Equal(t, "Token test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/wav", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, audio, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okResponse))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "deepgram.mp4.wav")
	require.NoError(t, os.WriteFile(path, audio, 0o644))

	results, err := newTestClient(t, server.URL+"/v1").TranscribeFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, results.Defined())
	assert.Equal(t, "Hello, world.", results.Transcript())
	assert.Contains(t, string(results), `"punctuated_word": "Hello,"`)
}

func TestClient_TranscribeFile_ResultUndefined(t *testing.T) {
	for name, body := range map[string]string{
		"missing": `{"metadata": {"request_id": "req-2"}}`,
		"null":    `{"metadata": {}, "results": null}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer server.Close()

			path := filepath.Join(t.TempDir(), "a.wav")
			require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

			results, err := newTestClient(t, server.URL).TranscribeFile(context.Background(), path)
			assert.Nil(t, results)
			assert.True(t, errors.Is(err, ErrResultUndefined))
			assert.EqualError(t, err, "transcription result is undefined")
		})
	}
}

func TestClient_PreRecorded_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"err_code":"INVALID_AUTH","err_msg":"Invalid credentials.","request_id":"req-3"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).PreRecorded(context.Background(), []byte("x"), MimeTypeWav)
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "INVALID_AUTH", apiErr.ErrCode)
	assert.Equal(t, "req-3", apiErr.RequestID)
	assert.Contains(t, err.Error(), "401")
	assert.False(t, errors.Is(err, ErrResultUndefined))
}

func TestClient_PreRecorded_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).PreRecorded(context.Background(), []byte("x"), MimeTypeWav)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestClient_PreRecorded_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).PreRecorded(context.Background(), []byte("x"), MimeTypeWav)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to make request")

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestClient_ListenURL(t *testing.T) {
	client, err := NewClient(&Config{
		APIKey:    "k",
		APIURL:    "https://api.deepgram.com/v1",
		Model:     "nova-2",
		Language:  "en-US",
		Punctuate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://api.deepgram.com/v1/listen?language=en-US&model=nova-2&punctuate=true", client.listenURL())

	client, err = NewClient(&Config{APIKey: "k", APIURL: "https://api.deepgram.com/v1"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.deepgram.com/v1/listen", client.listenURL())
}

func TestResults(t *testing.T) {
	assert.False(t, Results(nil).Defined())
	assert.False(t, Results(" null ").Defined())
	assert.True(t, Results(`{}`).Defined())
	assert.Equal(t, "", Results(`{}`).Transcript())
	assert.Equal(t, "", Results(`not json`).Transcript())
	assert.Equal(t, "left\nright", Results(`{"channels":[
		{"alternatives":[{"transcript":"left"}]},
		{"alternatives":[]},
		{"alternatives":[{"transcript":"right"}]}
	]}`).Transcript())

	data, err := Results(nil).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
