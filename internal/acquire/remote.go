package acquire

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/MimeLyc/transcribe-videos/pkg/log"
)

// Remote downloads a video over HTTP(S) into dir.
type Remote struct {
	client *http.Client
	dir    string
}

func NewRemote(client *http.Client, dir string) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{client: client, dir: dir}
}

// FileNameFromURL returns the final path segment of rawURL.
func FileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: url %q: %w", ErrInvalidSource, rawURL, err)
	}
	if strings.HasSuffix(u.Path, "/") {
		return "", fmt.Errorf("%w: url %q has no file name in its path", ErrInvalidSource, rawURL)
	}
	name := path.Base(u.Path)
	switch name {
	case "", ".", "/", "..":
		return "", fmt.Errorf("%w: url %q has no file name in its path", ErrInvalidSource, rawURL)
	}
	return name, nil
}

// Acquire streams the body of rawURL to disk and returns the written path.
func (r *Remote) Acquire(ctx context.Context, rawURL string) (string, error) {
	name, err := FileNameFromURL(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	log.Info("Downloading %s", rawURL)
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", ErrTransport, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: GET %s: unexpected status %s", ErrTransport, rawURL, resp.Status)
	}

	out, err := writeStream(r.dir, name, resp.Body)
	if err != nil {
		return "", err
	}
	log.Info("Downloaded %s to %s", rawURL, out)
	return out, nil
}
