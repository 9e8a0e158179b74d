package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrTransport marks network failures while fetching a video.
	ErrTransport = errors.New("transport failure")
	// ErrInvalidSource marks a source value that cannot yield a video file.
	ErrInvalidSource = errors.New("invalid source")
	// ErrWrite marks local filesystem failures while storing a download.
	ErrWrite = errors.New("write failure")
)

// Acquirer turns a source value into a path of a video file on disk.
type Acquirer interface {
	Acquire(ctx context.Context, value string) (string, error)
}

// Local passes paths through untouched. A missing file is reported by the
// transcoder, not here.
type Local struct{}

func (Local) Acquire(_ context.Context, path string) (string, error) {
	return path, nil
}

// writeStream copies r into dir/name, truncating any existing file.
// A partially written file is left behind when the copy fails.
func writeStream(dir, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create download directory: %w", ErrWrite, err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrWrite, path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: write %s: %w", ErrTransport, path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", ErrWrite, path, err)
	}
	return path, nil
}
