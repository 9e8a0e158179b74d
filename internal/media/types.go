package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingOutput is returned when the transcoder exits cleanly but the
// target file is not on disk.
var ErrMissingOutput = errors.New("transcoder output file not found")

// ProcessError reports a transcoder that could not be started or exited
// nonzero. Stderr holds whatever the process wrote before failing.
type ProcessError struct {
	Command  string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("error executing %s (exit %d): %v", e.Command, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("error executing %s (exit %d): %s", e.Command, e.ExitCode, stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Transcoder converts a media file into the fixed WAV encoding.
type Transcoder interface {
	ToWav(ctx context.Context, source, target string) (string, error)
}

func NewTranscoder(ffmpegPath string) Transcoder {
	return NewFfmpeg(ffmpegPath)
}
