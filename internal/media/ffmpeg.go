package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/MimeLyc/transcribe-videos/pkg/file"
	"github.com/MimeLyc/transcribe-videos/pkg/log"
)

type ffmpeg struct {
	ffmpegCmd string
	stat      func(name string) (os.FileInfo, error)
}

func NewFfmpeg(
	ffmpegPath string,
) ffmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return ffmpeg{
		ffmpegCmd: ffmpegPath,
		stat:      os.Stat,
	}
}

// WavPath is the default transcoder target for source.
func WavPath(source string) string {
	return file.AppendExt(source, ".wav")
}

// ToWav transcodes source into target, or into WavPath(source) when target
// is empty, and returns the target path. An existing target is overwritten.
func (ff ffmpeg) ToWav(
	ctx context.Context,
	source string,
	target string,
) (string, error) {
	if target == "" {
		target = WavPath(source)
	}

	args := ff.toWavArgs(source, target)
	cmdPath, err := exec.LookPath(ff.ffmpegCmd)
	if err != nil {
		return "", &ProcessError{Command: ff.ffmpegCmd, Args: args, ExitCode: -1, Err: err}
	}

	log.Debug("Running %s %v", cmdPath, args)
	cmd := exec.CommandContext(ctx, cmdPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &ProcessError{
			Command:  ff.ffmpegCmd,
			Args:     args,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	// a zero exit code is not proof that ffmpeg wrote anything
	if _, err := ff.stat(target); err != nil {
		return "", fmt.Errorf("%w: %s", ErrMissingOutput, target)
	}

	return target, nil
}

func (ffmpeg) toWavArgs(source, target string) []string {
	return []string{
		"-hide_banner",
		"-y", // overwrite target
		"-i", source,
		target,
	}
}
