package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MimeLyc/transcribe-videos/internal/deepgram"
	"github.com/MimeLyc/transcribe-videos/pkg/file"
	"github.com/creachadair/atomicfile"
)

// PathFor returns the transcript path of a video: "<video>.json".
func PathFor(videoPath string) string {
	return file.AppendExt(videoPath, ".json")
}

// Write stores results at path as two-space indented JSON, replacing any
// existing file in one rename.
func Write(path string, results deepgram.Results) error {
	if !results.Defined() {
		return deepgram.ErrResultUndefined
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, results, "", "  "); err != nil {
		return fmt.Errorf("format transcript: %w", err)
	}
	buf.WriteByte('\n')

	f, err := atomicfile.New(path, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Cancel()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
