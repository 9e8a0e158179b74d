package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/MimeLyc/transcribe-videos/pkg/file"
	"github.com/MimeLyc/transcribe-videos/pkg/log"
	"github.com/kkdai/youtube/v2"
)

// videoHost is the part of *youtube.Client the acquirer needs.
type videoHost interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// YouTube downloads the audio-only stream of a YouTube video into dir.
type YouTube struct {
	host videoHost
	dir  string
}

func NewYouTube(client *http.Client, dir string) *YouTube {
	return &YouTube{
		host: &youtube.Client{HTTPClient: client},
		dir:  dir,
	}
}

// SanitizeTitle makes a video title usable as a file name.
func SanitizeTitle(title string) string {
	return file.SanitizeName(title)
}

// VideoFileName is "<sanitized-title>-<id>.mp4", with the title shortened so
// the whole name fits in file.MaxNameBytes.
func VideoFileName(title, id string) string {
	suffix := fmt.Sprintf("-%s.mp4", id)
	return file.TruncateName(SanitizeTitle(title), file.MaxNameBytes-len(suffix)) + suffix
}

func (y *YouTube) Acquire(ctx context.Context, videoURL string) (string, error) {
	video, err := y.host.GetVideoContext(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("%w: resolve video %s: %w", ErrTransport, videoURL, err)
	}

	format, err := audioOnlyFormat(video.Formats)
	if err != nil {
		return "", fmt.Errorf("video %s: %w", video.ID, err)
	}

	name := VideoFileName(video.Title, video.ID)
	log.Info("Downloading audio of %q (itag %d, %s) to %s", video.Title, format.ItagNo, format.MimeType, name)

	stream, _, err := y.host.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("%w: open stream of %s: %w", ErrTransport, video.ID, err)
	}
	defer stream.Close()

	return writeStream(y.dir, name, stream)
}

// audioOnlyFormat picks the audio-only format with the highest bitrate.
func audioOnlyFormat(formats youtube.FormatList) (*youtube.Format, error) {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no audio-only stream available", ErrInvalidSource)
	}
	return best, nil
}
