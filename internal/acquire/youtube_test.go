package acquire

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kkdai/youtube/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	video     *youtube.Video
	videoErr  error
	stream    io.Reader
	streamErr error

	gotURL    string
	gotFormat *youtube.Format
}

func (f *fakeHost) GetVideoContext(_ context.Context, url string) (*youtube.Video, error) {
	f.gotURL = url
	return f.video, f.videoErr
}

func (f *fakeHost) GetStreamContext(_ context.Context, _ *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error) {
	f.gotFormat = format
	if f.streamErr != nil {
		return nil, 0, f.streamErr
	}
	return io.NopCloser(f.stream), -1, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func testVideo() *youtube.Video {
	return &youtube.Video{
		ID:    "JhU0yO43b6o",
		Title: `Deepgram: "Speech" <AI> 1/2`,
		Formats: youtube.FormatList{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Bitrate: 500000, AudioChannels: 2},
			{ItagNo: 139, MimeType: `audio/mp4; codecs="mp4a.40.5"`, Bitrate: 48000, AudioChannels: 2},
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Bitrate: 130000, AudioChannels: 2},
		},
	}
}

func TestSanitizeTitle(t *testing.T) {
	for _, c := range []string{"/", `\`, "?", "%", "*", ":", "|", `"`, "<", ">"} {
		t.Run(c, func(t *testing.T) {
			assert.Equal(t, "a-b", SanitizeTitle("a"+c+"b"))
		})
	}
}

func TestVideoFileName(t *testing.T) {
	assert.Equal(t, "Deepgram- -Speech- -AI- 1-2-JhU0yO43b6o.mp4", VideoFileName(`Deepgram: "Speech" <AI> 1/2`, "JhU0yO43b6o"))
}

func TestVideoFileName_LongTitle(t *testing.T) {
	name := VideoFileName(strings.Repeat("字", 100), "JhU0yO43b6o")

	assert.LessOrEqual(t, len(name), 255)
	assert.True(t, utf8.ValidString(name))
	assert.True(t, strings.HasPrefix(name, "字"))
	assert.True(t, strings.HasSuffix(name, "-JhU0yO43b6o.mp4"))
}

func TestYouTube_Acquire_LongTitle(t *testing.T) {
	video := testVideo()
	video.Title = strings.Repeat("字", 100)
	host := &fakeHost{video: video, stream: strings.NewReader("audio bytes")}
	dir := t.TempDir()

	path, err := (&YouTube{host: host, dir: dir}).Acquire(context.Background(), "https://youtu.be/JhU0yO43b6o")
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.LessOrEqual(t, len(filepath.Base(path)), 255)
}

func TestYouTube_Acquire(t *testing.T) {
	host := &fakeHost{video: testVideo(), stream: strings.NewReader("audio bytes")}
	dir := t.TempDir()
	y := &YouTube{host: host, dir: dir}

	path, err := y.Acquire(context.Background(), "https://www.youtube.com/watch?v=JhU0yO43b6o")
	require.NoError(t, err)

	assert.Equal(t, "https://www.youtube.com/watch?v=JhU0yO43b6o", host.gotURL)
	require.NotNil(t, host.gotFormat)
	assert.Equal(t, 140, host.gotFormat.ItagNo)
	assert.Equal(t, filepath.Join(dir, "Deepgram- -Speech- -AI- 1-2-JhU0yO43b6o.mp4"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio bytes", string(data))
}

func TestYouTube_Acquire_MetadataError(t *testing.T) {
	host := &fakeHost{videoErr: errors.New("video unavailable")}
	_, err := (&YouTube{host: host, dir: t.TempDir()}).Acquire(context.Background(), "https://youtu.be/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "video unavailable")
}

func TestYouTube_Acquire_NoAudioFormat(t *testing.T) {
	video := testVideo()
	video.Formats = video.Formats[:1]
	host := &fakeHost{video: video}

	_, err := (&YouTube{host: host, dir: t.TempDir()}).Acquire(context.Background(), "https://youtu.be/x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio-only stream")
	assert.True(t, errors.Is(err, ErrInvalidSource))
	assert.Nil(t, host.gotFormat)
}

func TestYouTube_Acquire_StreamError(t *testing.T) {
	host := &fakeHost{video: testVideo(), streamErr: errors.New("403 forbidden")}
	_, err := (&YouTube{host: host, dir: t.TempDir()}).Acquire(context.Background(), "https://youtu.be/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestYouTube_Acquire_BrokenStreamLeavesPartialFile(t *testing.T) {
	host := &fakeHost{video: testVideo(), stream: io.MultiReader(strings.NewReader("half"), failingReader{})}
	dir := t.TempDir()

	_, err := (&YouTube{host: host, dir: dir}).Acquire(context.Background(), "https://youtu.be/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	assert.FileExists(t, filepath.Join(dir, VideoFileName(testVideo().Title, "JhU0yO43b6o")))
}
