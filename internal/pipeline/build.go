package pipeline

import (
	"net/http"

	"github.com/MimeLyc/transcribe-videos/internal/acquire"
	"github.com/MimeLyc/transcribe-videos/internal/config"
	"github.com/MimeLyc/transcribe-videos/internal/deepgram"
	"github.com/MimeLyc/transcribe-videos/internal/history"
	"github.com/MimeLyc/transcribe-videos/internal/media"
	"github.com/MimeLyc/transcribe-videos/internal/source"
	"github.com/MimeLyc/transcribe-videos/pkg/log"
)

// NewFromConfig wires the production pipeline: Deepgram client, ffmpeg
// transcoder, local/remote/YouTube acquirers and, when configured, the
// sqlite run history. Callers must Close the returned pipeline.
func NewFromConfig(cfg *config.Config) (*Pipeline, error) {
	client, err := deepgram.NewClient(&deepgram.Config{
		APIKey:    cfg.Deepgram.APIKey,
		APIURL:    cfg.Deepgram.APIURL,
		Model:     cfg.Deepgram.Model,
		Language:  cfg.Deepgram.LanguageCode(),
		Timeout:   cfg.Deepgram.Timeout,
		Punctuate: true,
	})
	if err != nil {
		return nil, NewErrorWithCause(ErrConfig, StageTranscribe, "failed to create Deepgram client", err)
	}

	httpClient := &http.Client{}
	opts := []Option{
		WithAcquirer(source.KindRemote, acquire.NewRemote(httpClient, cfg.Media.WorkDir)),
		WithAcquirer(source.KindYouTube, acquire.NewYouTube(httpClient, cfg.Media.WorkDir)),
	}

	if cfg.System.HistoryDB != "" {
		store, err := history.NewSQLiteStore(cfg.System.HistoryDB)
		if err != nil {
			return nil, NewErrorWithCause(ErrConfig, StageAcquire, "failed to open run history", err).
				WithContext("path", cfg.System.HistoryDB)
		}
		log.Debug("Recording runs in %s", cfg.System.HistoryDB)
		opts = append(opts, WithRecorder(store))
	}

	return New(media.NewTranscoder(cfg.Media.FFmpegPath), client, opts...), nil
}
