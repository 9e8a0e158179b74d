package pipeline

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"time"

	"github.com/MimeLyc/transcribe-videos/internal/acquire"
	"github.com/MimeLyc/transcribe-videos/internal/deepgram"
	"github.com/MimeLyc/transcribe-videos/internal/history"
	"github.com/MimeLyc/transcribe-videos/internal/media"
	"github.com/MimeLyc/transcribe-videos/internal/source"
	"github.com/MimeLyc/transcribe-videos/internal/transcript"
	"github.com/MimeLyc/transcribe-videos/pkg/log"
	"github.com/google/uuid"
)

// Transcriber submits an audio file for speech recognition.
type Transcriber interface {
	TranscribeFile(ctx context.Context, path string) (deepgram.Results, error)
}

// Recorder stores the progress of runs.
type Recorder interface {
	UpsertRun(ctx context.Context, run *history.Run) error
}

// Result describes a finished run.
type Result struct {
	RunID          string             `json:"run_id"`
	Source         source.VideoSource `json:"source"`
	VideoPath      string             `json:"video_path"`
	AudioPath      string             `json:"audio_path"`
	TranscriptPath string             `json:"transcript_path"`
	Transcript     string             `json:"transcript"`
	Language       string             `json:"language,omitempty"`
	Results        deepgram.Results   `json:"results"`
}

// Pipeline runs acquire, transcode, transcribe and persist in order.
// Each stage starts only after the previous one produced its file.
type Pipeline struct {
	acquirers       map[source.Kind]acquire.Acquirer
	transcoder      media.Transcoder
	transcriber     Transcriber
	recorder        Recorder
	writeTranscript func(path string, results deepgram.Results) error
	newID           func() string
	now             func() time.Time
}

type Option func(*Pipeline)

// WithRecorder records every run through r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithAcquirer sets or replaces the acquirer used for kind.
func WithAcquirer(kind source.Kind, a acquire.Acquirer) Option {
	return func(p *Pipeline) {
		p.acquirers[kind] = a
	}
}

func New(
	transcoder media.Transcoder,
	transcriber Transcriber,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		acquirers: map[source.Kind]acquire.Acquirer{
			source.KindLocal: acquire.Local{},
		},
		transcoder:      transcoder,
		transcriber:     transcriber,
		writeTranscript: transcript.Write,
		newID:           uuid.NewString,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close releases the recorder when it holds resources.
func (p *Pipeline) Close() error {
	if c, ok := p.recorder.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *Pipeline) TranscribeLocalVideo(ctx context.Context, path string) (*Result, error) {
	return p.runValue(ctx, source.KindLocal, path)
}

func (p *Pipeline) TranscribeRemoteVideo(ctx context.Context, url string) (*Result, error) {
	return p.runValue(ctx, source.KindRemote, url)
}

func (p *Pipeline) TranscribeYouTubeVideo(ctx context.Context, url string) (*Result, error) {
	return p.runValue(ctx, source.KindYouTube, url)
}

func (p *Pipeline) runValue(ctx context.Context, kind source.Kind, value string) (*Result, error) {
	src, err := source.New(kind, value)
	if err != nil {
		pErr := NewErrorWithCause(ErrValidation, StageAcquire, "invalid source", err).
			WithContext("kind", kind)
		log.Error("Error in transcribe %s video: %v", kind, pErr)
		return nil, pErr
	}
	return p.Run(ctx, src)
}

// Run executes one pipeline run for src. Any stage failure ends the run and
// is returned as a *PipelineError after being logged.
func (p *Pipeline) Run(ctx context.Context, src source.VideoSource) (*Result, error) {
	log.Info("Starting transcription for %s", src)

	rec := p.startRecord(ctx, src)
	res, err := p.run(ctx, src, rec)
	p.finishRecord(ctx, rec, err)

	if err != nil {
		log.Error("Error in transcribe %s video: %v", src.Kind, err)
		log.Error("Advice: %s", Advice(err))
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, src source.VideoSource, rec *history.Run) (*Result, error) {
	res := &Result{RunID: rec.ID, Source: src}

	acquirer, ok := p.acquirers[src.Kind]
	if !ok {
		return nil, NewError(ErrValidation, StageAcquire, "no acquirer for source kind").
			WithContext("kind", src.Kind)
	}

	p.enterStage(ctx, rec, StageAcquire)
	videoPath, err := acquirer.Acquire(ctx, src.Value)
	if err != nil {
		return nil, stageError(StageAcquire, ErrTransport, "failed to acquire video", err).
			WithContext("source", src.Value)
	}
	res.VideoPath = videoPath
	rec.VideoPath = videoPath

	p.enterStage(ctx, rec, StageTranscode)
	audioPath, err := p.transcoder.ToWav(ctx, videoPath, "")
	if err != nil {
		return nil, stageError(StageTranscode, ErrProcess, "failed to transcode video to wav", err).
			WithContext("video", videoPath)
	}
	res.AudioPath = audioPath
	rec.AudioPath = audioPath

	p.enterStage(ctx, rec, StageTranscribe)
	results, err := p.transcriber.TranscribeFile(ctx, audioPath)
	if err != nil {
		fallback := ErrTransport
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			fallback = ErrFileRead
		}
		return nil, stageError(StageTranscribe, fallback, "failed to transcribe audio", err).
			WithContext("audio", audioPath)
	}
	if !results.Defined() {
		return nil, NewErrorWithCause(ErrServicePayload, StageTranscribe, "empty transcription", deepgram.ErrResultUndefined)
	}
	res.Results = results
	res.Transcript = results.Transcript()
	res.Language = transcript.DetectLanguage(res.Transcript)
	rec.Language = res.Language

	p.enterStage(ctx, rec, StagePersist)
	transcriptPath := transcript.PathFor(videoPath)
	if err := p.writeTranscript(transcriptPath, results); err != nil {
		return nil, stageError(StagePersist, ErrFileWrite, "failed to write transcript", err).
			WithContext("transcript", transcriptPath)
	}
	res.TranscriptPath = transcriptPath
	rec.TranscriptPath = transcriptPath
	log.Info("Transcription saved to %s", transcriptPath)

	return res, nil
}

// stageError classifies err, using fallback when the error carries no
// recognised kind.
func stageError(stage Stage, fallback ErrorType, message string, err error) *PipelineError {
	t := Classify(err)
	if t == ErrUnknown {
		t = fallback
	}
	return NewErrorWithCause(t, stage, message, err)
}

func (p *Pipeline) startRecord(ctx context.Context, src source.VideoSource) *history.Run {
	now := p.now().UTC()
	rec := &history.Run{
		ID:        p.newID(),
		Kind:      string(src.Kind),
		Source:    src.Value,
		Status:    history.StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.record(ctx, rec)
	return rec
}

func (p *Pipeline) enterStage(ctx context.Context, rec *history.Run, stage Stage) {
	log.Debug("Run %s entering stage %s", rec.ID, stage)
	rec.Stage = string(stage)
	rec.UpdatedAt = p.now().UTC()
	p.record(ctx, rec)
}

func (p *Pipeline) finishRecord(ctx context.Context, rec *history.Run, err error) {
	rec.UpdatedAt = p.now().UTC()
	if err != nil {
		rec.Status = history.StatusFailed
		rec.Error = err.Error()
	} else {
		rec.Status = history.StatusSuccess
	}
	p.record(ctx, rec)
}

// record logs and ignores recorder failures.
func (p *Pipeline) record(ctx context.Context, rec *history.Run) {
	if p.recorder == nil {
		return
	}
	if err := p.recorder.UpsertRun(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn("Failed to record run %s: %v", rec.ID, err)
	}
}
