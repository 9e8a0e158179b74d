package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/MimeLyc/transcribe-videos/internal/acquire"
	"github.com/MimeLyc/transcribe-videos/internal/deepgram"
	"github.com/MimeLyc/transcribe-videos/internal/media"
)

type ErrorType int

const (
	ErrTransport ErrorType = iota
	ErrProcess
	ErrMissingArtifact
	ErrServicePayload
	ErrAPI
	ErrFileRead
	ErrFileWrite
	ErrValidation
	ErrConfig
	ErrUnknown
)

func (t ErrorType) String() string {
	switch t {
	case ErrTransport:
		return "Transport"
	case ErrProcess:
		return "Process"
	case ErrMissingArtifact:
		return "MissingArtifact"
	case ErrServicePayload:
		return "ServicePayload"
	case ErrAPI:
		return "API"
	case ErrFileRead:
		return "FileRead"
	case ErrFileWrite:
		return "FileWrite"
	case ErrValidation:
		return "Validation"
	case ErrConfig:
		return "Config"
	default:
		return "Unknown"
	}
}

// Stage names one step of a run.
type Stage string

const (
	StageAcquire    Stage = "acquire"
	StageTranscode  Stage = "transcode"
	StageTranscribe Stage = "transcribe"
	StagePersist    Stage = "persist"
)

type PipelineError struct {
	Type    ErrorType
	Stage   Stage
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, stage Stage, message string) *PipelineError {
	return &PipelineError{
		Type:    errorType,
		Stage:   stage,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, stage Stage, message string, cause error) *PipelineError {
	e := NewError(errorType, stage, message)
	e.Cause = cause
	return e
}

func (e *PipelineError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s: %s", e.Type, e.Stage, e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(ctxParts)
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	e.Context[key] = value
	return e
}

func IsErrorType(err error, errorType ErrorType) bool {
	var pErr *PipelineError
	if errors.As(err, &pErr) {
		return pErr.Type == errorType
	}
	return false
}

// Classify maps an error returned by a stage onto the error taxonomy.
func Classify(err error) ErrorType {
	var (
		pErr    *PipelineError
		procErr *media.ProcessError
		apiErr  *deepgram.APIError
	)
	switch {
	case errors.As(err, &pErr):
		return pErr.Type
	case errors.Is(err, deepgram.ErrResultUndefined):
		return ErrServicePayload
	case errors.Is(err, media.ErrMissingOutput):
		return ErrMissingArtifact
	case errors.As(err, &procErr):
		return ErrProcess
	case errors.As(err, &apiErr):
		return ErrAPI
	case errors.Is(err, acquire.ErrTransport):
		return ErrTransport
	case errors.Is(err, acquire.ErrInvalidSource):
		return ErrValidation
	case errors.Is(err, acquire.ErrWrite):
		return ErrFileWrite
	default:
		return ErrUnknown
	}
}

// Advice returns a short operator hint for err.
func Advice(err error) string {
	switch Classify(err) {
	case ErrTransport:
		return "Check network connectivity and that the video URL is reachable"
	case ErrProcess:
		return "Check that ffmpeg is installed and that the input file exists and is a readable media file"
	case ErrMissingArtifact:
		return "The previous step reported success but produced no file; check disk space and permissions"
	case ErrServicePayload:
		return "Deepgram returned no results; check that the audio contains speech and is not empty"
	case ErrAPI:
		return "Check DG_KEY and the Deepgram service status"
	case ErrFileRead:
		return "Check read permissions on the audio file"
	case ErrFileWrite:
		return "Ensure the output directory exists and is writable"
	case ErrValidation:
		return "Check the source kind and value"
	case ErrConfig:
		return "Check the environment variables or .env file"
	default:
		return "Review the error details above"
	}
}
