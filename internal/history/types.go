package history

import "time"

type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Run is one recorded pipeline run.
type Run struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Source         string    `json:"source"`
	VideoPath      string    `json:"video_path,omitempty"`
	AudioPath      string    `json:"audio_path,omitempty"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	Language       string    `json:"language,omitempty"`
	Stage          string    `json:"stage,omitempty"`
	Status         Status    `json:"status"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
