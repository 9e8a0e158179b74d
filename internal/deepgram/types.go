package deepgram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MimeTypeWav is the only media type the pipeline submits.
const MimeTypeWav = "audio/wav"

// ErrResultUndefined is returned when the service answers successfully but
// the response carries no results payload.
var ErrResultUndefined = errors.New("transcription result is undefined")

// Response represents a pre-recorded transcription response
//
// Metadata: Request metadata (request id, duration, models)
// Results: Nested channels/alternatives/words document, kept verbatim
// ErrCode, ErrMsg, RequestID: Set by the service on failed requests
type Response struct {
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Results   Results         `json:"results,omitempty"`
	ErrCode   string          `json:"err_code,omitempty"`
	ErrMsg    string          `json:"err_msg,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// Results is the raw "results" object of a response. It is opaque to the
// pipeline and persisted as returned.
type Results json.RawMessage

// MarshalJSON keeps Results byte-for-byte when re-encoded.
func (r Results) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *Results) UnmarshalJSON(data []byte) error {
	if r == nil {
		return errors.New("deepgram.Results: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// Defined reports whether the service returned a usable results object.
func (r Results) Defined() bool {
	trimmed := bytes.TrimSpace(r)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

type alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

type channel struct {
	Alternatives []alternative `json:"alternatives"`
}

// Transcript returns the first alternative of every channel joined by a
// newline. It returns "" when the document has no transcript text.
func (r Results) Transcript() string {
	if !r.Defined() {
		return ""
	}
	var doc struct {
		Channels []channel `json:"channels"`
	}
	if err := json.Unmarshal(r, &doc); err != nil {
		return ""
	}

	var buf bytes.Buffer
	for _, ch := range doc.Channels {
		if len(ch.Alternatives) == 0 || ch.Alternatives[0].Transcript == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(ch.Alternatives[0].Transcript)
	}
	return buf.String()
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrCode    string `json:"err_code"`
	ErrMsg     string `json:"err_msg"`
	RequestID  string `json:"request_id"`
	Body       string `json:"-"`
}

func (e *APIError) Error() string {
	if e.ErrMsg != "" {
		return fmt.Sprintf("deepgram API request failed with status %d: %s: %s", e.StatusCode, e.ErrCode, e.ErrMsg)
	}
	return fmt.Sprintf("deepgram API request failed with status %d: %s", e.StatusCode, e.Body)
}
