package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MimeLyc/transcribe-videos/internal/deepgram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	assert.Equal(t, "deepgram.mp4.json", PathFor("deepgram.mp4"))
	assert.Equal(t, "/w/Title-id.mp4.json", PathFor("/w/Title-id.mp4"))
}

func TestWrite_PrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deepgram.mp4.json")
	results := deepgram.Results(`{"channels":[{"alternatives":[{"transcript":"Hi.","confidence":0.9}]}]}`)

	require.NoError(t, Write(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
  "channels": [
    {
      "alternatives": [
        {
          "transcript": "Hi.",
          "confidence": 0.9
        }
      ]
    }
  ]
}
`
	assert.Equal(t, want, string(data))
	assert.JSONEq(t, string(results), string(data))
}

func TestWrite_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"old": "a much longer previous transcript document"}`), 0o644))

	require.NoError(t, Write(path, deepgram.Results(`{"new":true}`)))
	require.NoError(t, Write(path, deepgram.Results(`{"new":true}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, map[string]any{"new": true}, got)
}

func TestWrite_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, Write(filepath.Join(dir, "a.json"), nil), deepgram.ErrResultUndefined)
	assert.Error(t, Write(filepath.Join(dir, "b.json"), deepgram.Results(`{broken`)))
	assert.NoFileExists(t, filepath.Join(dir, "b.json"))
	assert.Error(t, Write(filepath.Join(dir, "missing", "c.json"), deepgram.Results(`{}`)))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "", DetectLanguage("   "))
	assert.Equal(t, "en", DetectLanguage("Welcome to this short demonstration of how to transcribe videos with a speech recognition service."))
	assert.Equal(t, "es", DetectLanguage("Bienvenidos a esta breve demostración de cómo transcribir vídeos con un servicio de reconocimiento de voz."))
}
