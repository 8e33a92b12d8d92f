package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONEntryWithBaseAndRedaction(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Debug, Format: FormatJSON, App: "petctl", Out: &buf})

	log.With(map[string]any{"sid": "abc"}).Info("session established", map[string]any{
		"token": "secret-token",
		"error": errors.New("boom"),
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "petctl", entry["app"])
	assert.Equal(t, "abc", entry["sid"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "[redacted]", entry["token"])
	assert.NotContains(t, buf.String(), "secret-token")
}

func TestLevelFilterAndTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Warn, Out: &buf})

	log.Info("hidden", nil)
	log.Warn("shown", map[string]any{"pet_id": "p1"})

	out := strings.TrimSpace(buf.String())
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "pet_id=p1")
}

func TestParse(t *testing.T) {
	assert.Equal(t, Warn, ParseLevel(" WARNING "))
	assert.Equal(t, Info, ParseLevel("loud"))
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat(""))
}
