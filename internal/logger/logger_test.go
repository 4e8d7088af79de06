package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnonymize(t *testing.T) {
	in := "mail bob@example.com key eyJhbGciOiJIUzI1NiJ9.e30.sig user_id=42"
	out := Anonymize(in)

	assert.NotContains(t, out, "bob@example.com")
	assert.NotContains(t, out, "eyJhbGci")
	assert.NotContains(t, out, "42")
	assert.Contains(t, out, "[REDACTED_EMAIL]")
	assert.Contains(t, out, "[REDACTED_TOKEN]")
	assert.Contains(t, out, "user_id=[USER_ID]")
}

func TestLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Error("store", "insert failed for user_id=7", errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "store", entry["module"])
	assert.Equal(t, "insert failed for user_id=[USER_ID]", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.NotEmpty(t, entry["time"])
}

func TestSetLevel_FiltersDebug(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	SetLevel("info")
	l.Debug("worker", "hidden")
	assert.Zero(t, buf.Len())

	SetLevel("bogus")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	SetLevel("debug")
	l.Debug("worker", "shown")
	assert.Contains(t, buf.String(), "shown")
}
