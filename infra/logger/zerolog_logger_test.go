package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("heuristic", &buf, "warn")
	l.Infof("dropped")
	l.Warnf("kept %d", 7)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "heuristic", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept 7", entry["message"])
}

func TestZerologLoggerDebugwFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("c", &buf, "")
	l.Debugw("slot", map[string]any{"slot": 3, "denied": 2})
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.EqualValues(t, 3, entry["slot"])
	assert.EqualValues(t, 2, entry["denied"])
}
