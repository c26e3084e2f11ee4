package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestJSONLoggerCarriesSessionID(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Config{Level: "debug", Format: FormatJSON, SessionID: "abc"})

	logger.Debug("event created", "event_id", 7)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "abc", record["session_id"])
	assert.Equal(t, "event created", record["msg"])
	assert.EqualValues(t, 7, record["event_id"])
}

func TestLevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, Config{Level: "error"})

	logger.Info("ignored")

	assert.Zero(t, buf.Len())
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lazycal.log")
	logger, closer, err := New(Config{Path: path})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
}
