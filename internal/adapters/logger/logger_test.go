package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"listing-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFluent struct {
	tags     []string
	messages []port.Fields
	closed   bool
}

func (f *fakeFluent) Post(tag string, message interface{}) error {
	f.tags = append(f.tags, tag)
	f.messages = append(f.messages, message.(port.Fields))
	return nil
}

func (f *fakeFluent) Close() error {
	f.closed = true
	return nil
}

type recordingLogger struct {
	lines *[]string
}

func (r recordingLogger) Info(msg string, fields port.Fields)  { *r.lines = append(*r.lines, "info:"+msg) }
func (r recordingLogger) Warn(msg string, fields port.Fields)  { *r.lines = append(*r.lines, "warn:"+msg) }
func (r recordingLogger) Debug(msg string, fields port.Fields) { *r.lines = append(*r.lines, "debug:"+msg) }
func (r recordingLogger) Error(msg string, err error, fields port.Fields) {
	*r.lines = append(*r.lines, "error:"+msg)
}
func (r recordingLogger) WithFields(fields port.Fields) port.LoggerPort { return r }

func TestSlogAdapter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelInfo, IsJSON: true})

	logger.WithFields(port.Fields{"use_case": "QueryListings"}).
		Error("Query failed", errors.New("boom"), port.Fields{"page": 2})
	logger.Debug("hidden", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "Query failed", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "QueryListings", entry["use_case"])
	assert.EqualValues(t, 2, entry["page"])
	assert.Equal(t, "boom", entry["err"])
}

func TestFluentLoggerAdapter_LevelAndFields(t *testing.T) {
	client := &fakeFluent{}
	adapter, err := NewFluentLoggerAdapter(client, slog.LevelWarn)
	require.NoError(t, err)

	scoped := adapter.WithFields(port.Fields{"component": "WorkingSet"})
	scoped.Info("skipped", nil)
	scoped.Debug("skipped", nil)
	scoped.Warn("listings unavailable", port.Fields{"generation": 3})
	scoped.Error("load failed", errors.New("timeout"), nil)

	require.Equal(t, []string{"warn", "error"}, client.tags)
	assert.Equal(t, "WorkingSet", client.messages[0]["component"])
	assert.Equal(t, 3, client.messages[0]["generation"])
	assert.Equal(t, "listings unavailable", client.messages[0]["message"])
	assert.Equal(t, "timeout", client.messages[1]["error"])

	require.NoError(t, adapter.Close())
	assert.True(t, client.closed)
}

func TestNewFluentLoggerAdapter_NilClient(t *testing.T) {
	_, err := NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultiLoggerAdapter_FansOut(t *testing.T) {
	var first, second []string
	multi, err := NewMultiloggerAdapter(recordingLogger{&first}, nil, recordingLogger{&second})
	require.NoError(t, err)

	multi.WithFields(port.Fields{"a": 1}).Info("hello", nil)
	multi.Error("bad", nil, nil)

	assert.Equal(t, []string{"info:hello", "error:bad"}, first)
	assert.Equal(t, first, second)

	_, err = NewMultiloggerAdapter()
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]struct {
		level slog.Level
		ok    bool
	}{
		"debug":   {slog.LevelDebug, true},
		" INFO ":  {slog.LevelInfo, true},
		"warning": {slog.LevelWarn, true},
		"error":   {slog.LevelError, true},
		"":        {slog.LevelInfo, true},
		"verbose": {slog.LevelInfo, false},
	}
	for raw, want := range tests {
		level, ok := ParseLevel(raw)
		assert.Equal(t, want.level, level, raw)
		assert.Equal(t, want.ok, ok, raw)
	}
}
