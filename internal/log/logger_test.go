package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Info("info message")
	assert.Contains(t, buf.String(), "INFO: info message")
	buf.Reset()

	l.Warn("warn message")
	assert.Contains(t, buf.String(), "WARN: warn message")
	buf.Reset()

	l.Error("error message")
	assert.Contains(t, buf.String(), "ERROR: error message")
	buf.Reset()

	l.Infof("formatted %s", "message")
	assert.Contains(t, buf.String(), "formatted message")
	buf.Reset()
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.Debug("hidden")
	assert.Empty(t, buf.String())

	l = NewLogger(WithOutput(&buf), WithLevel("debug"))
	l.Debugf("page %d", 3)
	assert.Contains(t, buf.String(), "DEBUG: page 3")
}

func TestPackageLevelDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(NewLogger(WithOutput(&buf)))
	defer SetDefault(prev)

	SetDebug(false)
	Debug("debug message")
	assert.Empty(t, buf.String())

	SetDebug(true)
	Debug("debug message", 42)
	assert.Contains(t, buf.String(), "DEBUG: debug message: 42")
	buf.Reset()

	Warnf("warn %s", "here")
	assert.Contains(t, buf.String(), "WARN: warn here")
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf))

	l.With(F("key1", "value1"), F("key2", 123)).Infof("structured message")
	output := buf.String()
	assert.Contains(t, output, "structured message")
	assert.Contains(t, output, "key1=value1")
	assert.Contains(t, output, "key2=123")
	buf.Reset()

	l.With(F("key1", "value1")).With(F("key2", 123)).Infof("chained fields")
	output = buf.String()
	assert.Contains(t, output, "chained fields")
	assert.Contains(t, output, "key1=value1 key2=123")
}

func TestLogWithFields(t *testing.T) {
	var buf bytes.Buffer
	prev := Default()
	SetDefault(NewLogger(WithOutput(&buf)))
	defer SetDefault(prev)

	LogWithFields(F("archive", "book.zip")).Info("opened")
	assert.Contains(t, buf.String(), "opened archive=book.zip")
}

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WithOutput(&buf), WithJSON())

	l.With(F("page", 2)).Infof("json message")

	var logEntry map[string]interface{}
	err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &logEntry)
	require.NoError(t, err)

	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, "json message", logEntry["message"])
	assert.Equal(t, float64(2), logEntry["page"])
	assert.Contains(t, logEntry, "timestamp")
}

func TestDiscard(t *testing.T) {
	sink := Discard()
	assert.NotPanics(t, func() {
		sink.With(F("k", "v")).Errorf("dropped %d", 1)
	})
}

func TestSetOutput(t *testing.T) {
	prev := Default()
	SetDefault(NewLogger())
	defer SetDefault(prev)

	var buf bytes.Buffer
	scoped := LogWithFields(F("host", "tui"))
	SetOutput(&buf)
	scoped.Infof("redirected")
	assert.Contains(t, buf.String(), "INFO: redirected host=tui")
}
