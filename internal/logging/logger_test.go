package logging

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	ctx := context.Background()
	logger.Debug(ctx, "debug msg")
	logger.Info(ctx, "info msg")
	logger.Warn(ctx, nil, "warn msg")
	logger.Error(ctx, fmt.Errorf("boom"), "error msg")

	out := buf.String()
	assert.NotContains(t, out, "debug msg")
	assert.NotContains(t, out, "info msg")
	assert.Contains(t, out, "warn msg")
	assert.Contains(t, out, "error msg")
	assert.Contains(t, out, "boom")
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	logger.WithComponent("preview").Info(context.Background(), "cache replaced")

	assert.Contains(t, buf.String(), "component=preview")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	logger.With("page", 3).Info(context.Background(), "rendered")

	assert.Contains(t, buf.String(), "page=3")
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	logger.Info(context.Background(), "hello")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}
