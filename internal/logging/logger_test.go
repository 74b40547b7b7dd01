package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "hidden too")
	logger.Warn(context.Background(), nil, "visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestJSONOutputFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf, Component: "server"})

	logger.Error(context.Background(), fmt.Errorf("boom"), "handler failed", "path", "/users")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "handler failed", entry["msg"])
	assert.Equal(t, "server", entry["component"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "/users", entry["path"])
}

func TestWithFieldsPersist(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})
	scoped := base.With("route", "/health").WithComponent("pipeline")

	scoped.Info(context.Background(), "matched")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/health", entry["route"])
	assert.Equal(t, "pipeline", entry["component"])
}

func TestRequestLog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	RequestLog(logger, context.Background(), "GET", "/users/42", 200, 3*time.Millisecond)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/users/42", entry["path"])
	assert.Equal(t, float64(200), entry["status"])
}
