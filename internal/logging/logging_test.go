package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogrus_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)

	NewLogrus(l).Debug("Request completed", "trace_id", "abc", "status", 200)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Request completed", entry["msg"])
	assert.Equal(t, "abc", entry["trace_id"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, "ubeu", entry["component"])
}

func TestFields_OddArguments(t *testing.T) {
	f := fields([]interface{}{"a", 1, 42, "x", "dangling"})

	assert.Equal(t, 1, f["a"])
	assert.Equal(t, "x", f["42"])
	assert.Equal(t, "dangling", f["!BADKEY"])
}

func TestNew_JSONRespectsDebug(t *testing.T) {
	var buf bytes.Buffer

	New("json", &buf, false).Debug("hidden")
	assert.Empty(t, buf.String())

	New("json", &buf, true).Debug("shown", "trace_id", "t-1")
	assert.Contains(t, buf.String(), `"trace_id":"t-1"`)
}

func TestNew_TintWritesText(t *testing.T) {
	var buf bytes.Buffer
	New("tint", &buf, false).Warn("probe failed", "service", "wallet")

	out := buf.String()
	assert.True(t, strings.Contains(out, "probe failed"))
	assert.True(t, strings.Contains(out, "wallet"))
}
