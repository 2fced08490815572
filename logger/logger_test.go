package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWriterEmitsJSONWithFields(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	var buf bytes.Buffer
	InitWriter(&buf, "debug", "feedback-test")

	InfoWithFields("submission stored", Fields{"feedback_id": "fb-1", "attempts": 2})

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &got))
	assert.Equal(t, "submission stored", got["message"])
	assert.Equal(t, "fb-1", got["feedback_id"])
	assert.Equal(t, "feedback-test", got["service_name"])
	assert.Contains(t, got, "datetime")
}

func TestInitWriterFiltersBelowLevel(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	var buf bytes.Buffer
	InitWriter(&buf, "warn", "")

	InfoWithFields("hidden", nil)
	WarnWithFields("shown", nil)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithServiceNameKeepsExplicitValue(t *testing.T) {
	fields := withServiceName(Fields{"service_name": "other"})
	assert.Equal(t, "other", fields["service_name"])
}
