package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-ai/config"
)

// fakeGemini serves generateContent with a fixed status and body.
func fakeGemini(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func textResponse(t *testing.T, text string) string {
	t.Helper()
	resp := map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			},
			"finishReason": "STOP",
		}},
		"usageMetadata": map[string]any{
			"promptTokenCount":     12,
			"candidatesTokenCount": 30,
			"totalTokenCount":      42,
		},
		"modelVersion": "gemini-test-001",
	}
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	return string(b)
}

func newTestClient(t *testing.T, baseURL string, mode string, timeout time.Duration) *GeminiClient {
	t.Helper()
	c, err := NewGeminiClient(context.Background(), config.GeminiConfig{
		APIKey:     "test-key",
		Model:      "gemini-test",
		APIVersion: "v1beta",
		BaseURL:    baseURL + "/",
		Timeout:    timeout,
		OutputMode: mode,
	})
	require.NoError(t, err)
	return c
}

func TestGeminiClient_Success(t *testing.T) {
	srv, calls := fakeGemini(t, http.StatusOK, textResponse(t,
		"```json\n{\"user_reply\":\"Sorry to hear that...\",\"summary\":\"Critical bug\",\"actions\":[\"Investigate crash\"]}\n```"))
	c := newTestClient(t, srv.URL, config.OutputModeJSON, 5*time.Second)

	out := c.Analyze(context.Background(), 1, "Crashes constantly")

	require.Equal(t, Success, out.Kind, "err: %v", out.Err)
	assert.Equal(t, "Sorry to hear that...", out.Analysis.UserReply)
	assert.Equal(t, "Critical bug", out.Analysis.Summary)
	assert.Equal(t, []string{"Investigate crash"}, out.Analysis.Actions)
	assert.Equal(t, int64(42), out.Usage.TotalTokens)
	assert.Equal(t, "gemini-test-001", out.Usage.ModelVersion)
	assert.Equal(t, "gemini-test", out.Usage.ModelName)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestGeminiClient_FunctionCallArgs(t *testing.T) {
	resp := `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"record_feedback_analysis","args":{"user_reply":"Thanks!","summary":"Happy user","actions":[]}}}]},"finishReason":"STOP"}]}`
	srv, _ := fakeGemini(t, http.StatusOK, resp)
	c := newTestClient(t, srv.URL, config.OutputModeFunctionCall, 5*time.Second)

	out := c.Analyze(context.Background(), 5, "Love it")

	require.Equal(t, Success, out.Kind, "err: %v", out.Err)
	assert.Equal(t, "Thanks!", out.Analysis.UserReply)
	assert.Equal(t, []string{}, out.Analysis.Actions)
}

func TestGeminiClient_InvalidResponse(t *testing.T) {
	srv, calls := fakeGemini(t, http.StatusOK, textResponse(t, "I cannot produce JSON today."))
	c := newTestClient(t, srv.URL, config.OutputModeJSON, 5*time.Second)

	out := c.Analyze(context.Background(), 3, "It is ok")

	assert.Equal(t, InvalidResponse, out.Kind)
	assert.ErrorIs(t, out.Err, ErrNoStructuredPayload)
	assert.Equal(t, "I cannot produce JSON today.", out.Usage.OutputExcerpt)
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))
}

func TestGeminiClient_NoCandidates(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
	c := newTestClient(t, srv.URL, config.OutputModeJSON, 5*time.Second)

	out := c.Analyze(context.Background(), 1, "...")

	assert.Equal(t, InvalidResponse, out.Kind)
	assert.Contains(t, out.Err.Error(), "SAFETY")
}

func TestGeminiClient_RateLimited(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusTooManyRequests,
		`{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`)
	c := newTestClient(t, srv.URL, config.OutputModeJSON, 5*time.Second)

	out := c.Analyze(context.Background(), 2, "Slow")

	assert.Equal(t, RateLimited, out.Kind)
	assert.Error(t, out.Err)
}

func TestGeminiClient_ModelNotFoundIsTransportFailure(t *testing.T) {
	srv, _ := fakeGemini(t, http.StatusNotFound,
		`{"error":{"code":404,"message":"models/gemini-pro is not found for API version v1beta","status":"NOT_FOUND"}}`)
	c := newTestClient(t, srv.URL, config.OutputModeJSON, 5*time.Second)

	out := c.Analyze(context.Background(), 2, "Slow")

	assert.Equal(t, TransportFailure, out.Kind)
}

func TestGeminiClient_TimeoutIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL, config.OutputModeJSON, 50*time.Millisecond)

	start := time.Now()
	out := c.Analyze(context.Background(), 4, "Nice")

	assert.Equal(t, TransportFailure, out.Kind)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.GeminiConfig{Model: "gemini-test"})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "가나", truncate("가나다", 2))
	assert.Equal(t, "abc", truncate("abc", 5))
}
