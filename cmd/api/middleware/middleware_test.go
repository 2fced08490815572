package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-ai/logger"
	"feedback-ai/trace"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(), RequestTrace())
	r.POST("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, trace.RequestIDFromContext(c.Request.Context()))
	})
	r.POST("/reject", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	})
	return r
}

// captureLog 는 전역 로거를 buf 로 돌리고 테스트 종료 시 복원한다.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	var buf bytes.Buffer
	logger.InitWriter(&buf, "info", "")
	return &buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines[len(lines)-1])

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &got))
	return got
}

func TestRequestTraceKeepsIncomingRequestID(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"a":1}`))
	req.Header.Set(trace.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(trace.HeaderRequestID))
	assert.Equal(t, "0", w.Header().Get(trace.HeaderSpanID))
}

func TestRequestTraceGeneratesRequestID(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))

	id := w.Header().Get(trace.HeaderRequestID)
	assert.Len(t, id, 32)
	assert.Equal(t, id, w.Body.String())
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := newEngine()

	req := httptest.NewRequest(http.MethodOptions, "/echo", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func TestRequestTraceLogsSizesNotReviewBody(t *testing.T) {
	buf := captureLog(t)
	r := newEngine()

	body := `{"rating":2,"review_text":"checkout keeps crashing on my phone"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
	req.Header.Set(trace.HeaderRequestID, "req-log")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotContains(t, buf.String(), "checkout keeps crashing")

	got := lastLogLine(t, buf)
	assert.Equal(t, "completed request", got["message"])
	assert.Equal(t, "info", strings.ToLower(got["level"].(string)))
	assert.Equal(t, "/echo", got["route"])
	assert.Equal(t, "req-log", got["request_id"])
	assert.Equal(t, float64(len(body)), got["request_bytes"])
	assert.Equal(t, float64(len("req-log")), got["response_bytes"])
}

func TestRequestTraceWarnsOnClientError(t *testing.T) {
	buf := captureLog(t)
	r := newEngine()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/reject", strings.NewReader(`{}`)))

	got := lastLogLine(t, buf)
	assert.Equal(t, "request rejected", got["message"])
	assert.Contains(t, strings.ToLower(got["level"].(string)), "warn")
	assert.Equal(t, float64(http.StatusBadRequest), got["status"])
}

func TestRequestTraceUnmatchedRoute(t *testing.T) {
	buf := captureLog(t)
	r := newEngine()

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	got := lastLogLine(t, buf)
	assert.Equal(t, "unmatched", got["route"])
	assert.Equal(t, float64(http.StatusNotFound), got["status"])
}
