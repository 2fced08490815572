package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"feedback-ai/logger"
	"feedback-ai/trace"
)

// Config 는 아웃바운드 HTTP 클라이언트 공통 설정이다.
type Config struct {
	Timeout time.Duration
	// Transport 가 nil 이면 http.DefaultTransport 를 사용한다.
	Transport http.RoundTripper
}

// loggingRoundTripper 는 모든 아웃바운드 호출에 X-Request-Id / X-Span-Id 를 붙이고
// 결과를 구조화 로그로 남긴다. 요청 바디는 리뷰 원문을 포함하므로 로깅하지 않는다.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, spanID := trace.NextSpanID(req.Context())
	// RoundTripper must not mutate the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set(trace.HeaderRequestID, requestID)
	req.Header.Set(trace.HeaderSpanID, spanID)

	resp, err := l.inner.RoundTrip(req)
	fields := logger.Fields{
		"method":     req.Method,
		"url":        redactURL(req.URL),
		"duration":   time.Since(start).String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		logger.WarnWithFields("httpclient request returned error status", fields)
	} else {
		logger.DebugWithFields("httpclient request success", fields)
	}
	return resp, nil
}

// redactURL drops credentials that some endpoints accept as a query parameter.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		cp := *u
		cp.RawQuery = q.Encode()
		return cp.String()
	}
	return u.String()
}

// New 는 주어진 설정으로 http.Client 를 생성한다.
// Timeout 이 0 이면 기본값 10초를 사용한다.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: transport},
	}
}

// NewDefault 는 기본 설정(Timeout 10초)을 사용하는 http.Client 를 생성한다.
func NewDefault() *http.Client {
	return New(Config{})
}
