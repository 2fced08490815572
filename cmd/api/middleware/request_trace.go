package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"feedback-ai/logger"
	"feedback-ai/trace"
)

// RequestTrace 는 요청마다 Request ID 를 보장하고 요청 완료 로그를 남긴다.
// 리뷰 본문은 최대 2000자라 로그에 싣지 않고 크기만 기록한다.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(trace.HeaderRequestID)
		if requestID == "" {
			requestID = trace.GenerateID()
		}

		// inbound 는 span 0, Gemini 호출(재시도 포함)은 1,2,3,...
		ctx := trace.WithRequestAndSpan(c.Request.Context(), requestID, 0)
		c.Request = c.Request.WithContext(ctx)
		c.Header(trace.HeaderRequestID, requestID)
		c.Header(trace.HeaderSpanID, trace.CurrentSpanID(ctx))

		c.Next()

		fields := completionFields(c, requestID, time.Since(start))
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.ErrorWithFields("request failed", fields)
		case status >= http.StatusBadRequest:
			logger.WarnWithFields("request rejected", fields)
		default:
			logger.InfoWithFields("completed request", fields)
		}
	}
}

func completionFields(c *gin.Context, requestID string, elapsed time.Duration) logger.Fields {
	// 등록된 라우트 템플릿 기준으로 기록한다. 404 는 빈 문자열.
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}

	fields := logger.Fields{
		"method":         c.Request.Method,
		"route":          route,
		"status":         c.Writer.Status(),
		"duration_ms":    elapsed.Milliseconds(),
		"request_id":     requestID,
		"span_id":        trace.CurrentSpanID(c.Request.Context()),
		"request_bytes":  c.Request.ContentLength,
		"response_bytes": c.Writer.Size(),
	}
	if len(c.Errors) > 0 {
		fields["errors"] = c.Errors.Errors()
	}
	return fields
}
