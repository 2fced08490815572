package analyzer

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// classifyError maps an error returned by GenerateContent to an outcome kind.
// Only quota exhaustion is RateLimited; everything else is a transport failure.
func classifyError(err error) Kind {
	if err == nil {
		return Success
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyAPIError(apiErr.Code, apiErr.Status)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyAPIError(apiErrPtr.Code, apiErrPtr.Status)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return TransportFailure
	}

	// Errors wrapped by intermediaries lose their type but keep the text.
	msg := err.Error()
	if strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429") {
		return RateLimited
	}
	return TransportFailure
}

func classifyAPIError(code int, status string) Kind {
	if code == http.StatusTooManyRequests || strings.EqualFold(status, "RESOURCE_EXHAUSTED") {
		return RateLimited
	}
	return TransportFailure
}
