package analyzer

import (
	"context"
	"time"
)

// Kind classifies the result of one analysis call.
type Kind int

const (
	Success Kind = iota
	// RateLimited: the upstream signalled quota exhaustion (HTTP 429 / RESOURCE_EXHAUSTED).
	RateLimited
	// InvalidResponse: the call succeeded but the payload is not the expected structure.
	InvalidResponse
	// TransportFailure: network, auth, server error, timeout or anything else.
	TransportFailure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case RateLimited:
		return "rate_limited"
	case InvalidResponse:
		return "invalid_response"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Analysis is the derived reply/summary/actions for one submission.
// An empty string or a nil slice means the model left that field out.
type Analysis struct {
	UserReply string
	Summary   string
	Actions   []string
}

// Usage describes one upstream call for the ai_logs collection.
type Usage struct {
	ModelName     string
	ModelVersion  string
	InputTokens   int64
	OutputTokens  int64
	TotalTokens   int64
	OutputExcerpt string
	Duration      time.Duration
}

// Outcome is the tagged result of Client.Analyze. Analysis is meaningful only
// when Kind is Success; Err carries the cause otherwise.
type Outcome struct {
	Kind     Kind
	Analysis Analysis
	Err      error
	Usage    Usage
}

func Succeeded(a Analysis, usage Usage) Outcome {
	return Outcome{Kind: Success, Analysis: a, Usage: usage}
}

func Failed(kind Kind, err error, usage Usage) Outcome {
	return Outcome{Kind: kind, Err: err, Usage: usage}
}

func (o Outcome) OK() bool {
	return o.Kind == Success
}

// Retryable reports whether waiting can fix this outcome.
func (o Outcome) Retryable() bool {
	return o.Kind == RateLimited
}

// Client produces an Analysis for one rating + review. Implementations never
// touch storage and never return a Success outcome without an Analysis.
type Client interface {
	Analyze(ctx context.Context, rating int, reviewText string) Outcome
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, rating int, reviewText string) Outcome

func (f ClientFunc) Analyze(ctx context.Context, rating int, reviewText string) Outcome {
	return f(ctx, rating, reviewText)
}
