package retry

import (
	"context"
	"fmt"
	"time"

	"feedback-ai/analyzer"
	"feedback-ai/config"
)

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 2 * time.Second
	DefaultMultiplier   = 2.0
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy retries RateLimited outcomes with exponential backoff.
// Every other outcome is returned as-is after a single attempt.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64

	// Sleep defaults to a per-call timer; tests replace it.
	Sleep SleepFunc
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		Multiplier:   DefaultMultiplier,
	}
}

func NewPolicyFromConfig(cfg config.RetryConfig) Policy {
	p := DefaultPolicy()
	if cfg.MaxAttempts > 0 {
		p.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialDelay > 0 {
		p.InitialDelay = cfg.InitialDelay
	}
	if cfg.BackoffMultiplier >= 1 {
		p.Multiplier = cfg.BackoffMultiplier
	}
	return p
}

// Delays returns the waits between attempts, e.g. [2s 4s] for the default policy.
func (p Policy) Delays() []time.Duration {
	n := p.attempts() - 1
	delays := make([]time.Duration, 0, n)
	d := p.InitialDelay
	for i := 0; i < n; i++ {
		delays = append(delays, d)
		d = time.Duration(float64(d) * p.multiplier())
	}
	return delays
}

// MaxWait is the total time Run can spend waiting between attempts.
func (p Policy) MaxWait() time.Duration {
	var total time.Duration
	for _, d := range p.Delays() {
		total += d
	}
	return total
}

// Run calls fn until it returns a non-retryable outcome or attempts run out.
// It returns the final outcome and the number of attempts made. Attempts are
// strictly sequential; the wait only blocks the calling goroutine.
func (p Policy) Run(ctx context.Context, fn func(ctx context.Context, attempt int) analyzer.Outcome) (analyzer.Outcome, int) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	maxAttempts := p.attempts()
	delay := p.InitialDelay
	var out analyzer.Outcome
	for attempt := 1; ; attempt++ {
		out = fn(ctx, attempt)
		if !out.Retryable() || attempt >= maxAttempts {
			return out, attempt
		}

		if err := sleep(ctx, delay); err != nil {
			return analyzer.Failed(analyzer.TransportFailure,
				fmt.Errorf("retry wait interrupted after attempt %d: %w", attempt, err), out.Usage), attempt
		}
		delay = time.Duration(float64(delay) * p.multiplier())
	}
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) multiplier() float64 {
	if p.Multiplier < 1 {
		return 1
	}
	return p.Multiplier
}

// Sleep waits on a timer owned by the caller; it never holds a shared lock.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
