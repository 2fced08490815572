package quota

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"feedback-ai/analyzer"
	"feedback-ai/config"
)

// ErrDailyQuotaExhausted 는 일일 분석 한도를 모두 사용했을 때 반환된다.
var ErrDailyQuotaExhausted = errors.New("daily analysis quota exhausted")

// AnalysisQuotaLimiter 는 분석용 LLM 호출에 대한 분당/일일 한도를 관리한다.
// API 인스턴스가 하나라는 전제를 두고 인메모리로 동작하며,
// 애플리케이션이 재시작되면 카운터가 초기화된다.
type AnalysisQuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time

	now func() time.Time
}

// NewAnalysisQuotaLimiter 는 설정 값이 0 이하인 방향의 제한을 두지 않는다.
// 두 값 모두 0 이하면 nil 을 반환하며, nil limiter 는 항상 즉시 허용한다.
func NewAnalysisQuotaLimiter(cfg config.AnalysisQuotaConfig) *AnalysisQuotaLimiter {
	requestsPerDay := max(cfg.RequestsPerDay, 0)
	requestsPerMinute := max(cfg.RequestsPerMinute, 0)
	if requestsPerDay == 0 && requestsPerMinute == 0 {
		return nil
	}

	var interval time.Duration
	if requestsPerMinute > 0 {
		interval = time.Minute / time.Duration(requestsPerMinute)
	}

	return &AnalysisQuotaLimiter{
		dailyLimit: requestsPerDay,
		interval:   interval,
		now:        time.Now,
	}
}

// WaitAndReserve 는 분석 호출 전에 분당/일일 한도를 적용한다.
// - 일일 한도를 초과한 경우: (false, nil) 을 반환하고 호출자는 LLM 호출을 스킵해야 한다.
// - 컨텍스트 취소 시: (false, ctx.Err()).
func (l *AnalysisQuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	if l == nil {
		return true, nil
	}
	for {
		l.mu.Lock()

		now := l.now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			delay = l.lastCall.Add(l.interval).Sub(now)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		// 락을 풀고 대기한 뒤 상태를 재평가한다.
		l.mu.Unlock()
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		}
	}
}

// Client 는 analyzer.Client 앞에서 한도를 적용한다.
// 일일 한도 소진은 upstream 을 호출하지 않고 RateLimited 로 취급한다.
type Client struct {
	next    analyzer.Client
	limiter *AnalysisQuotaLimiter
}

// Wrap returns next unchanged when limiter is nil.
func Wrap(next analyzer.Client, limiter *AnalysisQuotaLimiter) analyzer.Client {
	if limiter == nil {
		return next
	}
	return &Client{next: next, limiter: limiter}
}

func (c *Client) Analyze(ctx context.Context, rating int, reviewText string) analyzer.Outcome {
	ok, err := c.limiter.WaitAndReserve(ctx)
	if err != nil {
		return analyzer.Failed(analyzer.TransportFailure, fmt.Errorf("quota wait: %w", err), analyzer.Usage{})
	}
	if !ok {
		return analyzer.Failed(analyzer.RateLimited, ErrDailyQuotaExhausted, analyzer.Usage{})
	}
	return c.next.Analyze(ctx, rating, reviewText)
}
