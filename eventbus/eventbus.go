package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// 이벤트 타입
const (
	EventFeedbackStored = "feedback.stored"
)

// Event는 Kafka 메시지의 페이로드로 사용되는 구조체입니다.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// FeedbackStoredPayload 는 저장이 끝난 피드백의 요약 정보다.
// 리뷰 원문과 사용자 응답은 싣지 않는다.
type FeedbackStoredPayload struct {
	FeedbackID     string    `json:"feedback_id"`
	Rating         int       `json:"rating"`
	AnalysisStatus string    `json:"analysis_status"`
	ActionCount    int       `json:"action_count"`
	Attempts       int       `json:"attempts"`
	CreatedAt      time.Time `json:"created_at"`
}

// Publisher 는 이벤트 발행의 추상화다.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// ErrPublisherClosed 는 Close 이후 Publish 가 호출되었을 때 반환된다.
var ErrPublisherClosed = errors.New("publisher closed")

// NoopPublisher 는 Kafka 가 설정되지 않은 경우 사용한다.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() {}
