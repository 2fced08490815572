package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedback-ai/analyzer"
	"feedback-ai/eventbus"
	"feedback-ai/logger"
	"feedback-ai/models"
	"feedback-ai/retry"
	"feedback-ai/trace"
)

// 응답/저장에 사용하는 기본값과 degraded 표식
const (
	DefaultUserReply        = "Thank you for your feedback!"
	DefaultSummary          = "Feedback received."
	SummaryRateLimited      = "AI analysis pending: rate limited"
	SummaryProcessingFailed = "AI processing failed"
	ActionManualReview      = "Manual review required"
)

const (
	StatusSuccess        = "success"
	StatusPartialSuccess = "partial_success"
)

const defaultWriteTimeout = 10 * time.Second

// ErrStorageFailure 는 레코드를 저장하지 못했을 때 반환된다.
// 이 경우 응답은 partial_success 가 아니라 오류여야 한다.
var ErrStorageFailure = errors.New("storage_failure")

// 워크플로 상태 (로그의 state 필드)
const (
	stateReceived  = "received"
	stateAnalyzing = "analyzing"
	stateEnriched  = "enriched"
	stateDegraded  = "degraded"
	stateStored    = "stored"
	stateResponded = "responded"
)

type SubmitInput struct {
	Rating     int
	ReviewText string
}

// SubmitResult 는 호출자에게 돌려줄 정보만 담는다.
type SubmitResult struct {
	Status         string
	AIUserResponse string
}

type SubmissionOptions struct {
	// AILogs 가 nil 이면 시도 로그를 남기지 않는다.
	AILogs AILogStore
	// Events 가 nil 이면 이벤트를 발행하지 않는다.
	Events eventbus.Publisher
	// AnalysisTimeout 은 재시도 대기를 포함한 분석 단계 전체 상한이다. 0 이면 제한 없음.
	AnalysisTimeout time.Duration
	WriteTimeout    time.Duration
}

// SubmissionService runs received → analyzing → enriched|degraded → stored → responded.
type SubmissionService struct {
	client analyzer.Client
	policy retry.Policy
	store  FeedbackStore

	aiLogs          AILogStore
	events          eventbus.Publisher
	analysisTimeout time.Duration
	writeTimeout    time.Duration

	now   func() time.Time
	newID func() string

	publishing sync.WaitGroup
}

func NewSubmissionService(client analyzer.Client, policy retry.Policy, store FeedbackStore, opts SubmissionOptions) *SubmissionService {
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &SubmissionService{
		client:          client,
		policy:          policy,
		store:           store,
		aiLogs:          opts.AILogs,
		events:          opts.Events,
		analysisTimeout: opts.AnalysisTimeout,
		writeTimeout:    writeTimeout,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           newRecordID,
	}
}

// Submit analyzes and stores one already-validated submission. Exactly one
// record is written per call unless the store itself fails, in which case the
// returned error wraps ErrStorageFailure.
func (s *SubmissionService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	feedbackID := s.newID()
	fields := logger.Fields{
		"feedback_id": feedbackID,
		"request_id":  trace.RequestIDFromContext(ctx),
		"rating":      in.Rating,
	}
	s.logState(stateReceived, fields)

	outcome, attempts := s.analyze(ctx, feedbackID, in, fields)
	rec := buildRecord(feedbackID, in, outcome, attempts, s.now())

	if rec.AnalysisStatus.Degraded() {
		logger.WarnWithFields("submission degraded", withState(fields, stateDegraded, logger.Fields{
			"analysis_status": string(rec.AnalysisStatus),
			"attempts":        attempts,
			"error":           errString(outcome.Err),
		}))
	} else {
		s.logState(stateEnriched, withState(fields, stateEnriched, logger.Fields{"attempts": attempts}))
	}

	// 요청이 취소되어도 저장은 끝까지 수행한다.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()
	if err := s.store.Insert(storeCtx, rec); err != nil {
		logger.ErrorWithFields("failed to store feedback", withState(fields, stateStored, logger.Fields{"error": err.Error()}))
		return SubmitResult{}, fmt.Errorf("%w: insert feedback %s: %w", ErrStorageFailure, feedbackID, err)
	}
	s.logState(stateStored, fields)

	s.publishStored(ctx, rec)

	result := SubmitResult{Status: StatusSuccess, AIUserResponse: rec.AIUserResponse}
	if rec.AnalysisStatus.Degraded() {
		result.Status = StatusPartialSuccess
	}
	s.logState(stateResponded, withState(fields, stateResponded, logger.Fields{"status": result.Status}))
	return result, nil
}

// Wait blocks until in-flight event publishes finish. Called on shutdown.
func (s *SubmissionService) Wait() {
	s.publishing.Wait()
}

func (s *SubmissionService) analyze(ctx context.Context, feedbackID string, in SubmitInput, fields logger.Fields) (analyzer.Outcome, int) {
	s.logState(stateAnalyzing, fields)

	analyzeCtx := ctx
	if s.analysisTimeout > 0 {
		var cancel context.CancelFunc
		analyzeCtx, cancel = context.WithTimeout(ctx, s.analysisTimeout)
		defer cancel()
	}

	return s.policy.Run(analyzeCtx, func(ctx context.Context, attempt int) analyzer.Outcome {
		requestedAt := s.now()
		out := s.client.Analyze(ctx, in.Rating, in.ReviewText)
		if !out.OK() {
			logger.WarnWithFields("analysis attempt failed", withState(fields, stateAnalyzing, logger.Fields{
				"attempt": attempt,
				"outcome": out.Kind.String(),
				"error":   errString(out.Err),
			}))
		}
		s.recordAttempt(ctx, feedbackID, attempt, requestedAt, out)
		return out
	})
}

// recordAttempt 는 best-effort 이며 실패해도 제출 흐름에 영향을 주지 않는다.
func (s *SubmissionService) recordAttempt(ctx context.Context, feedbackID string, attempt int, requestedAt time.Time, out analyzer.Outcome) {
	if s.aiLogs == nil {
		return
	}

	entry := models.AILog{
		ID:            uuid.NewString(),
		FeedbackID:    feedbackID,
		Attempt:       attempt,
		Outcome:       out.Kind.String(),
		ModelName:     out.Usage.ModelName,
		ModelVersion:  out.Usage.ModelVersion,
		InputTokens:   out.Usage.InputTokens,
		OutputTokens:  out.Usage.OutputTokens,
		TotalTokens:   out.Usage.TotalTokens,
		DurationMs:    out.Usage.Duration.Milliseconds(),
		OutputExcerpt: out.Usage.OutputExcerpt,
		RequestedAt:   requestedAt,
		CompletedAt:   s.now(),
	}
	if out.Err != nil {
		msg := out.Err.Error()
		entry.ErrorMessage = &msg
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()
	if err := s.aiLogs.Insert(logCtx, entry); err != nil {
		logger.WarnWithFields("failed to store ai log", logger.Fields{
			"feedback_id": feedbackID,
			"attempt":     attempt,
			"error":       err.Error(),
		})
	}
}

func (s *SubmissionService) publishStored(ctx context.Context, rec *models.FeedbackRecord) {
	if s.events == nil {
		return
	}

	evt, err := eventbus.NewJSONEvent("", eventbus.EventFeedbackStored, eventbus.FeedbackStoredPayload{
		FeedbackID:     rec.ID,
		Rating:         rec.Rating,
		AnalysisStatus: string(rec.AnalysisStatus),
		ActionCount:    len(rec.AIActions),
		Attempts:       rec.Attempts,
		CreatedAt:      rec.CreatedAt,
	})
	if err != nil {
		logger.WarnWithFields("failed to build feedback event", logger.Fields{"feedback_id": rec.ID, "error": err.Error()})
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	s.publishing.Add(1)
	go func() {
		defer s.publishing.Done()
		defer cancel()
		if err := s.events.Publish(pubCtx, evt); err != nil {
			logger.WarnWithFields("failed to publish feedback event", logger.Fields{
				"feedback_id": rec.ID,
				"event_id":    evt.ID,
				"error":       err.Error(),
			})
		}
	}()
}

func (s *SubmissionService) logState(state string, fields logger.Fields) {
	logger.InfoWithFields("submission "+state, withState(fields, state, nil))
}

// buildRecord 는 분석 결과(또는 실패)를 저장할 레코드로 변환한다.
func buildRecord(id string, in SubmitInput, out analyzer.Outcome, attempts int, createdAt time.Time) *models.FeedbackRecord {
	rec := &models.FeedbackRecord{
		ID:         id,
		Rating:     in.Rating,
		ReviewText: in.ReviewText,
		ModelName:  out.Usage.ModelName,
		Attempts:   attempts,
		CreatedAt:  createdAt,
	}

	switch out.Kind {
	case analyzer.Success:
		rec.AnalysisStatus = models.AnalysisEnriched
		rec.AIUserResponse = orDefault(out.Analysis.UserReply, DefaultUserReply)
		rec.AISummary = orDefault(out.Analysis.Summary, DefaultSummary)
		rec.AIActions = out.Analysis.Actions
		if rec.AIActions == nil {
			rec.AIActions = []string{}
		}
		return rec
	case analyzer.RateLimited:
		rec.AnalysisStatus = models.AnalysisDegradedRateLimited
		rec.AISummary = SummaryRateLimited
	case analyzer.InvalidResponse:
		rec.AnalysisStatus = models.AnalysisDegradedInvalidResponse
		rec.AISummary = SummaryProcessingFailed
	default:
		rec.AnalysisStatus = models.AnalysisDegradedTransportFailure
		rec.AISummary = SummaryProcessingFailed
	}
	rec.AIUserResponse = DefaultUserReply
	rec.AIActions = []string{ActionManualReview}
	return rec
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func withState(base logger.Fields, state string, extra logger.Fields) logger.Fields {
	out := make(logger.Fields, len(base)+len(extra)+1)
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	out["state"] = state
	return out
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// newRecordID 는 시간 순으로 정렬되는 UUIDv7 을 사용한다.
func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
