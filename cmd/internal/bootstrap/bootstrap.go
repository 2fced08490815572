// Package bootstrap wires storage, the Gemini client and the services from an
// AppConfig. Shared by the HTTP API and the MCP server.
package bootstrap

import (
	"context"
	"fmt"

	"feedback-ai/analyzer"
	"feedback-ai/config"
	"feedback-ai/eventbus"
	"feedback-ai/logger"
	"feedback-ai/quota"
	"feedback-ai/retry"
	"feedback-ai/services"
)

type App struct {
	Submission  *services.SubmissionService
	Admin       *services.AdminService
	HealthCheck func(ctx context.Context) error

	closers []func(ctx context.Context) error
}

// Close 는 이벤트 발행 완료를 기다린 뒤 외부 연결을 역순으로 닫는다.
func (a *App) Close(ctx context.Context) {
	if a.Submission != nil {
		a.Submission.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.WarnWithFields("shutdown step failed", logger.Fields{"error": err.Error()})
		}
	}
}

type stores struct {
	feedback services.FeedbackStore
	aiLogs   services.AILogStore
	ping     func(ctx context.Context) error
	close    func(ctx context.Context) error
}

// Build 는 외부 의존성을 초기화한다. 실패 시 이미 연 연결은 닫고 오류를 반환한다.
func Build(ctx context.Context, cfg config.AppConfig) (*App, error) {
	app := &App{}

	st, err := openStores(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, st.close)
	app.HealthCheck = st.ping

	gemini, err := analyzer.NewGeminiClient(ctx, cfg.Gemini)
	if err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	client := quota.Wrap(gemini, quota.NewAnalysisQuotaLimiter(cfg.AnalysisQuota))

	publisher := newPublisher(cfg.Kafka)
	app.closers = append(app.closers, func(context.Context) error {
		publisher.Close()
		return nil
	})

	app.Submission = services.NewSubmissionService(client, retry.NewPolicyFromConfig(cfg.Retry), st.feedback, services.SubmissionOptions{
		AILogs:          st.aiLogs,
		Events:          publisher,
		AnalysisTimeout: cfg.Analysis.Timeout,
		WriteTimeout:    cfg.Storage.WriteTimeout,
	})
	app.Admin = services.NewAdminService(st.feedback)

	logger.InfoWithFields("application wired", logger.Fields{
		"storage_driver": cfg.Storage.Driver,
		"model":          gemini.ModelName(),
		"output_mode":    cfg.Gemini.OutputMode,
		"max_attempts":   cfg.Retry.MaxAttempts,
		"kafka_enabled":  cfg.Kafka.Enabled(),
	})
	return app, nil
}

// newPublisher 는 Kafka 설정이 없거나 초기화에 실패하면 NoopPublisher 를 사용한다.
func newPublisher(cfg config.KafkaConfig) eventbus.Publisher {
	if !cfg.Enabled() {
		return eventbus.NoopPublisher{}
	}
	if err := eventbus.EnsureTopics(cfg.BootstrapServers, cfg.Topic, cfg.Partitions); err != nil {
		logger.WarnWithFields("kafka topic ensure failed", logger.Fields{"topic": cfg.Topic, "error": err.Error()})
	}
	p, err := eventbus.NewKafkaPublisher(cfg)
	if err != nil {
		logger.WarnWithFields("kafka publisher disabled", logger.Fields{"error": err.Error()})
		return eventbus.NoopPublisher{}
	}
	return p
}
