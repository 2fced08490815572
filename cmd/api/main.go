package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"feedback-ai/cmd/api/router"
	"feedback-ai/cmd/internal/bootstrap"
	"feedback-ai/config"
	"feedback-ai/logger"
)

// @title           AI Feedback API
// @version         1.0
// @description     Collects star ratings and reviews and enriches them with a Gemini-generated reply, summary and action list.
// @BasePath        /
func main() {
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level, cfg.Server.ServiceName)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		logger.Log.Errorf("failed to start: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: router.New(router.Deps{
			Submission:  app.Submission,
			Admin:       app.Admin,
			HealthCheck: app.HealthCheck,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.InfoWithFields("http server listening", logger.Fields{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Errorf("http server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	// 진행 중인 제출은 최대 재시도 대기 + 저장 시간까지 기다린다.
	grace := max(cfg.Analysis.Timeout+cfg.Storage.WriteTimeout, 15*time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("http server shutdown: %v", err)
	}
	app.Close(shutdownCtx)
}
