package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"feedback-ai/cmd/internal/bootstrap"
	"feedback-ai/config"
	"feedback-ai/logger"
)

// MCP stdio server exposing submit_feedback / list_feedback to operator tooling.
// stdout carries the protocol, so logs go to stderr.
func main() {
	cfg := config.GetConfig()
	logger.InitWriter(os.Stderr, cfg.Logging.Level, cfg.Server.ServiceName+"-mcp")

	ctx := context.Background()
	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer app.Close(ctx)

	s := server.NewMCPServer(
		"feedback-ai",
		"1.0.0",
		server.WithToolCapabilities(false),
	)
	newFeedbackTools(app.Submission, app.Admin).register(s)

	if err := server.ServeStdio(s); err != nil {
		logger.Log.Errorf("mcp server error: %v", err)
	}
}
