package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"basegraph.app/issuedesk/common/id"
	"basegraph.app/issuedesk/common/llm"
	"basegraph.app/issuedesk/common/logger"
	"basegraph.app/issuedesk/common/otel"
	"basegraph.app/issuedesk/core/config"
	"basegraph.app/issuedesk/internal/http/middleware"
	httprouter "basegraph.app/issuedesk/internal/http/router"
	"basegraph.app/issuedesk/internal/service"
	"basegraph.app/issuedesk/internal/service/chat"
	"basegraph.app/issuedesk/internal/service/issue_tracker"
	"basegraph.app/issuedesk/internal/slackauth"
	"basegraph.app/issuedesk/internal/task"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "issuedesk starting",
		"env", cfg.Env,
		"tracker", cfg.Tracker.Provider,
		"repo", cfg.Tracker.Repo,
		"llm", cfg.LLM.Provider)

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	runner := task.NewRunner(task.Config{Timeout: cfg.Tasks.Timeout})

	services, err := buildServices(cfg, runner)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build services", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    64 << 10,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	// Pending answers may still be generating; give them the full task timeout.
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Tasks.Timeout+10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	runner.Close()
	if err := runner.Wait(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "background tasks did not finish", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func buildServices(cfg config.Config, runner *task.Runner) (*service.Services, error) {
	platform, err := chat.NewSlackPlatform(chat.SlackConfig{
		BotToken:         cfg.Slack.BotToken,
		APIURL:           cfg.Slack.APIURL,
		ResponseURLHosts: cfg.Slack.ResponseURLHosts,
		Timeout:          cfg.Slack.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating slack platform: %w", err)
	}

	tracker, trackerName, err := newIssueTracker(cfg.Tracker)
	if err != nil {
		return nil, fmt.Errorf("creating issue tracker: %w", err)
	}

	completer, err := llm.NewCompleter(llm.Config{
		Provider:   cfg.LLM.Provider,
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.Endpoint,
		Model:      cfg.LLM.Deployment,
		APIVersion: cfg.LLM.APIVersion,
		Timeout:    cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	return service.NewServices(service.ServicesConfig{
		Platform:    platform,
		Tracker:     tracker,
		TrackerName: trackerName,
		Assistant: service.NewAssistant(completer, service.AssistantConfig{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: llm.Temp(cfg.LLM.Temperature),
		}),
		Scheduler:       runner,
		OpenViewTimeout: cfg.Slack.OpenViewTimeout,
	}), nil
}

func newIssueTracker(cfg config.TrackerConfig) (issue_tracker.IssueTrackerService, string, error) {
	switch cfg.Provider {
	case config.TrackerGitLab:
		tracker, err := issue_tracker.NewGitLabIssueTracker(issue_tracker.GitLabConfig{
			Project: cfg.Repo,
			Token:   cfg.Token,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		return tracker, "GitLab", err
	default:
		tracker, err := issue_tracker.NewGitHubIssueTracker(issue_tracker.GitHubConfig{
			Repo:    cfg.Repo,
			Token:   cfg.Token,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
		return tracker, "GitHub", err
	}
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → RequestID tags context → Logger logs with both
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Verifier:     slackauth.NewVerifier(cfg.Slack.SigningSecret),
		MaxBodyBytes: cfg.Slack.MaxBodyBytes,
	})

	return router
}
