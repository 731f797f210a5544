package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/slack-go/slack"

	"basegraph.app/issuedesk/common/logger"
	"basegraph.app/issuedesk/internal/model"
	"basegraph.app/issuedesk/internal/service/chat"
)

const (
	AckText      = "Opening form…"
	FallbackText = "Sorry—AI response failed."

	defaultFallbackTimeout = 10 * time.Second
	// Slack drops the command after 3s and the trigger id expires with it.
	defaultOpenViewTimeout = 2500 * time.Millisecond
)

// Ack is the synchronous answer to a slash command. Slack shows Body to the user.
type Ack struct {
	Status int
	Body   string
}

type CommandDispatcher interface {
	Handle(ctx context.Context, cmd model.SlashCommand) Ack
}

type CommandDispatcherConfig struct {
	TrackerName string
	Repo        string
	// FallbackTimeout bounds the fallback post, which gets a fresh deadline so it can
	// still go out after the answer ran out of time.
	FallbackTimeout time.Duration
	// OpenViewTimeout bounds views.open, which runs before the ack is written.
	OpenViewTimeout time.Duration
}

type commandDispatcher struct {
	platform  chat.Platform
	assistant Assistant
	scheduler Scheduler
	cfg       CommandDispatcherConfig
}

func NewCommandDispatcher(platform chat.Platform, assistant Assistant, scheduler Scheduler, cfg CommandDispatcherConfig) CommandDispatcher {
	if cfg.FallbackTimeout <= 0 {
		cfg.FallbackTimeout = defaultFallbackTimeout
	}
	if cfg.OpenViewTimeout <= 0 {
		cfg.OpenViewTimeout = defaultOpenViewTimeout
	}
	return &commandDispatcher{
		platform:  platform,
		assistant: assistant,
		scheduler: scheduler,
		cfg:       cfg,
	}
}

func (d *commandDispatcher) Handle(ctx context.Context, cmd model.SlashCommand) Ack {
	fields := logger.LogFields{
		InteractionType: logger.Ptr(model.InteractionSlashCommand),
		Component:       "issuedesk.service.command",
	}
	if cmd.UserID != "" {
		fields.SlackUserID = &cmd.UserID
	}
	ctx = logger.WithLogFields(ctx, fields)

	d.openModal(ctx, cmd)

	if cmd.Text != "" && cmd.ResponseURL != "" {
		h, err := d.scheduler.Go(ctx, "answer_command", func(ctx context.Context) error {
			return d.answer(ctx, cmd)
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to schedule answer", "error", err)
		} else {
			slog.InfoContext(ctx, "answer scheduled", "task_id", h.ID, "text", logger.Truncate(cmd.Text, 80))
		}
	}

	return Ack{Status: http.StatusOK, Body: AckText}
}

// openModal never holds the ack past Slack's deadline. Failures are logged only.
func (d *commandDispatcher) openModal(ctx context.Context, cmd model.SlashCommand) {
	if cmd.TriggerID == "" {
		slog.WarnContext(ctx, "slash command without trigger_id, not opening modal", "command", cmd.Command)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.OpenViewTimeout)
	defer cancel()

	if err := d.platform.OpenView(ctx, cmd.TriggerID, CreateIssueModal(d.cfg.TrackerName, d.cfg.Repo)); err != nil {
		slog.ErrorContext(ctx, "failed to open create issue modal", "error", err, "command", cmd.Command)
	}
}

// answer delivers exactly one terminal message: the answer, or the fallback when
// generating or delivering the answer failed.
func (d *commandDispatcher) answer(ctx context.Context, cmd model.SlashCommand) error {
	err := d.deliverAnswer(ctx, cmd)
	if err == nil {
		return nil
	}

	slog.WarnContext(ctx, "answer failed, posting fallback", "error", err)

	fallbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.cfg.FallbackTimeout)
	defer cancel()

	if fbErr := d.platform.PostResponse(fallbackCtx, cmd.ResponseURL, &slack.WebhookMessage{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         FallbackText,
	}); fbErr != nil {
		return fmt.Errorf("posting fallback: %w (after %w)", fbErr, err)
	}
	return err
}

// deliverAnswer turns a panic into an error so the caller still posts the fallback.
func (d *commandDispatcher) deliverAnswer(ctx context.Context, cmd model.SlashCommand) (err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "panic recovered while answering",
				"panic", p,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	text, err := d.assistant.Answer(ctx, cmd.Text)
	if err != nil {
		return err
	}
	if err := d.platform.PostResponse(ctx, cmd.ResponseURL, &slack.WebhookMessage{
		ResponseType:    slack.ResponseTypeEphemeral,
		ReplaceOriginal: false,
		Text:            text,
	}); err != nil {
		return fmt.Errorf("delivering answer: %w", err)
	}
	return nil
}
