package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/issuedesk/core/config"
)

// Setup installs the process-wide slog handler:
// OTLP bridge in production when an endpoint is set, JSON in production otherwise, text elsewhere.
func Setup(cfg config.Config) {
	slog.SetDefault(slog.New(newHandler(cfg, os.Stdout)))
}

func newHandler(cfg config.Config, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	switch {
	case cfg.IsProduction() && cfg.OTel.Enabled():
		// The bridge already records the span context on each log record.
		return &ContextHandler{
			Handler: otelslog.NewHandler(cfg.OTel.ServiceName,
				otelslog.WithLoggerProvider(global.GetLoggerProvider())),
			skipTrace: true,
		}
	case cfg.IsProduction():
		return NewContextHandler(slog.NewJSONHandler(w, opts))
	default:
		return NewContextHandler(slog.NewTextHandler(w, opts))
	}
}

// ContextHandler copies trace ids and LogFields from the context onto every record.
type ContextHandler struct {
	slog.Handler
	skipTrace bool
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.skipTrace {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			r.AddAttrs(
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
		}
	}

	r.AddAttrs(GetLogFields(ctx).attrs()...)
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs), skipTrace: h.skipTrace}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name), skipTrace: h.skipTrace}
}

func (f LogFields) attrs() []slog.Attr {
	var attrs []slog.Attr
	if f.RequestID != nil {
		attrs = append(attrs, slog.Int64("request_id", *f.RequestID))
	}
	if f.TaskID != nil {
		attrs = append(attrs, slog.Int64("task_id", *f.TaskID))
	}
	if f.InteractionType != nil {
		attrs = append(attrs, slog.String("interaction_type", *f.InteractionType))
	}
	if f.SlackUserID != nil {
		attrs = append(attrs, slog.String("slack_user_id", *f.SlackUserID))
	}
	if f.Component != "" {
		attrs = append(attrs, slog.String("component", f.Component))
	}
	return attrs
}
