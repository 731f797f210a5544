package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/issuedesk/common/llm"
	"basegraph.app/issuedesk/common/logger"
)

const (
	assistantSystemPrompt = "You are an AppSec helper. Be concise (<=150 words)."
	NoResponseText        = "No response."

	defaultMaxTokens   = 300
	defaultTemperature = 0.3
)

// Assistant turns free text into a short AppSec answer.
type Assistant interface {
	Answer(ctx context.Context, question string) (string, error)
	RemediationTips(ctx context.Context, title, description string) (string, error)
}

type AssistantConfig struct {
	MaxTokens int
	// Temperature is sent as given; nil means 0.3. Zero is a valid setting.
	Temperature *float64
}

type assistant struct {
	completer   llm.Completer
	maxTokens   int
	temperature float64
}

func NewAssistant(completer llm.Completer, cfg AssistantConfig) Assistant {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &assistant{
		completer:   completer,
		maxTokens:   cfg.MaxTokens,
		temperature: temperature,
	}
}

func (a *assistant) Answer(ctx context.Context, question string) (string, error) {
	return a.complete(ctx, question)
}

func (a *assistant) RemediationTips(ctx context.Context, title, description string) (string, error) {
	prompt := fmt.Sprintf("Suggest remediation tips for this security issue.\n\nTitle: %s\n\nDescription:\n%s", title, description)
	return a.complete(ctx, prompt)
}

// An empty completion is an answer ("No response."), not a failure.
func (a *assistant) complete(ctx context.Context, prompt string) (string, error) {
	sc := logger.StartSpan(ctx, "llm.complete", trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	sc.Span().SetAttributes(attribute.String("llm.model", a.completer.Model()))
	ctx = sc.Context()

	resp, err := a.completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: assistantSystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    a.maxTokens,
		Temperature:  llm.Temp(a.temperature),
	})
	if errors.Is(err, llm.ErrEmptyCompletion) {
		slog.WarnContext(ctx, "completion returned no choices", "model", a.completer.Model())
		return NoResponseText, nil
	}
	if err != nil {
		sc.Fail(err)
		return "", fmt.Errorf("generating answer: %w", err)
	}

	if resp.Content == "" {
		return NoResponseText, nil
	}
	return resp.Content, nil
}
