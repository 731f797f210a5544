package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

type openaiCompleter struct {
	client openai.Client
	model  string
}

// newAzureCompleter targets an Azure OpenAI deployment. The deployment name is sent as
// the model and mapped to /openai/deployments/{deployment}/chat/completions.
func newAzureCompleter(cfg Config) (Completer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("azure endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("azure deployment is required")
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = "2024-02-01"
	}

	opts := append(baseOptions(cfg),
		azure.WithEndpoint(strings.TrimSuffix(cfg.BaseURL, "/"), apiVersion),
		azure.WithAPIKey(cfg.APIKey),
	)

	return &openaiCompleter{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func newOpenAICompleter(cfg Config) (Completer, error) {
	opts := append(baseOptions(cfg), option.WithAPIKey(cfg.APIKey))
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openaiCompleter{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// No retries: callers own failure handling.
func baseOptions(cfg Config) []option.RequestOption {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return opts
}

func (c *openaiCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.UserPrompt))

	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response: %w", ErrEmptyCompletion)
	}

	slog.DebugContext(ctx, "llm completion finished",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return &CompletionResponse{
		Content:          strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}

func (c *openaiCompleter) Model() string {
	return c.model
}
