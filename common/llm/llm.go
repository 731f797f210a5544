package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider constants for LLM provider selection.
const (
	ProviderAzure     = "azure"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var ErrEmptyCompletion = errors.New("empty completion")

// Config holds LLM client configuration.
type Config struct {
	Provider   string // "azure", "openai" or "anthropic"
	APIKey     string
	BaseURL    string // Azure resource endpoint, or a custom endpoint for the others
	Model      string // Azure deployment name, or model name
	APIVersion string // Azure only
	Timeout    time.Duration
}

// Completer runs a single-turn chat completion.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Model() string
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  *float64 // nil = model default
}

type CompletionResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// NewCompleter selects the implementation for cfg.Provider.
func NewCompleter(cfg Config) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	switch cfg.Provider {
	case ProviderAzure, "":
		return newAzureCompleter(cfg)
	case ProviderOpenAI:
		return newOpenAICompleter(cfg)
	case ProviderAnthropic:
		return newAnthropicCompleter(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func Temp(t float64) *float64 {
	return &t
}
