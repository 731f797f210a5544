package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OTel    OTelConfig
	Slack   SlackConfig
	Tracker TrackerConfig
	LLM     LLMConfig
	Tasks   TaskConfig
	Env     string
	Port    string
	NodeID  int64 // snowflake node, distinct per replica
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	SampleRatio    float64
}

type SlackConfig struct {
	SigningSecret string
	BotToken      string
	APIURL        string // Optional: override for the Web API base URL
	// Hosts a response_url may point at. Empty allows any https host.
	ResponseURLHosts []string
	MaxBodyBytes     int64
	Timeout          time.Duration
	// OpenViewTimeout bounds views.open, which must finish inside Slack's 3s ack window.
	OpenViewTimeout time.Duration
}

type TrackerConfig struct {
	Provider string // "github" or "gitlab"
	Repo     string // "owner/name" on GitHub, project path or id on GitLab
	Token    string
	BaseURL  string // Optional: GitHub Enterprise or self-hosted GitLab
	Timeout  time.Duration
}

type LLMConfig struct {
	Provider    string // "azure", "openai" or "anthropic"
	Endpoint    string // Azure resource endpoint, or custom base URL for the others
	APIKey      string
	Deployment  string // Azure deployment name, model name for the others
	APIVersion  string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

type TaskConfig struct {
	Timeout time.Duration
}

const (
	TrackerGitHub = "github"
	TrackerGitLab = "gitlab"
)

// Load reads configuration from environment variables.
// In development, a .env file in the working directory is loaded first if present.
func Load() (Config, error) {
	if getEnv("APP_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:    getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "8080"),
		NodeID: int64(getEnvInt("NODE_ID", 1)),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "issuedesk"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
		Slack: SlackConfig{
			SigningSecret:    getEnv("SLACK_SIGNING_SECRET", ""),
			BotToken:         getEnv("SLACK_BOT_TOKEN", ""),
			APIURL:           getEnv("SLACK_API_URL", ""),
			ResponseURLHosts: getEnvList("SLACK_RESPONSE_URL_HOSTS", []string{"hooks.slack.com"}),
			MaxBodyBytes:     int64(getEnvInt("SLACK_MAX_BODY_BYTES", 1<<20)),
			Timeout:          getEnvDuration("SLACK_TIMEOUT", 10*time.Second),
			OpenViewTimeout:  getEnvDuration("SLACK_OPEN_VIEW_TIMEOUT", 2500*time.Millisecond),
		},
		Tracker: TrackerConfig{
			Provider: getEnv("TRACKER_PROVIDER", TrackerGitHub),
			Repo:     firstEnv("TRACKER_REPO", "GITHUB_REPO", "GH_REPO"),
			Token:    firstEnv("TRACKER_TOKEN", "GITHUB_TOKEN"),
			BaseURL:  getEnv("TRACKER_BASE_URL", ""),
			Timeout:  getEnvDuration("TRACKER_TIMEOUT", 10*time.Second),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "azure"),
			Endpoint:    firstEnv("AOAI_ENDPOINT", "LLM_BASE_URL"),
			APIKey:      firstEnv("AOAI_API_KEY", "LLM_API_KEY"),
			Deployment:  firstEnv("AOAI_DEPLOYMENT", "LLM_MODEL"),
			APIVersion:  getEnv("OPENAI_API_VERSION", "2024-02-01"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 300),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.3),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		},
		Tasks: TaskConfig{
			Timeout: getEnvDuration("TASK_TIMEOUT", 60*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Slack.SigningSecret == "" {
		return fmt.Errorf("SLACK_SIGNING_SECRET is required")
	}
	if c.Slack.BotToken == "" {
		return fmt.Errorf("SLACK_BOT_TOKEN is required")
	}

	switch c.Tracker.Provider {
	case TrackerGitHub:
		if strings.Count(c.Tracker.Repo, "/") != 1 {
			return fmt.Errorf("TRACKER_REPO must be owner/name for github, got %q", c.Tracker.Repo)
		}
	case TrackerGitLab:
		if c.Tracker.Repo == "" {
			return fmt.Errorf("TRACKER_REPO is required")
		}
	default:
		return fmt.Errorf("unsupported TRACKER_PROVIDER: %s", c.Tracker.Provider)
	}
	if c.Tracker.Token == "" {
		return fmt.Errorf("TRACKER_TOKEN (or GITHUB_TOKEN) is required")
	}

	if !c.LLM.Enabled() {
		return fmt.Errorf("LLM_PROVIDER %q is not fully configured", c.LLM.Provider)
	}

	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	switch c.Provider {
	case "azure":
		return c.APIKey != "" && c.Endpoint != "" && c.Deployment != ""
	case "openai", "anthropic":
		return c.APIKey != ""
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok && value != "" {
			return value
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
