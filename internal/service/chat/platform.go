package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

var ErrResponseURLNotAllowed = errors.New("response url not allowed")

// Platform is the chat side of an interaction: opening modals and answering
// through the per-command response URL.
type Platform interface {
	OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
	PostResponse(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error
}

type SlackConfig struct {
	BotToken string
	APIURL   string // Optional: Web API base, e.g. https://slack.com/api/
	// ResponseURLHosts restricts where PostResponse may send. Empty allows any https host.
	ResponseURLHosts []string
	Timeout          time.Duration
	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

type slackPlatform struct {
	client       *slack.Client
	httpClient   *http.Client
	allowedHosts map[string]bool
}

func NewSlackPlatform(cfg SlackConfig) (Platform, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("slack bot token is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []slack.Option{slack.OptionHTTPClient(httpClient)}
	if cfg.APIURL != "" {
		apiURL := cfg.APIURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}

	allowed := make(map[string]bool, len(cfg.ResponseURLHosts))
	for _, host := range cfg.ResponseURLHosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			allowed[host] = true
		}
	}

	return &slackPlatform{
		client:       slack.New(cfg.BotToken, opts...),
		httpClient:   httpClient,
		allowedHosts: allowed,
	}, nil
}

func (p *slackPlatform) OpenView(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	if _, err := p.client.OpenViewContext(ctx, triggerID, view); err != nil {
		return fmt.Errorf("opening slack view: %w", err)
	}
	return nil
}

func (p *slackPlatform) PostResponse(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error {
	if err := p.checkResponseURL(responseURL); err != nil {
		return err
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, responseURL, p.httpClient, msg); err != nil {
		return fmt.Errorf("posting to response url: %w", err)
	}
	return nil
}

// response_url comes from the request body, so it is only trusted once the
// signature has been verified, it is https, and the host is one Slack actually uses.
func (p *slackPlatform) checkResponseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResponseURLNotAllowed, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrResponseURLNotAllowed, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: no host", ErrResponseURLNotAllowed)
	}
	if len(p.allowedHosts) > 0 && !p.allowedHosts[host] {
		return fmt.Errorf("%w: host %q", ErrResponseURLNotAllowed, host)
	}
	return nil
}
