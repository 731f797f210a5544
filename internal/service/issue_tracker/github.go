package issue_tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"
)

type GitHubConfig struct {
	Repo    string // owner/name
	Token   string
	BaseURL string // Optional: API root, e.g. https://ghe.example.com/api/v3/
	Timeout time.Duration
}

type gitHubIssueTrackerService struct {
	client *github.Client
	owner  string
	name   string
}

func NewGitHubIssueTracker(cfg GitHubConfig) (IssueTrackerService, error) {
	owner, name, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("github repo must be owner/name, got %q", cfg.Repo)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("github token is required")
	}

	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	httpClient.Timeout = cfg.Timeout

	client, err := newGitHubClient(httpClient, cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	return &gitHubIssueTrackerService{
		client: client,
		owner:  owner,
		name:   name,
	}, nil
}

func newGitHubClient(httpClient *http.Client, baseURL string) (*github.Client, error) {
	client := github.NewClient(httpClient)
	if baseURL == "" {
		return client, nil
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing github base url: %w", err)
	}
	client.BaseURL = u
	return client, nil
}

func (s *gitHubIssueTrackerService) CreateIssue(ctx context.Context, params CreateIssueParams) (*Issue, error) {
	req := &github.IssueRequest{
		Title: &params.Title,
		Body:  &params.Body,
	}
	if len(params.Labels) > 0 {
		labels := params.Labels
		req.Labels = &labels
	}

	created, _, err := s.client.Issues.Create(ctx, s.owner, s.name, req)
	if err != nil {
		return nil, fmt.Errorf("creating issue on github: %w", err)
	}

	issue := &Issue{
		Number: int64(created.GetNumber()),
		URL:    created.GetHTMLURL(),
	}
	if err := validIssue(issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *gitHubIssueTrackerService) AddComment(ctx context.Context, params AddCommentParams) error {
	comment := &github.IssueComment{Body: &params.Body}
	if _, _, err := s.client.Issues.CreateComment(ctx, s.owner, s.name, int(params.IssueNumber), comment); err != nil {
		return fmt.Errorf("commenting on github issue %d: %w", params.IssueNumber, err)
	}
	return nil
}

func (s *gitHubIssueTrackerService) Repo() string {
	return s.owner + "/" + s.name
}
