package issue_tracker

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

type GitLabConfig struct {
	Project string // numeric id or "group/project" path
	Token   string
	BaseURL string // Optional: self-hosted instance root, without /api/v4
	Timeout time.Duration
}

type gitLabIssueTrackerService struct {
	client  *gitlab.Client
	project string
}

func NewGitLabIssueTracker(cfg GitLabConfig) (IssueTrackerService, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("gitlab project is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("gitlab token is required")
	}

	client, err := newGitLabClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}

	return &gitLabIssueTrackerService{
		client:  client,
		project: cfg.Project,
	}, nil
}

func newGitLabClient(cfg GitLabConfig) (*gitlab.Client, error) {
	opts := []gitlab.ClientOptionFunc{
		gitlab.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		apiURL := strings.TrimSuffix(cfg.BaseURL, "/") + "/api/v4"
		opts = append(opts, gitlab.WithBaseURL(apiURL))
	}
	return gitlab.NewClient(cfg.Token, opts...)
}

func (s *gitLabIssueTrackerService) CreateIssue(ctx context.Context, params CreateIssueParams) (*Issue, error) {
	opts := &gitlab.CreateIssueOptions{
		Title:       gitlab.Ptr(params.Title),
		Description: gitlab.Ptr(params.Body),
	}
	if len(params.Labels) > 0 {
		labels := gitlab.LabelOptions(params.Labels)
		opts.Labels = &labels
	}

	created, _, err := s.client.Issues.CreateIssue(s.project, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("creating issue on gitlab: %w", err)
	}

	issue := &Issue{
		Number: int64(created.IID),
		URL:    created.WebURL,
	}
	if err := validIssue(issue); err != nil {
		return nil, err
	}
	return issue, nil
}

func (s *gitLabIssueTrackerService) AddComment(ctx context.Context, params AddCommentParams) error {
	opts := &gitlab.CreateIssueNoteOptions{Body: gitlab.Ptr(params.Body)}
	if _, _, err := s.client.Notes.CreateIssueNote(s.project, params.IssueNumber, opts, gitlab.WithContext(ctx)); err != nil {
		return fmt.Errorf("commenting on gitlab issue %d: %w", params.IssueNumber, err)
	}
	return nil
}

func (s *gitLabIssueTrackerService) Repo() string {
	return s.project
}
