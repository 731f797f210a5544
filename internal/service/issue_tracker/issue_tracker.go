package issue_tracker

import (
	"context"
	"errors"
)

var ErrIncompleteIssue = errors.New("tracker returned an issue without number or url")

type CreateIssueParams struct {
	Title  string
	Body   string
	Labels []string
}

type AddCommentParams struct {
	IssueNumber int64
	Body        string
}

// Issue is what the tracker hands back after creation.
type Issue struct {
	Number int64
	URL    string
}

type IssueTrackerService interface {
	CreateIssue(ctx context.Context, params CreateIssueParams) (*Issue, error)
	AddComment(ctx context.Context, params AddCommentParams) error
	// Repo identifies the repository or project issues are filed in.
	Repo() string
}

func validIssue(issue *Issue) error {
	if issue == nil || issue.Number <= 0 || issue.URL == "" {
		return ErrIncompleteIssue
	}
	return nil
}
