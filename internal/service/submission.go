package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/issuedesk/common/logger"
	"basegraph.app/issuedesk/internal/model"
	"basegraph.app/issuedesk/internal/service/issue_tracker"
)

const remediationCommentHeader = "### AI remediation tips\n\n"

type SubmissionHandler interface {
	Handle(ctx context.Context, submission model.ViewSubmission) *slack.ViewSubmissionResponse
}

type submissionHandler struct {
	tracker   issue_tracker.IssueTrackerService
	assistant Assistant
	scheduler Scheduler
}

func NewSubmissionHandler(tracker issue_tracker.IssueTrackerService, assistant Assistant, scheduler Scheduler) SubmissionHandler {
	return &submissionHandler{
		tracker:   tracker,
		assistant: assistant,
		scheduler: scheduler,
	}
}

// Handle creates the issue and always returns an update view, the degraded one when
// the tracker fails.
func (h *submissionHandler) Handle(ctx context.Context, submission model.ViewSubmission) *slack.ViewSubmissionResponse {
	fields := logger.LogFields{
		InteractionType: logger.Ptr(model.InteractionViewSubmission),
		Component:       "issuedesk.service.submission",
	}
	if submission.UserID != "" {
		fields.SlackUserID = &submission.UserID
	}
	ctx = logger.WithLogFields(ctx, fields)

	// One set of tracker credentials per process; the configured repository wins.
	if submission.Repo != "" && submission.Repo != h.tracker.Repo() {
		slog.WarnContext(ctx, "modal repository differs from configured tracker repository",
			"modal_repo", submission.Repo,
			"tracker_repo", h.tracker.Repo())
	}

	issue, err := h.createIssue(ctx, submission)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create issue", "error", err, "repo", h.tracker.Repo())
		return slack.NewUpdateViewSubmissionResponse(IssueFailedModal())
	}

	slog.InfoContext(ctx, "issue created",
		"repo", h.tracker.Repo(),
		"issue_number", issue.Number,
		"issue_url", issue.URL,
		"labels", len(submission.Labels),
		"ai_requested", submission.AIRequested)

	if submission.AIRequested {
		h.scheduleRemediationTips(ctx, submission, issue)
	}

	return slack.NewUpdateViewSubmissionResponse(IssueCreatedModal(issue))
}

func (h *submissionHandler) createIssue(ctx context.Context, submission model.ViewSubmission) (*issue_tracker.Issue, error) {
	sc := logger.StartSpan(ctx, "tracker.create_issue", trace.WithSpanKind(trace.SpanKindClient))
	defer sc.End()
	sc.Span().SetAttributes(attribute.String("tracker.repo", h.tracker.Repo()))

	issue, err := h.tracker.CreateIssue(sc.Context(), issue_tracker.CreateIssueParams{
		Title:  submission.Title,
		Body:   submission.Description,
		Labels: submission.Labels,
	})
	if err != nil {
		sc.Fail(err)
		return nil, err
	}
	sc.Span().SetAttributes(attribute.Int64("tracker.issue_number", issue.Number))
	return issue, nil
}

func (h *submissionHandler) scheduleRemediationTips(ctx context.Context, submission model.ViewSubmission, issue *issue_tracker.Issue) {
	_, err := h.scheduler.Go(ctx, "remediation_tips", func(ctx context.Context) error {
		tips, err := h.assistant.RemediationTips(ctx, submission.Title, submission.Description)
		if err != nil {
			return err
		}
		if err := h.tracker.AddComment(ctx, issue_tracker.AddCommentParams{
			IssueNumber: issue.Number,
			Body:        remediationCommentHeader + tips,
		}); err != nil {
			return fmt.Errorf("adding remediation tips: %w", err)
		}
		slog.InfoContext(ctx, "remediation tips added", "issue_number", issue.Number)
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to schedule remediation tips", "error", err, "issue_number", issue.Number)
	}
}
