package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/slack-go/slack"

	"basegraph.app/issuedesk/internal/model"
	"basegraph.app/issuedesk/internal/service"
	"basegraph.app/issuedesk/internal/service/issue_tracker"
	"basegraph.app/issuedesk/internal/task"
)

// sectionText renders the response the way the HTTP layer does and reads back the
// first section's text.
func sectionText(resp *slack.ViewSubmissionResponse) string {
	raw, err := json.Marshal(resp)
	Expect(err).NotTo(HaveOccurred())

	var decoded struct {
		ResponseAction string `json:"response_action"`
		View           struct {
			Blocks []struct {
				Type string `json:"type"`
				Text struct {
					Text string `json:"text"`
				} `json:"text"`
			} `json:"blocks"`
		} `json:"view"`
	}
	Expect(json.Unmarshal(raw, &decoded)).To(Succeed())
	Expect(decoded.ResponseAction).To(Equal("update"))
	Expect(decoded.View.Blocks).NotTo(BeEmpty())
	Expect(decoded.View.Blocks[0].Type).To(Equal("section"))
	return decoded.View.Blocks[0].Text.Text
}

var _ = Describe("SubmissionHandler", func() {
	var (
		tracker    *mockTracker
		assistant  *mockAssistant
		runner     *task.Runner
		handler    service.SubmissionHandler
		submission model.ViewSubmission
	)

	BeforeEach(func() {
		tracker = &mockTracker{
			repo: "acme/appsec",
			createIssueFn: func(ctx context.Context, params issue_tracker.CreateIssueParams) (*issue_tracker.Issue, error) {
				return &issue_tracker.Issue{Number: 42, URL: "https://example/42"}, nil
			},
		}
		assistant = &mockAssistant{}
		runner = task.NewRunner(task.Config{Timeout: time.Second})
		handler = service.NewSubmissionHandler(tracker, assistant, runner)
		submission = model.ViewSubmission{
			Title:       "Bug X",
			Description: "repro steps",
			UserID:      "U1",
		}
	})

	drain := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(runner.Wait(ctx)).To(Succeed())
	}

	It("replaces the modal with a link to the created issue", func() {
		resp := handler.Handle(context.Background(), submission)

		Expect(resp.ResponseAction).To(Equal(slack.RAUpdate))
		Expect(resp.View.Title.Text).To(Equal("Done"))
		Expect(sectionText(resp)).To(ContainSubstring("<https://example/42|#42>"))
		Expect(sectionText(resp)).To(Equal("Created issue: <https://example/42|#42>"))
	})

	It("sends title, description and labels to the tracker", func() {
		submission.Labels = []string{"security", "p1"}

		handler.Handle(context.Background(), submission)

		Expect(tracker.Created()).To(Equal([]issue_tracker.CreateIssueParams{{
			Title:  "Bug X",
			Body:   "repro steps",
			Labels: []string{"security", "p1"},
		}}))
	})

	It("returns a well-formed degraded view when the tracker fails", func() {
		tracker.createIssueFn = func(ctx context.Context, params issue_tracker.CreateIssueParams) (*issue_tracker.Issue, error) {
			return nil, errors.New("502 bad gateway")
		}

		var resp *slack.ViewSubmissionResponse
		Expect(func() { resp = handler.Handle(context.Background(), submission) }).NotTo(Panic())

		Expect(resp).NotTo(BeNil())
		Expect(sectionText(resp)).To(ContainSubstring("could not be created"))
	})

	It("files the issue in the configured repository when the modal names another", func() {
		submission.Repo = "someone/else"

		resp := handler.Handle(context.Background(), submission)

		Expect(tracker.Created()).To(HaveLen(1))
		Expect(sectionText(resp)).To(Equal("Created issue: <https://example/42|#42>"))
	})

	It("does not ask for remediation tips unless requested", func() {
		handler.Handle(context.Background(), submission)
		drain()

		Expect(assistant.Calls()).To(BeZero())
		Expect(tracker.Comments()).To(BeEmpty())
	})

	Context("when remediation tips are requested", func() {
		BeforeEach(func() {
			submission.AIRequested = true
		})

		It("comments the tips on the created issue after responding", func() {
			var gotTitle, gotDescription string
			assistant.remediationTipsFn = func(ctx context.Context, title, description string) (string, error) {
				gotTitle, gotDescription = title, description
				return "Encode output.", nil
			}

			resp := handler.Handle(context.Background(), submission)
			Expect(sectionText(resp)).To(ContainSubstring("#42"))
			drain()

			Expect(gotTitle).To(Equal("Bug X"))
			Expect(gotDescription).To(Equal("repro steps"))
			comments := tracker.Comments()
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].IssueNumber).To(Equal(int64(42)))
			Expect(comments[0].Body).To(HaveSuffix("Encode output."))
		})

		It("leaves the issue alone when generation fails", func() {
			assistant.remediationTipsFn = func(ctx context.Context, title, description string) (string, error) {
				return "", errors.New("boom")
			}

			handler.Handle(context.Background(), submission)
			drain()

			Expect(tracker.Comments()).To(BeEmpty())
		})

		It("skips the tips when the issue could not be created", func() {
			tracker.createIssueFn = func(ctx context.Context, params issue_tracker.CreateIssueParams) (*issue_tracker.Issue, error) {
				return nil, issue_tracker.ErrIncompleteIssue
			}

			handler.Handle(context.Background(), submission)
			drain()

			Expect(assistant.Calls()).To(BeZero())
			Expect(tracker.Comments()).To(BeEmpty())
		})
	})
})
