package service

import (
	"time"

	"basegraph.app/issuedesk/internal/service/chat"
	"basegraph.app/issuedesk/internal/service/issue_tracker"
)

type ServicesConfig struct {
	Platform    chat.Platform
	Tracker     issue_tracker.IssueTrackerService
	TrackerName string
	Assistant   Assistant
	Scheduler   Scheduler

	OpenViewTimeout time.Duration
}

type Services struct {
	commands    CommandDispatcher
	submissions SubmissionHandler
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		commands: NewCommandDispatcher(cfg.Platform, cfg.Assistant, cfg.Scheduler, CommandDispatcherConfig{
			TrackerName:     cfg.TrackerName,
			Repo:            cfg.Tracker.Repo(),
			OpenViewTimeout: cfg.OpenViewTimeout,
		}),
		submissions: NewSubmissionHandler(cfg.Tracker, cfg.Assistant, cfg.Scheduler),
	}
}

func (s *Services) Commands() CommandDispatcher {
	return s.commands
}

func (s *Services) Submissions() SubmissionHandler {
	return s.submissions
}
