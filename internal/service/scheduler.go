package service

import (
	"context"

	"basegraph.app/issuedesk/internal/task"
)

// Scheduler runs work after the HTTP response has been written. *task.Runner implements it.
type Scheduler interface {
	Go(ctx context.Context, name string, fn task.Func) (*task.Handle, error)
}
