package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"basegraph.app/issuedesk/common/id"
	"basegraph.app/issuedesk/common/logger"
)

var ErrRunnerClosed = errors.New("task runner closed")

const defaultTimeout = 60 * time.Second

type Func func(ctx context.Context) error

type Config struct {
	// Timeout bounds each task. Zero means the default of 60s.
	Timeout time.Duration
}

// Runner executes work that must outlive the request that scheduled it.
// Tasks are detached from the caller's cancellation but tracked, so Wait can
// hold shutdown until every callback has been delivered.
type Runner struct {
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(cfg Config) *Runner {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{timeout: timeout}
}

// Handle reports the outcome of a scheduled task.
type Handle struct {
	ID   int64
	Name string

	done chan struct{}
	err  error
}

// Done is closed once the task has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Err is valid after Done is closed.
func (h *Handle) Err() error {
	<-h.done
	return h.err
}

// Go schedules fn in its own goroutine and returns immediately.
// Values carried by ctx (log fields, trace) are kept; its deadline and cancellation are not.
func (r *Runner) Go(ctx context.Context, name string, fn Func) (*Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRunnerClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	h := &Handle{
		ID:   id.New(),
		Name: name,
		done: make(chan struct{}),
	}

	taskCtx := logger.WithLogFields(context.WithoutCancel(ctx), logger.LogFields{
		TaskID: &h.ID,
	})

	go func() {
		defer r.wg.Done()
		defer close(h.done)
		h.err = r.run(taskCtx, h, fn)
	}()

	return h, nil
}

func (r *Runner) run(ctx context.Context, h *Handle, fn Func) (err error) {
	sc := logger.StartDetachedSpan(ctx, "task."+h.Name)
	defer sc.End()
	sc.Span().SetAttributes(
		attribute.Int64("task.id", h.ID),
		attribute.String("task.name", h.Name),
	)

	ctx, cancel := context.WithTimeout(sc.Context(), r.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "panic recovered in task",
				"panic", p,
				"task", h.Name,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", p)
		}

		if err != nil {
			sc.Fail(err)
			slog.ErrorContext(ctx, "task failed",
				"error", err,
				"task", h.Name,
				"duration_ms", time.Since(start).Milliseconds())
			return
		}
		slog.DebugContext(ctx, "task finished",
			"task", h.Name,
			"duration_ms", time.Since(start).Milliseconds())
	}()

	return fn(ctx)
}

// Close stops accepting new tasks. Tasks already scheduled keep running.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

// Wait blocks until every scheduled task has returned or ctx is done.
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for tasks: %w", ctx.Err())
	}
}
