// Package scheduler runs named background tasks for the editor
// session's cooperative event loop.
//
// Tasks receive owned data (World snapshots, document clones) at
// dispatch time, never references into live session state. Completion
// events are delivered in the order tasks finish, not the order they
// were dispatched; callers must tolerate out-of-order completion.
// There is no cancellation primitive and no timeout: superseding work
// wins by structurally replacing the previous result.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lilBchii/tide/internal/logging"
)

// TaskFunc is the body of a background task.
type TaskFunc func(ctx context.Context) (interface{}, error)

// Completion is the discrete event a finished task re-enters the event
// loop with.
type Completion struct {
	ID       string
	Name     string
	Value    interface{}
	Err      error
	Duration time.Duration
}

// Runner dispatches named background tasks and delivers their
// completions on a single channel.
type Runner struct {
	completions chan Completion
	logger      logging.Logger
	wg          sync.WaitGroup

	mutex   sync.Mutex
	closed  bool
	pending int
}

// NewRunner creates a runner with the given completion buffer size.
func NewRunner(buffer int, logger logging.Logger) *Runner {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		completions: make(chan Completion, buffer),
		logger:      logger.WithComponent("scheduler"),
	}
}

// Go dispatches fn as a background task and returns its task id.
// A closed runner drops the dispatch and returns the empty id.
func (r *Runner) Go(ctx context.Context, name string, fn TaskFunc) string {
	r.mutex.Lock()
	if r.closed {
		r.mutex.Unlock()
		return ""
	}
	r.pending++
	r.mutex.Unlock()

	id := uuid.NewString()
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		start := time.Now()

		value, err := fn(ctx)

		completion := Completion{
			ID:       id,
			Name:     name,
			Value:    value,
			Err:      err,
			Duration: time.Since(start),
		}
		if err != nil {
			r.logger.Debug(ctx, "task failed", "task", name, "id", id, "error", err.Error())
		}

		r.mutex.Lock()
		r.pending--
		closed := r.closed
		r.mutex.Unlock()
		if closed {
			return
		}
		select {
		case r.completions <- completion:
		default:
			// An undrained loop must not wedge the worker.
			r.logger.Warn(ctx, nil, "completion dropped, channel full", "task", name, "id", id)
		}
	}()

	return id
}

// Completions returns the channel completion events arrive on, in
// finish order.
func (r *Runner) Completions() <-chan Completion {
	return r.completions
}

// Pending returns the number of tasks dispatched but not yet finished.
func (r *Runner) Pending() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.pending
}

// Close waits for in-flight tasks and closes the completion channel.
// Results of tasks still running when Close is called are discarded.
func (r *Runner) Close() {
	r.mutex.Lock()
	if r.closed {
		r.mutex.Unlock()
		return
	}
	r.closed = true
	r.mutex.Unlock()

	r.wg.Wait()
	close(r.completions)
}
