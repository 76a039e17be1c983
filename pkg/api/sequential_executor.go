package api

import (
	"context"
	"sync"
	"time"
)

// SequentialExecutor runs requests one at a time and holds the slot for
// a fixed delay after each request, whether it succeeded or not.
// Sharing one executor across callers keeps the upstream request rate
// bounded for the whole process.
type SequentialExecutor struct {
	mu    sync.Mutex
	delay time.Duration
}

// NewSequentialExecutor creates a new sequential executor
func NewSequentialExecutor(delay time.Duration) *SequentialExecutor {
	if delay < 0 {
		delay = 0
	}
	return &SequentialExecutor{delay: delay}
}

// Delay returns the post-request delay
func (se *SequentialExecutor) Delay() time.Duration {
	return se.delay
}

// Execute runs fn after any in-flight request and its delay have finished
func (se *SequentialExecutor) Execute(ctx context.Context, fn func() error) error {
	se.mu.Lock()
	defer se.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	err := fn()
	se.wait(ctx)
	return err
}

func (se *SequentialExecutor) wait(ctx context.Context) {
	if se.delay == 0 {
		return
	}

	timer := time.NewTimer(se.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
