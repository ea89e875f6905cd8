package workpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
	"golang.org/x/sync/semaphore"
)

// ErrUnavailable is returned by a disabled executor.
var ErrUnavailable = errors.New("lightweight executor is unavailable")

// DefaultLimit bounds the number of concurrently running tasks.
const DefaultLimit = 1024

// Task is a unit of background work.
type Task func(ctx context.Context)

// Executor runs tasks in the background.
type Executor interface {
	// Go schedules task. It blocks only while the executor is at capacity,
	// and returns ctx.Err() if ctx ends first.
	Go(ctx context.Context, task Task) error
	// Available reports whether Go can run tasks at all.
	Available() bool
}

// Pool runs each task on its own goroutine, bounded by a weighted semaphore.
type Pool struct {
	sem   *semaphore.Weighted
	limit int64
	wg    sync.WaitGroup
}

// NewPool creates a pool that runs at most limit tasks at once.
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pool{
		sem:   semaphore.NewWeighted(int64(limit)),
		limit: int64(limit),
	}
}

func (p *Pool) Go(ctx context.Context, task Task) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to schedule task: %w", err)
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				ctxlog.FromContext(ctx).Error("Background task panicked.", "panic", r)
			}
		}()
		task(ctx)
	}()
	return nil
}

func (p *Pool) Available() bool {
	return true
}

// Limit returns the concurrency bound.
func (p *Pool) Limit() int {
	return int(p.limit)
}

// Wait blocks until every scheduled task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Disabled rejects every task.
type Disabled struct{}

func (Disabled) Go(context.Context, Task) error { return ErrUnavailable }
func (Disabled) Available() bool                { return false }

// Inline runs every task synchronously on the caller's goroutine. It is the
// deterministic executor used by tests.
type Inline struct{}

func (Inline) Go(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	task(ctx)
	return nil
}

func (Inline) Available() bool { return true }
