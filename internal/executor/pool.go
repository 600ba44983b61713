package executor

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/strikelab/optionscan/pkg/logger"
)

// Task is one unit of independent work with a caller-chosen identity.
// Results are matched back by Key, never by completion order.
type Task[T any] struct {
	Key string
	Run func(ctx context.Context) (T, error)
}

// Outcome pairs a task identity with its result or captured error
type Outcome[T any] struct {
	Key   string
	Value T
	Err   error
}

// Pool runs independent tasks with bounded parallelism. A limiter, when
// set, paces task starts against the global request ceiling; the
// provider HTTP client shares the same ceiling for per-request pacing.
//
// One task's failure or panic never cancels or corrupts its siblings.
type Pool struct {
	workers int
	limiter *rate.Limiter
	logger  *logger.Logger
}

// New creates a pool. limiter may be nil when pacing happens at the
// HTTP layer instead.
func New(workers int, limiter *rate.Limiter, log *logger.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		limiter: limiter,
		logger:  log,
	}
}

// Run executes all tasks and returns exactly one outcome per task,
// keyed by identity. Tasks never run after ctx is cancelled; instead
// their outcome carries the context error, so no task is ever dropped.
func Run[T any](ctx context.Context, p *Pool, tasks []Task[T]) map[string]Outcome[T] {
	jobs := make(chan Task[T])
	results := make(chan Outcome[T])

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				results <- execute(ctx, p, task)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, task := range tasks {
			jobs <- task
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make(map[string]Outcome[T], len(tasks))
	for outcome := range results {
		if _, exists := outcomes[outcome.Key]; exists {
			p.logger.WithFields(map[string]interface{}{
				"key": outcome.Key,
			}).Warn("Duplicate task key, keeping first outcome")
			continue
		}
		outcomes[outcome.Key] = outcome
	}

	return outcomes
}

// execute runs a single task with rate pacing and panic isolation
func execute[T any](ctx context.Context, p *Pool, task Task[T]) Outcome[T] {
	if err := ctx.Err(); err != nil {
		return Outcome[T]{Key: task.Key, Err: err}
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Outcome[T]{Key: task.Key, Err: err}
		}
	}

	value, err := runProtected(ctx, task.Run)
	return Outcome[T]{Key: task.Key, Value: value, Err: err}
}

// runProtected converts a task panic into an error so one bad task
// cannot take down the pool
func runProtected[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}
