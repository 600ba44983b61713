package executor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/strikelab/optionscan/pkg/logger"
)

func TestRun_MatchesResultsByIdentity(t *testing.T) {
	pool := New(4, nil, logger.NewNop())

	// Tasks finish in scrambled order; results must still land on the
	// right key
	tasks := make([]Task[string], 20)
	for i := range tasks {
		key := strconv.Itoa(i)
		delay := time.Duration((i*7)%5) * time.Millisecond
		tasks[i] = Task[string]{
			Key: key,
			Run: func(ctx context.Context) (string, error) {
				time.Sleep(delay)
				return "value-" + key, nil
			},
		}
	}

	outcomes := Run(context.Background(), pool, tasks)

	require.Len(t, outcomes, 20)
	for i := 0; i < 20; i++ {
		key := strconv.Itoa(i)
		outcome, ok := outcomes[key]
		require.True(t, ok, "missing outcome for key %s", key)
		assert.NoError(t, outcome.Err)
		assert.Equal(t, "value-"+key, outcome.Value)
	}
}

func TestRun_FailureDoesNotAffectSiblings(t *testing.T) {
	pool := New(2, nil, logger.NewNop())

	boom := errors.New("boom")
	tasks := []Task[int]{
		{Key: "ok-1", Run: func(ctx context.Context) (int, error) { return 1, nil }},
		{Key: "bad", Run: func(ctx context.Context) (int, error) { return 0, boom }},
		{Key: "ok-2", Run: func(ctx context.Context) (int, error) { return 2, nil }},
	}

	outcomes := Run(context.Background(), pool, tasks)

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes["ok-1"].Err)
	assert.Equal(t, 1, outcomes["ok-1"].Value)
	assert.ErrorIs(t, outcomes["bad"].Err, boom)
	assert.NoError(t, outcomes["ok-2"].Err)
	assert.Equal(t, 2, outcomes["ok-2"].Value)
}

func TestRun_PanicIsIsolated(t *testing.T) {
	pool := New(2, nil, logger.NewNop())

	tasks := []Task[int]{
		{Key: "panics", Run: func(ctx context.Context) (int, error) { panic("bad index") }},
		{Key: "fine", Run: func(ctx context.Context) (int, error) { return 7, nil }},
	}

	outcomes := Run(context.Background(), pool, tasks)

	require.Len(t, outcomes, 2)
	require.Error(t, outcomes["panics"].Err)
	assert.Contains(t, outcomes["panics"].Err.Error(), "bad index")
	assert.Equal(t, 7, outcomes["fine"].Value)
}

func TestRun_CancelledTasksStillGetOutcomes(t *testing.T) {
	pool := New(1, nil, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started atomic.Int32
	tasks := make([]Task[int], 10)
	for i := range tasks {
		tasks[i] = Task[int]{
			Key: strconv.Itoa(i),
			Run: func(ctx context.Context) (int, error) {
				if started.Add(1) == 1 {
					cancel()
				}
				return 0, nil
			},
		}
	}

	outcomes := Run(ctx, pool, tasks)

	// Every task has an outcome; the ones that never ran carry the
	// context error
	require.Len(t, outcomes, 10)
	var cancelled int
	for _, outcome := range outcomes {
		if errors.Is(outcome.Err, context.Canceled) {
			cancelled++
		}
	}
	assert.Greater(t, cancelled, 0, "cancellation should surface in outcomes")
}

func TestRun_DuplicateKeysKeepFirst(t *testing.T) {
	pool := New(1, nil, logger.NewNop())

	tasks := []Task[int]{
		{Key: "dup", Run: func(ctx context.Context) (int, error) { return 1, nil }},
		{Key: "dup", Run: func(ctx context.Context) (int, error) { return 2, nil }},
	}

	outcomes := Run(context.Background(), pool, tasks)

	require.Len(t, outcomes, 1)
	assert.Equal(t, 1, outcomes["dup"].Value, "first outcome wins")
}

func TestRun_LimiterPacesTaskStarts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pacing test")
	}

	// 2 tasks/sec, burst 1: 10 tasks need at least ~4.5s of waiting
	limiter := rate.NewLimiter(rate.Limit(2), 1)
	pool := New(8, limiter, logger.NewNop())

	tasks := make([]Task[struct{}], 10)
	for i := range tasks {
		tasks[i] = Task[struct{}]{
			Key: fmt.Sprintf("t%d", i),
			Run: func(ctx context.Context) (struct{}, error) { return struct{}{}, nil },
		}
	}

	start := time.Now()
	outcomes := Run(context.Background(), pool, tasks)
	elapsed := time.Since(start)

	require.Len(t, outcomes, 10)
	assert.GreaterOrEqual(t, elapsed, 4*time.Second,
		"10 tasks at 2/sec should take at least ~4.5s, took %s", elapsed)
}
