package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strikelab/optionscan/pkg/logger"
)

type stubJob struct {
	name string
	err  error
	runs int
}

func (j *stubJob) Name() string     { return j.name }
func (j *stubJob) Schedule() string { return "0 0 18 * * 1-5" }
func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(logger.NewNop())

	require.NoError(t, s.AddJob(&stubJob{name: "scan"}))
	err := s.AddJob(&stubJob{name: "scan"})
	require.Error(t, err, "duplicate job names are rejected")

	assert.Error(t, s.RunJob("missing"))
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := New(logger.NewNop())
	job := &stubJob{name: "scan"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, 1, job.runs)

	stats := s.GetJobStats()
	require.Contains(t, stats, "scan")
	assert.Equal(t, 1, stats["scan"].TotalRuns)
	assert.Equal(t, 1, stats["scan"].SuccessCount)
	assert.Equal(t, 1.0, stats["scan"].SuccessRate)
	require.NotNil(t, stats["scan"].LastRun)
}

func TestRunJob_RetriesOnFailure(t *testing.T) {
	s := New(logger.NewNop())
	s.maxRetries = 2
	s.retryDelay = time.Millisecond

	job := &stubJob{name: "scan", err: errors.New("provider down")}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	assert.Equal(t, 3, job.runs, "initial run plus two retries")

	stats := s.GetJobStats()
	assert.Equal(t, 1, stats["scan"].FailureCount)
	assert.Equal(t, 0.0, stats["scan"].SuccessRate)
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "scan", Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	require.NotNil(t, h.Last())
}
