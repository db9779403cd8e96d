package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swing/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32 // 처음 N번 실패
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob_Duplicate(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "@daily"}))
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := New(logger.Nop())

	// 5-field expressions are rejected, seconds are required
	err := s.AddJob(&countingJob{name: "a", schedule: "30 17 * * 1-5"})
	assert.Error(t, err)
	assert.Empty(t, s.ListJobs())
}

func TestRunNow_Retries(t *testing.T) {
	s := New(logger.Nop(), WithRetry(2, time.Millisecond))
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunNow(context.Background(), "flaky")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(3), job.calls.Load())

	history, err := s.GetJobHistory("flaky")
	require.NoError(t, err)
	assert.Len(t, history.Results, 1)
}

func TestRunNow_FailsWithoutRetry(t *testing.T) {
	s := New(logger.Nop())
	job := &countingJob{name: "broken", schedule: "@daily", failures: 5}
	require.NoError(t, s.AddJob(job))

	res, err := s.RunNow(context.Background(), "broken")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "transient", res.Error)
	assert.Equal(t, int32(1), job.calls.Load())

	stats := s.GetJobStats()["broken"]
	assert.Equal(t, 1, stats.FailureCount)
	require.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := New(logger.Nop())

	_, err := s.RunNow(context.Background(), "missing")
	assert.Error(t, err)
}

func TestListJobs_RemoveJob(t *testing.T) {
	s := New(logger.Nop())
	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "0 30 17 * * 1-5"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 */5 * * * *"}))

	s.Start()
	defer s.Stop()

	jobs := s.ListJobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, "b", jobs[1].Name)
	assert.False(t, jobs[0].Next.IsZero())

	require.NoError(t, s.RemoveJob("a"))
	assert.Len(t, s.ListJobs(), 1)
	assert.Error(t, s.RemoveJob("a"))
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+10; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, maxHistory)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
	assert.Equal(t, maxHistory/2, h.Failures())
	assert.Len(t, h.Latest(3), 3)
	assert.Empty(t, (&JobHistory{}).Latest(3))
}
