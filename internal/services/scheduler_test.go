package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name     string
	schedule Schedule
	runs     int
	err      error
}

func (j *countingJob) Name() string {
	return j.name
}

func (j *countingJob) Schedule() Schedule {
	return j.schedule
}

func (j *countingJob) Execute(context.Context) error {
	j.runs++
	return j.err
}

func TestSchedulerService_AddJobAndRunNow(t *testing.T) {
	scheduler := NewSchedulerService()
	job := &countingJob{name: "sweep", schedule: Hourly}

	require.NoError(t, scheduler.AddJob(job))
	assert.Equal(t, 1, scheduler.GetJobCount())

	require.NoError(t, scheduler.RunNow(context.Background(), "sweep"))
	assert.Equal(t, 1, job.runs)

	assert.Error(t, scheduler.RunNow(context.Background(), "missing"))
}

func TestSchedulerService_RunNowPropagatesFailure(t *testing.T) {
	scheduler := NewSchedulerService()
	failure := errors.New("boom")
	require.NoError(t, scheduler.AddJob(&countingJob{name: "daily", schedule: Daily, err: failure}))

	assert.ErrorIs(t, scheduler.RunNow(context.Background(), "daily"), failure)
}

func TestSchedulerService_StartStop(t *testing.T) {
	scheduler := NewSchedulerService()

	require.NoError(t, scheduler.Start(context.Background()))
	assert.False(t, scheduler.IsRunning(), "no jobs means no start")

	require.NoError(t, scheduler.AddJob(&countingJob{name: "sweep"}))
	require.NoError(t, scheduler.Start(context.Background()))
	assert.True(t, scheduler.IsRunning())

	require.NoError(t, scheduler.Stop(context.Background()))
	assert.False(t, scheduler.IsRunning())
}
