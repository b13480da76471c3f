package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateovidal/dropcart-backend/pkg/logger"
)

type recordedJob struct {
	name string
	err  error
	runs int
}

func (j *recordedJob) Name() string { return j.name }

func (j *recordedJob) Run(context.Context) error {
	j.runs++
	return j.err
}

type fixedLock struct {
	locked   bool
	acquires int
	releases int
}

func (l *fixedLock) Acquire(context.Context) (bool, error) {
	l.acquires++
	return l.locked, nil
}

func (l *fixedLock) Release(context.Context) error {
	l.releases++
	return nil
}

func newCronService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	require.NoError(t, err)
	return svc
}

func TestRunCycleExecutesJobsInOrder(t *testing.T) {
	first := &recordedJob{name: "first"}
	second := &recordedJob{name: "second"}
	lock := &fixedLock{locked: true}
	svc := newCronService(t, lock, first, second)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 1, second.runs)
	assert.Equal(t, 1, lock.acquires)
	assert.Equal(t, 1, lock.releases)
}

func TestRunCycleSkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &recordedJob{name: "sweep"}
	lock := &fixedLock{locked: false}
	svc := newCronService(t, lock, job)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 0, job.runs)
	assert.Equal(t, 0, lock.releases)
}

func TestRunCycleContinuesPastJobFailure(t *testing.T) {
	failing := &recordedJob{name: "failing", err: errors.New("boom")}
	healthy := &recordedJob{name: "healthy"}
	svc := newCronService(t, &fixedLock{locked: true}, failing, healthy)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 1, failing.runs)
	assert.Equal(t, 1, healthy.runs)
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &recordedJob{name: "only"})
	registry.Register(nil)

	jobs := registry.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "only", jobs[0].Name())
}
