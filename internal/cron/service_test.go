package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordena-app/ordena-backend/pkg/logger"
)

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string                  { return j.name }
func (j *countingJob) Run(ctx context.Context) error { j.runs++; return j.err }

type fakeLock struct {
	acquired bool
	err      error
	released int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) { return l.acquired, l.err }
func (l *fakeLock) Release(ctx context.Context) error         { l.released++; return nil }

func serviceForTest(t *testing.T, lock *fakeLock) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Logger: logg,
		LockFor: func(job string, ttl time.Duration) (Lock, error) {
			return lock, nil
		},
	})
	require.NoError(t, err)
	return svc
}

func TestFireJob_runsWhenLockAcquired(t *testing.T) {
	lock := &fakeLock{acquired: true}
	svc := serviceForTest(t, lock)
	job := &countingJob{name: "j"}

	svc.fireJob(context.Background(), Entry{Job: job, Schedule: Every(time.Minute)})
	assert.Equal(t, 1, job.runs)
	assert.Equal(t, 1, lock.released)
}

func TestFireJob_skipsWhenLockHeldElsewhere(t *testing.T) {
	lock := &fakeLock{acquired: false}
	svc := serviceForTest(t, lock)
	job := &countingJob{name: "j"}

	svc.fireJob(context.Background(), Entry{Job: job, Schedule: Every(time.Minute)})
	assert.Zero(t, job.runs)
	assert.Zero(t, lock.released)
}

func TestFireJob_lockErrorSkipsJob(t *testing.T) {
	lock := &fakeLock{err: errors.New("redis down")}
	svc := serviceForTest(t, lock)
	job := &countingJob{name: "j"}

	svc.fireJob(context.Background(), Entry{Job: job, Schedule: Every(time.Minute)})
	assert.Zero(t, job.runs)
}

func TestRun_firesOnSchedule(t *testing.T) {
	lock := &fakeLock{acquired: true}
	svc := serviceForTest(t, lock)
	job := &countingJob{name: "fast"}

	registry := NewRegistry()
	registry.Register(job, Every(10*time.Millisecond), time.Second)
	svc.registry = registry

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, job.runs, 2)
}
