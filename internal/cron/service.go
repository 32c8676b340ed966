package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/metrics"
)

// LockProvider builds the leader lock guarding one job run.
type LockProvider func(job string, ttl time.Duration) (Lock, error)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	LockFor  LockProvider
	Metrics  *metrics.CronJobMetrics
}

// Service drives each registered job on its own schedule. Every firing takes a
// per-job Redis lock first, so overlapping worker instances never double-run.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lockFor  LockProvider
	metrics  *metrics.CronJobMetrics
	now      func() time.Time
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.LockFor == nil {
		return nil, fmt.Errorf("lock provider required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lockFor:  params.LockFor,
		metrics:  params.Metrics,
		now:      time.Now,
	}, nil
}

// Run schedules every registered job until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var wg sync.WaitGroup
	for _, entry := range s.registry.Entries() {
		wg.Add(1)
		go func(entry Entry) {
			defer wg.Done()
			s.runEntry(ctx, entry)
		}(entry)
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Service) runEntry(ctx context.Context, entry Entry) {
	jobCtx := s.logg.WithField(ctx, "job", entry.Job.Name())

	now := s.now()
	next := entry.Schedule.Next(now)
	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()

	s.logg.Info(s.logg.WithField(jobCtx, "next_run", next.Format(time.RFC3339)), "job scheduled")

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(jobCtx, "cron service context canceled")
			return
		case <-timer.C:
			s.fireJob(jobCtx, entry)
			now = s.now()
			next = entry.Schedule.Next(now)
			timer.Reset(next.Sub(now))
		}
	}
}

func (s *Service) fireJob(ctx context.Context, entry Entry) {
	lock, err := s.lockFor(entry.Job.Name(), entry.LockTTL)
	if err != nil {
		s.logg.Error(ctx, "failed to build job lock", err)
		return
	}

	locked, err := lock.Acquire(ctx)
	if err != nil {
		s.logg.Error(ctx, "lock acquire failed", err)
		return
	}
	if !locked {
		s.logg.Info(ctx, "another cron instance owns this job; skipping")
		return
	}
	defer func() {
		if relErr := lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release job lock", relErr)
		}
	}()

	s.runJob(ctx, entry.Job)
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
