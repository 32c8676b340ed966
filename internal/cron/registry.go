package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ordena-app/ordena-backend/pkg/schedule"
)

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Schedule decides when a job fires next.
type Schedule interface {
	Next(after time.Time) time.Time
}

type everySchedule time.Duration

func (e everySchedule) Next(after time.Time) time.Time {
	return after.Add(time.Duration(e))
}

// Every fires on a fixed interval.
func Every(interval time.Duration) Schedule {
	return everySchedule(interval)
}

type dailySchedule struct {
	slot string
	loc  *time.Location
}

func (d dailySchedule) Next(after time.Time) time.Time {
	next, err := schedule.NextDailyOccurrence(after, d.slot, d.loc)
	if err != nil {
		// Validated at registration; keep the worker alive regardless.
		return after.Add(24 * time.Hour)
	}
	return next
}

// DailyAt fires once a day at the given "HH:MM" wall-clock time in loc.
func DailyAt(slot string, loc *time.Location) (Schedule, error) {
	if _, _, err := schedule.ParseSlot(slot); err != nil {
		return nil, fmt.Errorf("daily schedule: %w", err)
	}
	return dailySchedule{slot: slot, loc: loc}, nil
}

// Entry pairs a job with its cadence and the TTL of its leader lock.
type Entry struct {
	Job      Job
	Schedule Schedule
	LockTTL  time.Duration
}

// Registry tracks registered cron jobs with their schedules.
type Registry struct {
	entries []Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a job. A zero LockTTL falls back to the service default.
func (r *Registry) Register(job Job, sched Schedule, lockTTL time.Duration) {
	if job == nil || sched == nil {
		return
	}
	r.entries = append(r.entries, Entry{Job: job, Schedule: sched, LockTTL: lockTTL})
}

// Entries returns the registered jobs in the order they were added.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}
