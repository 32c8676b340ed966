package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/ordena-app/ordena-backend/internal/notify"
	"github.com/ordena-app/ordena-backend/internal/orders"
	"github.com/ordena-app/ordena-backend/internal/recipients"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/schedule"
)

// ReminderJob warns businesses shortly before a scheduled order's slot. Each
// scan selects orders whose delivery instant falls in [now+lead, now+lead+
// interval); with the interval equal to the scan cadence, consecutive scans
// tile the timeline and each order is picked up by exactly one scan. The
// reminder flag only flips after a successful dispatch, so no order is ever
// reminded twice and a failed send leaves the flag untouched.
type ReminderJob struct {
	orders     orders.Repository
	resolver   *recipients.Resolver
	dispatcher *notify.Dispatcher
	loc        *time.Location
	lead       time.Duration
	interval   time.Duration
	logg       *logger.Logger
	now        func() time.Time
}

func NewReminderJob(
	orderRepo orders.Repository,
	resolver *recipients.Resolver,
	dispatcher *notify.Dispatcher,
	loc *time.Location,
	lead, interval time.Duration,
	logg *logger.Logger,
) *ReminderJob {
	return &ReminderJob{
		orders:     orderRepo,
		resolver:   resolver,
		dispatcher: dispatcher,
		loc:        loc,
		lead:       lead,
		interval:   interval,
		logg:       logg,
		now:        time.Now,
	}
}

func (j *ReminderJob) Name() string { return "order_reminders" }

func (j *ReminderJob) Run(ctx context.Context) error {
	now := j.now().In(j.loc)
	windowStart := now.Add(j.lead)
	windowEnd := windowStart.Add(j.interval)

	candidates, err := j.orders.FindScheduledForReminder(ctx)
	if err != nil {
		return fmt.Errorf("loading reminder candidates: %w", err)
	}

	var errs error
	sent := 0
	for i := range candidates {
		order := &candidates[i]
		orderCtx := j.logg.WithOrderID(ctx, order.ID.String())

		if order.ScheduledDate == nil {
			j.logg.Warn(orderCtx, "reminder.scheduled_date_missing")
			continue
		}
		instant, err := schedule.DeliveryInstant(*order.ScheduledDate, order.ScheduledTime, j.loc)
		if err != nil {
			j.logg.Warn(j.logg.WithField(orderCtx, "scheduled_time", order.ScheduledTime), "reminder.slot_unparsable")
			continue
		}
		if instant.Before(windowStart) || !instant.Before(windowEnd) {
			continue
		}

		if err := j.remind(orderCtx, order); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		sent++
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"candidates": len(candidates),
		"sent":       sent,
	}), "reminder.scan_complete")
	return errs
}

func (j *ReminderJob) remind(ctx context.Context, order *models.Order) error {
	business := j.resolver.Business(ctx, order.BusinessID)
	customerName := j.resolver.CustomerName(ctx, order)

	err := j.dispatcher.Deliver(ctx, notify.Message{
		Event:   enums.EventOrderReminder,
		To:      j.resolver.BusinessEmails(business, enums.EventOrderReminder),
		Subject: notify.ReminderSubject(order),
		Body:    notify.ReminderBody(order, customerName),
		Feed: &notify.FeedEntry{
			BusinessID: order.BusinessID,
			Type:       enums.NotificationTypeReminder,
			Title:      notify.ReminderSubject(order),
			Message:    fmt.Sprintf("Pedido #%s programado para las %s", order.ShortID(), order.ScheduledTime),
		},
	})
	if err != nil {
		// Flag stays false so the next scan retries while the order qualifies.
		return err
	}

	if err := j.orders.MarkReminderSent(ctx, order.ID, j.now()); err != nil {
		return fmt.Errorf("marking reminder sent: %w", err)
	}
	return nil
}
