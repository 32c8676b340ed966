package cron

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/ordena-app/ordena-backend/internal/businesses"
	"github.com/ordena-app/ordena-backend/internal/notify"
	"github.com/ordena-app/ordena-backend/internal/orders"
	"github.com/ordena-app/ordena-backend/internal/recipients"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
	"github.com/ordena-app/ordena-backend/pkg/schedule"
)

// DigestJob mails every visible business a morning summary of the scheduled
// orders due today, sorted by delivery slot. One business failing never
// suppresses the remaining digests.
type DigestJob struct {
	orders     orders.Repository
	businesses businesses.Repository
	resolver   *recipients.Resolver
	dispatcher *notify.Dispatcher
	loc        *time.Location
	logg       *logger.Logger
	now        func() time.Time
}

func NewDigestJob(
	orderRepo orders.Repository,
	businessRepo businesses.Repository,
	resolver *recipients.Resolver,
	dispatcher *notify.Dispatcher,
	loc *time.Location,
	logg *logger.Logger,
) *DigestJob {
	return &DigestJob{
		orders:     orderRepo,
		businesses: businessRepo,
		resolver:   resolver,
		dispatcher: dispatcher,
		loc:        loc,
		logg:       logg,
		now:        time.Now,
	}
}

func (j *DigestJob) Name() string { return "daily_digest" }

func (j *DigestJob) Run(ctx context.Context) error {
	now := j.now().In(j.loc)
	dayStart, dayEnd := schedule.DayBounds(now, j.loc)

	visible, err := j.businesses.ListVisible(ctx)
	if err != nil {
		return fmt.Errorf("listing visible businesses: %w", err)
	}

	// The range query over-selects around midnight; the exact calendar-day
	// check happens client-side against the platform timezone.
	scheduled, err := j.orders.FindScheduledBetween(ctx, dayStart.Add(-24*time.Hour), dayEnd.Add(24*time.Hour))
	if err != nil {
		return fmt.Errorf("loading scheduled orders: %w", err)
	}

	byBusiness := make(map[uuid.UUID][]models.Order)
	for _, order := range scheduled {
		if order.ScheduledDate == nil {
			continue
		}
		day := order.ScheduledDate.In(j.loc)
		if day.Year() != now.Year() || day.YearDay() != now.YearDay() {
			continue
		}
		byBusiness[order.BusinessID] = append(byBusiness[order.BusinessID], order)
	}

	var errs error
	delivered := 0
	for i := range visible {
		business := &visible[i]
		todays := byBusiness[business.ID]
		if len(todays) == 0 {
			continue
		}
		sent, err := j.digestFor(ctx, business, todays, now)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("business %s: %w", business.ID, err))
			continue
		}
		if sent {
			delivered++
		}
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"businesses": len(visible),
		"digests":    delivered,
	}), "digest.run_complete")
	return errs
}

func (j *DigestJob) digestFor(ctx context.Context, business *models.Business, todays []models.Order, now time.Time) (bool, error) {
	ctx = j.logg.WithBusinessID(ctx, business.ID.String())

	// A business with the summary disabled, or with no usable addresses,
	// gets nothing at all: no mail and no feed entry.
	to := j.resolver.BusinessEmails(business, enums.EventDailyDigest)
	if len(to) == 0 {
		j.logg.Info(ctx, "digest.skipped_no_recipients")
		return false, nil
	}

	rows := make([]notify.DigestRow, 0, len(todays))
	revenue := decimal.Zero
	for i := range todays {
		order := &todays[i]
		slot, err := schedule.Normalize(order.ScheduledTime)
		if err != nil {
			// Keep the raw slot visible rather than dropping the order.
			j.logg.Warn(j.logg.WithOrderID(ctx, order.ID.String()), "digest.slot_unparsable")
			slot = order.ScheduledTime
		}
		rows = append(rows, notify.DigestRow{
			Time:         slot,
			CustomerName: j.resolver.CustomerName(ctx, order),
			Status:       string(order.Status),
			Total:        order.Total,
		})
		revenue = revenue.Add(order.Total)
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].Time < rows[b].Time })

	localDate := now.Format("02/01/2006")
	err := j.dispatcher.Deliver(ctx, notify.Message{
		Event:   enums.EventDailyDigest,
		To:      to,
		Subject: notify.DigestSubject(business.Name, localDate),
		Body:    notify.DigestBody(business.Name, rows, revenue),
		Feed: &notify.FeedEntry{
			BusinessID: business.ID,
			Type:       enums.NotificationTypeDigest,
			Title:      "Resumen de pedidos programados",
			Message:    fmt.Sprintf("%d pedidos programados para hoy", len(rows)),
		},
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
