package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named in-memory database keeps gorm's pooled connections on the same
	// store while isolating tests from each other.
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  customer TEXT,
  items TEXT,
  delivery_type TEXT NOT NULL DEFAULT 'delivery',
  delivery_address TEXT,
  delivery_point TEXT,
  assigned_courier_id TEXT,
  courier_acceptance_status TEXT NOT NULL DEFAULT 'pending',
  rejected_by TEXT,
  timing_type TEXT NOT NULL DEFAULT 'immediate',
  scheduled_date DATETIME,
  scheduled_time TEXT,
  payment_method TEXT,
  payment_status TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  delivery_cost NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  reminder_sent INTEGER NOT NULL DEFAULT 0,
  created_by_admin INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, mutate func(*models.Order)) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:           uuid.New(),
		BusinessID:   uuid.New(),
		DeliveryType: enums.DeliveryTypeDelivery,
		TimingType:   enums.TimingImmediate,
		Subtotal:     decimal.NewFromInt(10),
		Total:        decimal.NewFromInt(12),
		Status:       enums.OrderStatusPending,
	}
	if mutate != nil {
		mutate(order)
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, nil)

	found, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	assert.Equal(t, seeded.BusinessID, found.BusinessID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindScheduledForReminder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	eligible := seedOrder(t, db, func(o *models.Order) {
		o.TimingType = enums.TimingScheduled
		o.ScheduledDate = &date
		o.ScheduledTime = "14:30"
		o.Status = enums.OrderStatusConfirmed
	})
	// Excluded: immediate timing, already reminded, delivered.
	seedOrder(t, db, nil)
	seedOrder(t, db, func(o *models.Order) {
		o.TimingType = enums.TimingScheduled
		o.ScheduledDate = &date
		o.ReminderSent = true
	})
	seedOrder(t, db, func(o *models.Order) {
		o.TimingType = enums.TimingScheduled
		o.ScheduledDate = &date
		o.Status = enums.OrderStatusDelivered
	})

	results, err := repo.FindScheduledForReminder(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, eligible.ID, results[0].ID)
}

func TestFindScheduledBetween(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	inRange := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	outOfRange := inRange.AddDate(0, 0, 3)

	wanted := seedOrder(t, db, func(o *models.Order) {
		o.TimingType = enums.TimingScheduled
		o.ScheduledDate = &inRange
	})
	seedOrder(t, db, func(o *models.Order) {
		o.TimingType = enums.TimingScheduled
		o.ScheduledDate = &outOfRange
	})
	seedOrder(t, db, nil)

	results, err := repo.FindScheduledBetween(ctx, inRange.AddDate(0, 0, -1), inRange.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, wanted.ID, results[0].ID)
}

func TestMarkReminderSent(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, func(o *models.Order) {
		o.TimingType = enums.TimingScheduled
	})

	require.NoError(t, repo.MarkReminderSent(ctx, seeded.ID, time.Now()))

	reloaded, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.ReminderSent)

	assert.ErrorIs(t, repo.MarkReminderSent(ctx, uuid.New(), time.Now()), ErrNotFound)
}

func TestAssignCourier(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, func(o *models.Order) {
		o.CourierAcceptanceStatus = enums.CourierAcceptanceRejected
	})
	courierID := uuid.New()

	require.NoError(t, repo.AssignCourier(ctx, seeded.ID, courierID, time.Now()))

	reloaded, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.AssignedCourierID)
	assert.Equal(t, courierID, *reloaded.AssignedCourierID)
	assert.Equal(t, enums.CourierAcceptancePending, reloaded.CourierAcceptanceStatus)
}

func TestUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, nil)

	err := repo.UpdateStatus(ctx, seeded.ID, map[string]any{
		"status":                    enums.OrderStatusCancelled,
		"courier_acceptance_status": enums.CourierAcceptanceRejected,
	})
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, reloaded.Status)
	assert.Equal(t, enums.CourierAcceptanceRejected, reloaded.CourierAcceptanceStatus)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), map[string]any{"status": enums.OrderStatusConfirmed}), ErrNotFound)
}
