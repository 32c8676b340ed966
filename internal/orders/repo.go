package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
)

var ErrNotFound = errors.New("order not found")

// Repository exposes the order reads and the narrow set of writes the
// dispatch engine performs (status, assignment, acceptance, reminder flag).
type Repository interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	// FindScheduledForReminder returns scheduled orders still in a
	// reminder-eligible status with the reminder flag unset.
	FindScheduledForReminder(ctx context.Context) ([]models.Order, error)
	// FindScheduledBetween queries on the stored scheduled-date value only;
	// callers narrow to exact day bounds client-side.
	FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)
	MarkReminderSent(ctx context.Context, orderID uuid.UUID, now time.Time) error
	AssignCourier(ctx context.Context, orderID, courierID uuid.UUID, now time.Time) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindScheduledForReminder(ctx context.Context) ([]models.Order, error) {
	var results []models.Order
	err := r.db.WithContext(ctx).
		Where("timing_type = ?", enums.TimingScheduled).
		Where("status IN ?", enums.ReminderEligibleStatuses()).
		Where("reminder_sent = ?", false).
		Find(&results).Error
	return results, err
}

func (r *repositoryImpl) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var results []models.Order
	err := r.db.WithContext(ctx).
		Where("timing_type = ?", enums.TimingScheduled).
		Where("scheduled_date >= ? AND scheduled_date < ?", from, to).
		Find(&results).Error
	return results, err
}

func (r *repositoryImpl) MarkReminderSent(ctx context.Context, orderID uuid.UUID, now time.Time) error {
	return r.updateByID(ctx, orderID, map[string]any{
		"reminder_sent": true,
		"updated_at":    now,
	})
}

func (r *repositoryImpl) AssignCourier(ctx context.Context, orderID, courierID uuid.UUID, now time.Time) error {
	return r.updateByID(ctx, orderID, map[string]any{
		"assigned_courier_id":       courierID,
		"courier_acceptance_status": enums.CourierAcceptancePending,
		"updated_at":                now,
	})
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.updateByID(ctx, orderID, updates)
}

func (r *repositoryImpl) updateByID(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
