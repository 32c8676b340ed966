package couriers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
)

var ErrNotFound = errors.New("courier not found")

// Repository exposes the read-only courier lookups the engine needs.
type Repository interface {
	FindByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error)
	ListActive(ctx context.Context) ([]models.Courier, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a courier repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindByID(ctx context.Context, courierID uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	err := r.db.WithContext(ctx).First(&courier, "id = ?", courierID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repositoryImpl) ListActive(ctx context.Context) ([]models.Courier, error) {
	var results []models.Courier
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.CourierStatusActive).
		Find(&results).Error
	return results, err
}
