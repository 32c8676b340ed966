package zones

import (
	"context"

	"gorm.io/gorm"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
)

// Repository exposes read-only coverage zone lookups.
type Repository interface {
	ListActive(ctx context.Context) ([]models.CoverageZone, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a coverage zone repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListActive(ctx context.Context) ([]models.CoverageZone, error) {
	var results []models.CoverageZone
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&results).Error
	return results, err
}
