package businesses

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ordena-app/ordena-backend/pkg/db/models"
)

var ErrNotFound = errors.New("business not found")

// Repository exposes the read-only business lookups the engine needs.
type Repository interface {
	FindByID(ctx context.Context, businessID uuid.UUID) (*models.Business, error)
	// ListVisible returns every business not flagged hidden.
	ListVisible(ctx context.Context) ([]models.Business, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a business repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) FindByID(ctx context.Context, businessID uuid.UUID) (*models.Business, error) {
	var business models.Business
	err := r.db.WithContext(ctx).First(&business, "id = ?", businessID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &business, nil
}

func (r *repositoryImpl) ListVisible(ctx context.Context) ([]models.Business, error) {
	var results []models.Business
	err := r.db.WithContext(ctx).
		Where("is_hidden = ?", false).
		Order("name ASC").
		Find(&results).Error
	return results, err
}
