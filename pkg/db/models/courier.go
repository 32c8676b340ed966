package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/pkg/enums"
)

// Courier is a delivery agent from the deliveries collection.
type Courier struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string              `gorm:"column:name;type:text;not null" json:"name"`
	Phone     string              `gorm:"column:phone;type:text" json:"phone"`
	Email     string              `gorm:"column:email;type:text" json:"email"`
	Status    enums.CourierStatus `gorm:"column:status;type:text;not null;default:'activo'" json:"status"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
