package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/pkg/types"
)

// CoverageZone is a geofenced neighborhood owned by one courier.
type CoverageZone struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name string    `gorm:"column:name;type:text" json:"name"`
	// Polygon holds at least three vertices; the ring is implicitly closed.
	Polygon           []types.LatLng `gorm:"column:polygon;type:jsonb;serializer:json" json:"polygon"`
	AssignedCourierID *uuid.UUID     `gorm:"column:assigned_courier_id;type:uuid" json:"assignedCourierId,omitempty"`
	IsActive          bool           `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
