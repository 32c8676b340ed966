package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/pkg/types"
)

// Business is read-only from the dispatch engine's perspective.
type Business struct {
	ID             uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string                `gorm:"column:name;type:text;not null" json:"name"`
	Email          string                `gorm:"column:email;type:text" json:"email"`
	Administrators []types.Administrator `gorm:"column:administrators;type:jsonb;serializer:json" json:"administrators,omitempty"`
	// NotificationSettings may be nil on older documents; defaults are
	// resolved per event by the recipient resolver.
	NotificationSettings types.NotificationSettings `gorm:"column:notification_settings;type:jsonb;serializer:json" json:"notificationSettings,omitempty"`
	// ManualStoreStatus overrides the schedule: "open", "closed" or nil.
	ManualStoreStatus *string   `gorm:"column:manual_store_status;type:text" json:"manualStoreStatus,omitempty"`
	IsHidden          bool      `gorm:"column:is_hidden;not null;default:false" json:"isHidden"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
