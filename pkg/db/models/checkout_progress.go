package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutProgress is the ephemeral per-client checkout snapshot. It is a
// monitoring signal only; the engine never treats it as order state.
type CheckoutProgress struct {
	ClientID   string    `gorm:"column:client_id;type:text;primaryKey" json:"clientId"`
	BusinessID uuid.UUID `gorm:"column:business_id;type:uuid;primaryKey" json:"businessId"`
	Step       string    `gorm:"column:step;type:text" json:"step"`
	CartSize   int       `gorm:"column:cart_size;not null;default:0" json:"cartSize"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
