package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dbtypes "github.com/ordena-app/ordena-backend/pkg/db/types"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/types"
)

// Order is the document the dispatch engine reacts to. The engine only ever
// writes back status, assignment, acceptance, the reminder flag and updated_at.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BusinessID uuid.UUID         `gorm:"column:business_id;type:uuid;not null" json:"businessId"`
	Customer   types.CustomerRef `gorm:"column:customer;type:jsonb;serializer:json" json:"customer"`
	Items      []types.OrderItem `gorm:"column:items;type:jsonb;serializer:json" json:"items"`

	DeliveryType    enums.DeliveryType `gorm:"column:delivery_type;type:text;not null;default:'delivery'" json:"deliveryType"`
	DeliveryAddress string             `gorm:"column:delivery_address;type:text" json:"deliveryAddress"`
	// DeliveryPoint is "lat,lng" for geocoded orders or an opaque place-code.
	DeliveryPoint           string                        `gorm:"column:delivery_point;type:text" json:"deliveryPoint"`
	AssignedCourierID       *uuid.UUID                    `gorm:"column:assigned_courier_id;type:uuid" json:"assignedCourierId,omitempty"`
	CourierAcceptanceStatus enums.CourierAcceptanceStatus `gorm:"column:courier_acceptance_status;type:text;not null;default:'pending'" json:"courierAcceptanceStatus"`
	RejectedBy              dbtypes.UUIDArray             `gorm:"column:rejected_by;type:uuid[]" json:"rejectedBy,omitempty"`

	TimingType    enums.TimingType `gorm:"column:timing_type;type:text;not null;default:'immediate'" json:"timingType"`
	ScheduledDate *time.Time       `gorm:"column:scheduled_date;type:date" json:"scheduledDate,omitempty"`
	// ScheduledTime keeps the raw user-entered slot, "HH:MM" or "HH:MM AM/PM".
	ScheduledTime string `gorm:"column:scheduled_time;type:text" json:"scheduledTime,omitempty"`

	PaymentMethod string            `gorm:"column:payment_method;type:text" json:"paymentMethod"`
	PaymentStatus string            `gorm:"column:payment_status;type:text" json:"paymentStatus"`
	Subtotal      decimal.Decimal   `gorm:"column:subtotal;type:numeric;not null" json:"subtotal"`
	DeliveryCost  decimal.Decimal   `gorm:"column:delivery_cost;type:numeric;not null;default:0" json:"deliveryCost"`
	Total         decimal.Decimal   `gorm:"column:total;type:numeric;not null" json:"total"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`

	ReminderSent   bool `gorm:"column:reminder_sent;not null;default:false" json:"reminderSent"`
	CreatedByAdmin bool `gorm:"column:created_by_admin;not null;default:false" json:"createdByAdmin"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// ShortID is the truncated order id used in human-facing links and subjects.
func (o Order) ShortID() string {
	id := o.ID.String()
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
