package types

import "github.com/shopspring/decimal"

// CustomerRef is the customer contact snapshot embedded in an order.
type CustomerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// OrderItem is one purchased line embedded in an order.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Variant   string          `json:"variant,omitempty"`
}

// Administrator is a business staff member who receives order mail.
type Administrator struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// NotificationSettings maps a preference key to its enabled flag. Missing keys
// fall back to per-event defaults resolved by the recipient resolver.
type NotificationSettings map[string]bool
