package recipients

import (
	"context"

	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/internal/businesses"
	"github.com/ordena-app/ordena-backend/internal/clients"
	"github.com/ordena-app/ordena-backend/pkg/db/models"
	"github.com/ordena-app/ordena-backend/pkg/enums"
	"github.com/ordena-app/ordena-backend/pkg/logger"
)

// FallbackCustomerName replaces the customer name when the client profile
// cannot be read. Customer-facing copy is in Spanish.
const FallbackCustomerName = "Cliente"

// preferenceKeys maps each business-facing event to its settings key.
var preferenceKeys = map[enums.NotificationEvent]string{
	enums.EventOrderCreatedClient: "emailOrderClient",
	enums.EventOrderCreatedManual: "emailOrderManual",
	enums.EventOrderReminder:      "emailOrderReminder",
	enums.EventDailyDigest:        "emailDailySummary",
	enums.EventCheckoutProgress:   "emailCheckoutProgress",
}

// preferenceDefaults applies when the business never touched a setting.
// Checkout-progress mail is opt-in; everything else is opt-out.
var preferenceDefaults = map[enums.NotificationEvent]bool{
	enums.EventOrderCreatedClient: true,
	enums.EventOrderCreatedManual: true,
	enums.EventOrderReminder:      true,
	enums.EventDailyDigest:        true,
	enums.EventCheckoutProgress:   false,
}

// Resolver turns event context into concrete recipient lists. Every read is
// best-effort: a failed lookup degrades to a documented default instead of
// failing the surrounding notification task.
type Resolver struct {
	businesses businesses.Repository
	clients    clients.Repository
	log        *logger.Logger
}

func NewResolver(businessRepo businesses.Repository, clientRepo clients.Repository, log *logger.Logger) *Resolver {
	return &Resolver{businesses: businessRepo, clients: clientRepo, log: log}
}

// Business fetches the business document, or nil when unreadable.
func (r *Resolver) Business(ctx context.Context, businessID uuid.UUID) *models.Business {
	business, err := r.businesses.FindByID(ctx, businessID)
	if err != nil {
		r.log.Error(r.log.WithBusinessID(ctx, businessID.String()), "recipients.business.read_failed", err)
		return nil
	}
	return business
}

// EventEnabled resolves the business's preference for the event, falling back
// to the event default when the key is absent or settings never existed.
func EventEnabled(business *models.Business, event enums.NotificationEvent) bool {
	fallback := preferenceDefaults[event]
	if business == nil || business.NotificationSettings == nil {
		return fallback
	}
	key, ok := preferenceKeys[event]
	if !ok {
		return fallback
	}
	if enabled, set := business.NotificationSettings[key]; set {
		return enabled
	}
	return fallback
}

// BusinessEmails returns the deduplicated owner+administrator address list for
// the event, or nil when the business disabled it. Empty addresses are dropped.
func (r *Resolver) BusinessEmails(business *models.Business, event enums.NotificationEvent) []string {
	if business == nil || !EventEnabled(business, event) {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	appendAddr := func(addr string) {
		if addr == "" {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	appendAddr(business.Email)
	for _, admin := range business.Administrators {
		appendAddr(admin.Email)
	}
	return out
}

// CustomerName returns the display name for the order's customer, preferring
// the embedded snapshot, then the client profile, then the Spanish fallback.
func (r *Resolver) CustomerName(ctx context.Context, order *models.Order) string {
	if order.Customer.Name != "" {
		return order.Customer.Name
	}
	return r.ClientNameByID(ctx, order.Customer.ID)
}

// ClientNameByID resolves a client display name from a raw client id, falling
// back when the id is opaque or the profile is unreadable.
func (r *Resolver) ClientNameByID(ctx context.Context, rawID string) string {
	clientID, err := uuid.Parse(rawID)
	if err != nil {
		return FallbackCustomerName
	}
	client, err := r.clients.FindByID(ctx, clientID)
	if err != nil {
		r.log.Warn(r.log.WithField(ctx, "client_id", rawID), "recipients.client.read_failed")
		return FallbackCustomerName
	}
	if client.Name == "" {
		return FallbackCustomerName
	}
	return client.Name
}

// CustomerEmail returns the customer's address, or "" when none is known.
func (r *Resolver) CustomerEmail(ctx context.Context, order *models.Order) string {
	if order.Customer.Email != "" {
		return order.Customer.Email
	}
	if clientID, err := uuid.Parse(order.Customer.ID); err == nil {
		if client, err := r.clients.FindByID(ctx, clientID); err == nil {
			return client.Email
		}
	}
	return ""
}

// CourierEmail returns the courier's address, or "" when the courier has none.
func CourierEmail(courier *models.Courier) string {
	if courier == nil {
		return ""
	}
	return courier.Email
}
