package enums

// OrderStatus tracks an order through the kitchen and delivery pipeline.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusOnWay     OrderStatus = "on_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var forwardPath = map[OrderStatus]OrderStatus{
	OrderStatusPending:   OrderStatusConfirmed,
	OrderStatusConfirmed: OrderStatusPreparing,
	OrderStatusPreparing: OrderStatusReady,
	OrderStatusReady:     OrderStatusOnWay,
	OrderStatusOnWay:     OrderStatusDelivered,
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// IsActive reports whether the order left pending but is not terminal yet.
func (s OrderStatus) IsActive() bool {
	switch s {
	case OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady, OrderStatusOnWay:
		return true
	}
	return false
}

// CanTransitionTo validates a status change against the canonical path.
// Cancellation is reachable from any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return forwardPath[s] == next
}

// ReminderEligibleStatuses are the states where a delivery reminder still
// makes sense: once the kitchen is past prep the reminder is pointless.
func ReminderEligibleStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing}
}
