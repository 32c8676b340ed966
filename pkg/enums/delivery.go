package enums

// DeliveryType distinguishes courier delivery from customer pickup.
type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

// CourierAcceptanceStatus tracks the assigned courier's response.
type CourierAcceptanceStatus string

const (
	CourierAcceptancePending  CourierAcceptanceStatus = "pending"
	CourierAcceptanceAccepted CourierAcceptanceStatus = "accepted"
	CourierAcceptanceRejected CourierAcceptanceStatus = "rejected"
)
