package enums

// CourierStatus uses the platform's canonical Spanish values.
type CourierStatus string

const (
	CourierStatusActive   CourierStatus = "activo"
	CourierStatusInactive CourierStatus = "inactivo"
)

// CourierAction is the verb carried inside an action link token.
type CourierAction string

const (
	CourierActionConfirm CourierAction = "confirm"
	CourierActionDiscard CourierAction = "discard"
)

// Valid reports whether the action is one the endpoint accepts.
func (a CourierAction) Valid() bool {
	return a == CourierActionConfirm || a == CourierActionDiscard
}
