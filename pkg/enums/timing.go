package enums

// TimingType marks whether an order is for now or a scheduled slot.
type TimingType string

const (
	TimingImmediate TimingType = "immediate"
	TimingScheduled TimingType = "scheduled"
)
