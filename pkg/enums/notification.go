package enums

// NotificationType categorizes entries in a business's in-app feed.
type NotificationType string

const (
	NotificationTypeOrder    NotificationType = "order"
	NotificationTypeReminder NotificationType = "reminder"
	NotificationTypeDigest   NotificationType = "digest"
	NotificationTypeCheckout NotificationType = "checkout"
)

// NotificationEvent names an outbound notification trigger. Each business-facing
// event maps to a boolean preference on the business's notification settings.
type NotificationEvent string

const (
	EventOrderCreatedClient NotificationEvent = "order_created_client"
	EventOrderCreatedManual NotificationEvent = "order_created_manual"
	EventOrderReminder      NotificationEvent = "order_reminder"
	EventDailyDigest        NotificationEvent = "daily_digest"
	EventCheckoutProgress   NotificationEvent = "checkout_progress"
	EventCourierAssigned    NotificationEvent = "courier_assigned"
)
