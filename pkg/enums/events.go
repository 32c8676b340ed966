package enums

// DocumentCollection identifies the document collection an event refers to.
type DocumentCollection string

const (
	CollectionOrders           DocumentCollection = "orders"
	CollectionBusinesses       DocumentCollection = "businesses"
	CollectionCheckoutProgress DocumentCollection = "checkout_progress"
)

// DocumentEventKind distinguishes create from update writes.
type DocumentEventKind string

const (
	DocumentCreated DocumentEventKind = "created"
	DocumentUpdated DocumentEventKind = "updated"
)
