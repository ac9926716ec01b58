package constants

// Имена очередей
const (
	QueueListingsChanged = "listing_service.listings_changed"
)

// Ключи маршрутизации
const (
	RoutingKeyListingsChanged = "listings.changed"
	RoutingKeyRefreshReports  = "listings.refresh.reports"
)

const (
	ListingsExchange   = "listings_events"
	FinalDLXExchange   = "listings_changed_final_dlx"
	FinalDLQ           = "listings_changed_final_dlq"
	FinalDLQRoutingKey = "listings.dlq.key"
)
