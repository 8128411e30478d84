package domain

// Table is a mongo collection name
type Table string

const (
	TableListings          Table = "listings"
	TableMarketplaceEvents Table = "marketplace_events"
	TableBridgeStates      Table = "bridge_states"
)
