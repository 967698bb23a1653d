package constants

// Pagination bounds
const (
	MinPage         = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Context keys
const (
	ContextKeyItem = "item"
)

// Nearby query defaults (meters)
const (
	DefaultNearbyRadius = 3000.0
	MaxNearbyRadius     = 50000.0
)
