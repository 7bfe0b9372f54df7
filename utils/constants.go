package utils

import (
	"time"
)

// Session time constants
const (
	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Push notification constants
const (
	// PushTokenRefreshInterval is how often a session re-reports its push token
	PushTokenRefreshInterval = 5 * time.Minute

	// PushTokenStaleTTL is how long a subscription may go unrefreshed before
	// the maintenance scheduler prunes it
	PushTokenStaleTTL = 30 * 24 * time.Hour

	// NotificationExpiry is the default lifetime of an in-app notification
	NotificationExpiry = 30 * 24 * time.Hour
)

// Pricing constants
const (
	// BRLCurrency is the currency code used for all prices
	BRLCurrency = "BRL"

	// MaxObservationsLength bounds free-text fields on suggestions and decisions
	MaxObservationsLength = 2000

	// MaxBatchSize bounds the number of suggestions accepted in one batch submit
	MaxBatchSize = 50
)

// Redis cache keys
const (
	ApprovalOrderCacheKey   = "approval_order:rows"
	ApprovalOrderVersionKey = "approval_order:version"
	PermissionCacheKeyFmt   = "permission:user:%d"
)

// Cache TTLs
const (
	// PermissionCacheTTL bounds staleness of cached capability sets
	PermissionCacheTTL = 5 * time.Minute
)
