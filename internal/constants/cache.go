package constants

import "time"

const (
	SessionCachePrefix = "session"  // session:<sid> in the session DB
	ListingCachePrefix = "listings" // listings:<owner>:<kind> in the catalog DB
	ListingCacheExpiry = 15 * time.Minute
)
