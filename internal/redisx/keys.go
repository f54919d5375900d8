package redisx

import "time"

const (
	// idem:loyalty:create:{merchant_id}:{idempotency key} -> "pending" | transaction id
	KeyIdemLoyaltyCreate = "idem:loyalty:create:%d:%s"

	// dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
