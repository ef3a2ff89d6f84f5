package redisx

import "time"

const (
	// idem:order:place:{purchaser_id}:{idempotency_key} -> order_id
	KeyIdemOrderPlace = "idem:order:place:%d:%s"
)

var TTLIdempotency = 24 * time.Hour
