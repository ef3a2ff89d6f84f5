package redisx

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"procurement-be/internal/apperr"
	"procurement-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pendingMarker = "pending"

var (
	ErrRequestInProgress = apperr.New(apperr.KindConflict, "A request with this Idempotency-Key is still being processed.")
	ErrKeyTooLong        = apperr.New(apperr.KindValidation, "Idempotency-Key must be at most 255 characters.")
)

// KV is the subset of redis commands the idempotency store needs.
type KV interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Idempotency remembers which order a purchaser's Idempotency-Key produced.
type Idempotency struct {
	kv  KV
	ttl time.Duration
}

func NewIdempotency(kv KV) *Idempotency {
	return &Idempotency{kv: kv, ttl: TTLIdempotency}
}

func orderKey(purchaserID int64, key string) string {
	return fmt.Sprintf(KeyIdemOrderPlace, purchaserID, key)
}

// Claim reserves key for a new placement. When the key already produced an
// order its id is returned with claimed=false.
func (s *Idempotency) Claim(ctx context.Context, purchaserID int64, key string) (orderID int64, claimed bool, err error) {
	if len(key) > 255 {
		return 0, false, ErrKeyTooLong
	}

	k := orderKey(purchaserID, key)
	ok, err := s.kv.SetNX(ctx, k, pendingMarker, s.ttl).Result()
	if err != nil {
		return 0, false, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return 0, true, nil
	}

	v, err := s.kv.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.Claim(ctx, purchaserID, key)
	}
	if err != nil {
		return 0, false, fmt.Errorf("read idempotency key: %w", err)
	}
	if v == pendingMarker {
		return 0, false, ErrRequestInProgress
	}

	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency value %q: %w", v, err)
	}
	return id, false, nil
}

// Complete binds a claimed key to the order it produced.
func (s *Idempotency) Complete(ctx context.Context, purchaserID int64, key string, orderID int64) {
	if err := s.kv.Set(ctx, orderKey(purchaserID, key), orderID, s.ttl).Err(); err != nil {
		logger.FromCtx(ctx).Warn("failed to store idempotency key",
			zap.String("layer", "redisx"),
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
	}
}

// Release drops a claim whose placement failed so the client can retry.
func (s *Idempotency) Release(ctx context.Context, purchaserID int64, key string) {
	if err := s.kv.Del(ctx, orderKey(purchaserID, key)).Err(); err != nil {
		logger.FromCtx(ctx).Warn("failed to release idempotency key",
			zap.String("layer", "redisx"),
			zap.Error(err),
		)
	}
}
