package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Shubhamgoyalbs/Hostel-Bites/internal/port"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

// RedisAdapter carries the placement idempotency keys and the advisory
// listed-stock snapshots. It is never the source of truth for
// inventory; MySQL is.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

var _ port.CacheRepository = (*RedisAdapter)(nil)

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, sellerID, productID int64, quantity int) error {
	return r.client.Set(ctx, stockKey(sellerID, productID), quantity, 0).Err()
}

func (r *RedisAdapter) DeleteStock(ctx context.Context, sellerID, productID int64) error {
	return r.client.Del(ctx, stockKey(sellerID, productID)).Err()
}

func stockKey(sellerID, productID int64) string {
	return fmt.Sprintf("%s%d:%d", stockKeyPrefix, sellerID, productID)
}
