package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisStore keeps the rate under a single Redis key so every server instance
// offers the same prefill.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr, key string) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr: addr,
	}), key)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = constants.DefaultRateKey
	}
	return &RedisStore{client: client, key: key}
}

// Get returns the stored rate. A missing key is reported as not set.
func (r *RedisStore) Get(ctx context.Context) (decimal.Decimal, bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to read exchange rate %s: %w", r.key, err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("stored exchange rate %q is not a number: %w", val, err)
	}
	return rate, true, nil
}

// Set stores rate without expiry.
func (r *RedisStore) Set(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return ErrInvalidRate
	}
	if err := r.client.Set(ctx, r.key, rate.String(), 0).Err(); err != nil {
		return fmt.Errorf("failed to write exchange rate %s: %w", r.key, err)
	}
	return nil
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client connections.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
