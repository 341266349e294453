package storage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/aid-distribution/internal/core/domain"
)

const (
	stockKeyPrefix    = "stock:"
	idempotencyKeyTTL = 24 * time.Hour
)

// The check and the decrement must be one atomic step on the Redis
// side, hence the script: two clients reading the same quantity and
// both decrementing is exactly the race the engine exists to prevent.
var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// RedisAdapter keeps hot stock counters in Redis. It implements
// port.InventoryStore so it can back the ledger directly for
// high-contention deployments where MySQL is only the system of
// record for the log.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func stockKey(key domain.InventoryKey) string {
	return stockKeyPrefix + key.String()
}

func (r *RedisAdapter) GetStock(ctx context.Context, key domain.InventoryKey) (int, bool, error) {
	quantity, err := r.client.Get(ctx, stockKey(key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return quantity, true, nil
}

func (r *RedisAdapter) DecrementStock(ctx context.Context, key domain.InventoryKey, amount int) (bool, error) {
	result, err := decrementStockScript.Run(ctx, r.client, []string{stockKey(key)}, amount).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}

func (r *RedisAdapter) IncrementStock(ctx context.Context, key domain.InventoryKey, amount int) (int, error) {
	quantity, err := r.client.IncrBy(ctx, stockKey(key), int64(amount)).Result()
	if err != nil {
		return 0, err
	}
	return int(quantity), nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
}

// SetStock seeds a counter, used when syncing stock from the durable
// store at startup and by tests.
func (r *RedisAdapter) SetStock(ctx context.Context, key domain.InventoryKey, quantity int) error {
	return r.client.Set(ctx, stockKey(key), quantity, 0).Err()
}
