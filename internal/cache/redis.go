package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"investment-agent/internal/logger"
	"investment-agent/internal/types"
)

const redisKeyPrefix = "sentiment:reading:"

// Redis caches readings in a shared Redis instance so multiple agent
// processes can reuse each other's source calls. Redis errors degrade to a
// cache miss; the source is simply queried again.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed reading cache.
func NewRedis(addr string, ttl time.Duration) *Redis {
	return &Redis{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies connectivity at startup.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Get(ctx context.Context, key string) (types.SentimentReading, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Debug(ctx, "Redis cache read failed", "key", key, "error", err)
		}
		return types.SentimentReading{}, false
	}

	var reading types.SentimentReading
	if err := json.Unmarshal(raw, &reading); err != nil {
		return types.SentimentReading{}, false
	}
	return reading, true
}

func (r *Redis) Set(ctx context.Context, key string, reading types.SentimentReading) {
	raw, err := json.Marshal(reading)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis cache write failed", "key", key, "error", err)
	}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
