package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"sorter_server/pkg/logger"
)

// RedisCache is a Redis-backed cache guarded by a circuit breaker.
// While the breaker is open every call fails fast with ErrUnavailable.
type RedisCache struct {
	client *redis.Client
	prefix string
	cb     *gobreaker.CircuitBreaker
}

// NewRedisCache creates a cache that namespaces keys with prefix.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	settings := gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithComponent("cache").
				WithFields(map[string]any{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) execute(fn func() (any, error)) (any, error) {
	v, err := c.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return v, err
}

// GetJSON decodes the value at key into dest. It reports false on a miss.
func (c *RedisCache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	v, err := c.execute(func() (any, error) {
		data, err := c.client.Get(ctx, c.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return false, err
	}
	data, _ := v.([]byte)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value as JSON with ttl.
func (c *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.execute(func() (any, error) {
		return nil, c.client.Set(ctx, c.key(key), data, ttl).Err()
	})
	return err
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	_, err := c.execute(func() (any, error) {
		return nil, c.client.Del(ctx, c.key(key)).Err()
	})
	return err
}

// State returns the breaker state name.
func (c *RedisCache) State() string {
	return c.cb.State().String()
}
