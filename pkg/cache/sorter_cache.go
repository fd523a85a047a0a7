package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing store is temporarily unreachable.
var ErrUnavailable = errors.New("cache unavailable")

// Cache stores JSON-encodable values by key.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
