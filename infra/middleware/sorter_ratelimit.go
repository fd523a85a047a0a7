package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"sorter_server/pkg/apperr"
)

// RateLimiter is a fixed-window per-IP limiter.
type RateLimiter struct {
	requests map[string]*requestInfo
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
	stop     chan struct{}
	once     sync.Once
}

type requestInfo struct {
	count     int
	expiresAt time.Time
}

// NewRateLimiter allows limit requests per window per client IP. Call Close to stop the cleanup loop.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*requestInfo),
		limit:    limit,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stop:
				return
			}
		}
	}()
	return rl
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, info := range rl.requests {
		if now.After(info.expiresAt) {
			delete(rl.requests, key)
		}
	}
}

func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		now := rl.now()

		rl.mu.Lock()
		info, exists := rl.requests[key]
		if !exists || now.After(info.expiresAt) {
			info = &requestInfo{expiresAt: now.Add(rl.window)}
			rl.requests[key] = info
		}
		if info.count >= rl.limit {
			resetAt := info.expiresAt
			rl.mu.Unlock()
			setRateLimitHeaders(c, rl.limit, 0, resetAt)
			retryAfter := int(resetAt.Sub(now).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return apperr.ErrRateLimited.WithDetail("retry_after", retryAfter)
		}
		info.count++
		remaining := rl.limit - info.count
		resetAt := info.expiresAt
		rl.mu.Unlock()

		setRateLimitHeaders(c, rl.limit, remaining, resetAt)
		return c.Next()
	}
}

func setRateLimitHeaders(c *fiber.Ctx, limit, remaining int, resetAt time.Time) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}
