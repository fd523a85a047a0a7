package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"sorter_server/pkg/apperr"
)

// SecurityHeaders adds security headers to all responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		return c.Next()
	}
}

// RequireJSON rejects POST bodies that are not application/json.
func RequireJSON() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost || len(c.Body()) == 0 {
			return c.Next()
		}
		if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
			return apperr.New("UNSUPPORTED_MEDIA_TYPE", "content type must be application/json", fiber.StatusUnsupportedMediaType)
		}
		return c.Next()
	}
}

// NoCache sets no-cache headers for dynamic API responses.
func NoCache() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Set("Pragma", "no-cache")
		c.Set("Expires", "0")
		return c.Next()
	}
}
