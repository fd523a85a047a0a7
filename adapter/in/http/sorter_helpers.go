// Package http exposes the sorter over Fiber.
package http

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"sorter_server/pkg/apperr"
)

var validate = validator.New()

// textRequest is the body of the text-taking API routes.
type textRequest struct {
	Text string `json:"text" validate:"required"`
}

// parseText decodes and validates a textRequest, enforcing maxBytes when positive.
func parseText(c *fiber.Ctx, maxBytes int) (string, error) {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return "", apperr.BadRequest("invalid request body").WithError(err)
	}
	if err := validate.Struct(req); err != nil {
		return "", apperr.MissingField("text").WithError(err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return "", apperr.InvalidInput("text", "must not be blank")
	}
	if maxBytes > 0 && len(req.Text) > maxBytes {
		return "", apperr.InvalidInput("text", "too long").WithDetail("max_bytes", maxBytes)
	}
	return req.Text, nil
}
