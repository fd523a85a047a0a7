package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"sorter_server/core/port/in"
)

// LegacyHandler serves the original unversioned routes with their response shapes.
type LegacyHandler struct {
	sorter       in.SorterService
	inbox        in.InboxService
	maxTextBytes int
}

func NewLegacyHandler(sorter in.SorterService, inbox in.InboxService, maxTextBytes int) *LegacyHandler {
	return &LegacyHandler{sorter: sorter, inbox: inbox, maxTextBytes: maxTextBytes}
}

func (h *LegacyHandler) Register(app fiber.Router) {
	app.Post("/suggest", h.Suggest)
	app.Get("/auto_fetch", h.AutoFetch)
}

type suggestRequest struct {
	EmailText string `json:"email_text"`
}

// Suggest returns the folder and canned replies for email_text.
func (h *LegacyHandler) Suggest(c *fiber.Ctx) error {
	var req suggestRequest
	// an unparsable body is treated like an empty one
	_ = c.BodyParser(&req)
	if strings.TrimSpace(req.EmailText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email_text required"})
	}
	if h.maxTextBytes > 0 && len(req.EmailText) > h.maxTextBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{"error": "email_text too long"})
	}

	folder, suggestions, err := h.sorter.Suggest(c.UserContext(), req.EmailText)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"folder":      folder,
		"suggestions": suggestions,
	})
}

// AutoFetch refills the folders from the simulated inbox.
func (h *LegacyHandler) AutoFetch(c *fiber.Ctx) error {
	folders, err := h.inbox.AutoFetch(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"emails": folders})
}
