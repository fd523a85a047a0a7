package http

import (
	"github.com/gofiber/fiber/v2"

	"sorter_server/core/port/in"
	"sorter_server/pkg/apperr"
)

const (
	defaultEvaluationLimit = 20
	maxEvaluationLimit     = 100
)

// APIHandler serves the versioned classification routes.
type APIHandler struct {
	sorter       in.SorterService
	inbox        in.InboxService
	maxTextBytes int
}

func NewAPIHandler(sorter in.SorterService, inbox in.InboxService, maxTextBytes int) *APIHandler {
	return &APIHandler{sorter: sorter, inbox: inbox, maxTextBytes: maxTextBytes}
}

func (h *APIHandler) Register(r fiber.Router) {
	r.Post("/classify", h.Classify)
	r.Get("/labels", h.Labels)
	r.Get("/folders", h.Folders)
	r.Post("/inbox", h.Submit)
	r.Get("/model", h.Model)
	r.Post("/model/reload", h.Reload)
	r.Get("/model/evaluations", h.Evaluations)
}

// Classify returns label, probabilities and suggestions for text.
func (h *APIHandler) Classify(c *fiber.Ctx) error {
	text, err := parseText(c, h.maxTextBytes)
	if err != nil {
		return err
	}
	result, err := h.sorter.Classify(c.UserContext(), text)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *APIHandler) Labels(c *fiber.Ctx) error {
	labels := h.sorter.Labels()
	return c.JSON(fiber.Map{
		"labels": labels,
		"count":  len(labels),
	})
}

// Folders returns the current folder contents.
func (h *APIHandler) Folders(c *fiber.Ctx) error {
	folders, err := h.inbox.Folders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"folders": folders})
}

// Submit accepts one message for filing. Queued messages answer 202.
func (h *APIHandler) Submit(c *fiber.Ctx) error {
	text, err := parseText(c, h.maxTextBytes)
	if err != nil {
		return err
	}
	result, err := h.inbox.Submit(c.UserContext(), text)
	if err != nil {
		return err
	}
	if result.Queued {
		return c.Status(fiber.StatusAccepted).JSON(result)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandler) Model(c *fiber.Ctx) error {
	status, err := h.sorter.ModelInfo(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// Reload retrains from the corpus source.
func (h *APIHandler) Reload(c *fiber.Ctx) error {
	status, err := h.sorter.Reload(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(status)
}

// Evaluations lists stored evaluation runs, newest first.
func (h *APIHandler) Evaluations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultEvaluationLimit)
	if limit < 1 || limit > maxEvaluationLimit {
		return apperr.InvalidInput("limit", "must be between 1 and 100")
	}
	recs, err := h.sorter.Evaluations(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"evaluations": recs,
		"count":       len(recs),
	})
}
