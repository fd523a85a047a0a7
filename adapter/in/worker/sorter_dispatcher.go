package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"sorter_server/core/domain"
	"sorter_server/core/port/in"
	"sorter_server/pkg/logger"
)

// ErrUnknownJob is returned for job types no processor handles.
var ErrUnknownJob = errors.New("unknown job type")

// Processor runs one job.
type Processor interface {
	Process(ctx context.Context, msg *Message) error
}

type Handler struct {
	inbox in.InboxService
}

func NewHandler(inbox in.InboxService) *Handler {
	return &Handler{inbox: inbox}
}

func (h *Handler) Process(ctx context.Context, msg *Message) error {
	logger.Debug("Processing message: %s", msg.Type)

	switch msg.Type {
	case JobInboxFile:
		return h.processInboxFile(ctx, msg)
	default:
		logger.Warn("Unknown job type: %s", msg.Type)
		return fmt.Errorf("%w: %s", ErrUnknownJob, msg.Type)
	}
}

// processInboxFile files a queued message. Redelivery of an already filed ID is a no-op.
func (h *Handler) processInboxFile(ctx context.Context, msg *Message) error {
	p, err := ParsePayload[InboxFilePayload](msg)
	if err != nil {
		return fmt.Errorf("parse inbox payload: %w", err)
	}
	if p.ID == "" || strings.TrimSpace(p.Text) == "" {
		logger.WithField("job_id", msg.ID).Warn("dropping inbox job without id or text")
		return nil
	}

	filed, err := h.inbox.File(ctx, p.ID, p.Text, domain.SourceInbox)
	if errors.Is(err, domain.ErrDuplicateMessage) {
		logger.WithField("message_id", p.ID).Debug("message already filed")
		return nil
	}
	if err != nil {
		return err
	}

	logger.WithFields(map[string]any{
		"message_id": filed.ID,
		"folder":     filed.Folder,
		"confidence": filed.Confidence,
	}).Info("filed queued message")
	return nil
}

func ParsePayload[T any](msg *Message) (*T, error) {
	var payload T
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
