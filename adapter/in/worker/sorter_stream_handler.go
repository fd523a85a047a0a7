package worker

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"sorter_server/pkg/logger"
)

// Submitter accepts jobs for asynchronous processing.
type Submitter interface {
	Submit(msg *Message) bool
}

// StreamHandler adapts Redis Stream messages to pool jobs.
type StreamHandler struct {
	pool    Submitter
	streams map[string]JobType
}

// NewStreamHandler routes each stream in streams to its job type.
func NewStreamHandler(pool Submitter, streams map[string]JobType) *StreamHandler {
	return &StreamHandler{pool: pool, streams: streams}
}

// Handle parses data, submits it to the pool and waits for the job's final outcome.
// It returns nil only once the job succeeded; any error leaves the stream entry pending.
func (h *StreamHandler) Handle(ctx context.Context, stream string, data []byte) error {
	jobType, ok := h.streams[stream]
	if !ok {
		jobType = stream
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		logger.WithContext(ctx).WithError(err).Error("[StreamHandler] failed to parse payload from %s", stream)
		return fmt.Errorf("parse %s payload: %w", stream, err)
	}

	result := make(chan error, 1)
	msg := NewMessage(jobType, payload).OnDone(func(err error) { result <- err })
	if !h.pool.Submit(msg) {
		return fmt.Errorf("submit %s job: pool not accepting jobs", jobType)
	}
	logger.Debug("[StreamHandler] job %s submitted from %s", msg.ID, stream)

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("%s job %s: %w", jobType, msg.ID, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
