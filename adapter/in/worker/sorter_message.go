package worker

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of a job.
type JobType = string

const (
	// JobInboxFile classifies one submitted message and files it.
	JobInboxFile JobType = "inbox.file"
)

type Message struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	Retries   int            `json:"retries"`

	done     func(error)
	doneOnce sync.Once
}

func NewMessage(jobType string, payload map[string]any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
}

// OnDone registers fn to receive the final outcome of the job: nil once it
// succeeds, or the last error once it is dead-lettered.
func (m *Message) OnDone(fn func(error)) *Message {
	m.done = fn
	return m
}

func (m *Message) finish(err error) {
	if m.done == nil {
		return
	}
	m.doneOnce.Do(func() { m.done(err) })
}

// InboxFilePayload mirrors out.InboxJob on the wire.
type InboxFilePayload struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}
