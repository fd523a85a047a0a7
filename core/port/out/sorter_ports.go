package out

import (
	"context"
	"time"

	"sorter_server/core/domain"
	"sorter_server/core/service/classification"
)

// FolderRepository stores filed messages.
type FolderRepository interface {
	Save(ctx context.Context, msg *domain.Message) error
	List(ctx context.Context) ([]*domain.Message, error)
	Clear(ctx context.Context) error
}

// InboxSource yields raw messages to classify on auto-fetch.
type InboxSource interface {
	Fetch(ctx context.Context) ([]string, error)
}

// CorpusSource yields the labeled training corpus.
type CorpusSource interface {
	Load(ctx context.Context) (classification.Corpus, error)
}

// InboxPublisher enqueues messages for asynchronous filing.
type InboxPublisher interface {
	PublishInbox(ctx context.Context, job *InboxJob) error
}

// InboxJob is the stream payload for one submitted message.
type InboxJob struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// Cache stores JSON values by key.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Evaluation triggers.
const (
	TriggerStartup = "startup"
	TriggerReload  = "reload"
)

// EvaluationRecord is one stored held-out evaluation run.
type EvaluationRecord struct {
	ID           string                 `json:"id"`
	ModelVersion string                 `json:"model_version"`
	Trigger      string                 `json:"trigger"`
	Report       *classification.Report `json:"report"`
	CreatedAt    time.Time              `json:"created_at"`
}

// ReportRepository keeps the history of evaluation runs.
type ReportRepository interface {
	Save(ctx context.Context, rec *EvaluationRecord) error
	// Latest returns the newest record for modelVersion, or nil when there is none.
	Latest(ctx context.Context, modelVersion string) (*EvaluationRecord, error)
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*EvaluationRecord, error)
}
