package in

import (
	"context"

	"sorter_server/core/domain"
	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
)

// SorterService classifies text and suggests replies.
type SorterService interface {
	// Suggest returns the folder and canned replies for text.
	Suggest(ctx context.Context, text string) (domain.Label, []string, error)
	// Classify returns the folder with calibrated probabilities. Results may come from cache.
	Classify(ctx context.Context, text string) (*domain.Classification, error)
	// Labels returns the closed label set of the serving model.
	Labels() []domain.Label
	// ModelInfo describes the serving model and the last evaluation.
	ModelInfo(ctx context.Context) (*ModelStatus, error)
	// Reload retrains from the configured corpus source and swaps the model in.
	Reload(ctx context.Context) (*ModelStatus, error)
	// Evaluations lists stored held-out evaluation runs, newest first.
	Evaluations(ctx context.Context, limit int) ([]*out.EvaluationRecord, error)
}

// ModelStatus bundles model metadata with its held-out evaluation.
type ModelStatus struct {
	Model      classification.ModelInfo `json:"model"`
	Evaluation *classification.Report   `json:"evaluation,omitempty"`
}

// InboxService files incoming messages into folders.
type InboxService interface {
	// AutoFetch clears the folders, classifies the sample inbox and returns the refilled folders.
	AutoFetch(ctx context.Context) (domain.Folders, error)
	// Folders returns current folder contents.
	Folders(ctx context.Context) (domain.Folders, error)
	// Submit accepts a message for filing, queued when a publisher is configured.
	Submit(ctx context.Context, text string) (*SubmitResult, error)
	// File classifies and stores one message synchronously.
	File(ctx context.Context, id, text string, source domain.MessageSource) (*domain.Message, error)
}

// SubmitResult reports how a submitted message was handled.
type SubmitResult struct {
	ID      string          `json:"id"`
	Queued  bool            `json:"queued"`
	Message *domain.Message `json:"message,omitempty"`
}
