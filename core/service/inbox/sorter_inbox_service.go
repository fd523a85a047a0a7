// Package inbox files incoming messages into classifier folders.
package inbox

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sorter_server/core/domain"
	"sorter_server/core/port/in"
	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
	"sorter_server/pkg/logger"
	"sorter_server/pkg/snowflake"
)

// Service implements in.InboxService.
type Service struct {
	sorter    in.SorterService
	repo      out.FolderRepository
	source    out.InboxSource
	publisher out.InboxPublisher
	ids       *snowflake.Generator
	log       *logger.Logger
	now       func() time.Time

	// fetchMu serializes auto-fetch so a clear never lands between another fetch's saves.
	fetchMu sync.Mutex
}

var _ in.InboxService = (*Service)(nil)

// NewService creates the inbox service. publisher may be nil, in which case
// Submit files messages inline.
func NewService(
	sorter in.SorterService,
	repo out.FolderRepository,
	source out.InboxSource,
	publisher out.InboxPublisher,
	ids *snowflake.Generator,
) *Service {
	return &Service{
		sorter:    sorter,
		repo:      repo,
		source:    source,
		publisher: publisher,
		ids:       ids,
		log:       logger.WithComponent("inbox"),
		now:       time.Now,
	}
}

// AutoFetch empties every folder, then classifies and files each message of the inbox source.
// Repeated calls therefore never accumulate duplicates.
func (s *Service) AutoFetch(ctx context.Context) (domain.Folders, error) {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	texts, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch inbox: %w", err)
	}
	if err := s.repo.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear folders: %w", err)
	}

	for _, text := range texts {
		id, err := s.nextID()
		if err != nil {
			return nil, err
		}
		if _, err := s.File(ctx, id, text, domain.SourceAutoFetch); err != nil {
			return nil, err
		}
	}

	s.log.WithContext(ctx).WithField("count", len(texts)).Info("auto-fetch filed %d messages", len(texts))
	return s.Folders(ctx)
}

// Folders returns every known folder with its message texts.
func (s *Service) Folders(ctx context.Context) (domain.Folders, error) {
	msgs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return domain.GroupMessages(s.sorter.Labels(), msgs), nil
}

// Submit queues text for filing, or files it inline when no publisher is configured.
func (s *Service) Submit(ctx context.Context, text string) (*in.SubmitResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, classification.ErrInvalidInput
	}
	id, err := s.nextID()
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		job := &out.InboxJob{ID: id, Text: text, ReceivedAt: s.now().UTC()}
		if err := s.publisher.PublishInbox(ctx, job); err != nil {
			return nil, fmt.Errorf("publish inbox message: %w", err)
		}
		return &in.SubmitResult{ID: id, Queued: true}, nil
	}

	msg, err := s.File(ctx, id, text, domain.SourceInbox)
	if err != nil {
		return nil, err
	}
	return &in.SubmitResult{ID: id, Message: msg}, nil
}

// File classifies text and stores it in its folder.
func (s *Service) File(ctx context.Context, id, text string, source domain.MessageSource) (*domain.Message, error) {
	result, err := s.sorter.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:           id,
		Text:         text,
		Folder:       result.Label,
		Confidence:   result.Confidence,
		Source:       source,
		Suggestions:  result.Suggestions,
		ModelVersion: result.ModelVersion,
		ClassifiedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, fmt.Errorf("save message %s: %w", id, err)
	}
	return msg, nil
}

func (s *Service) nextID() (string, error) {
	id, err := s.ids.Next()
	if err != nil {
		return "", fmt.Errorf("generate message id: %w", err)
	}
	return id.String(), nil
}
