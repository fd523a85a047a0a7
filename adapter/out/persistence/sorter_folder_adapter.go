package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"sorter_server/core/domain"
	"sorter_server/core/port/out"
)

// Schema creates the message table used by FolderAdapter.
const Schema = `
CREATE TABLE IF NOT EXISTS sorted_messages (
	seq           BIGSERIAL PRIMARY KEY,
	id            TEXT NOT NULL UNIQUE,
	text          TEXT NOT NULL,
	folder        TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
	source        TEXT NOT NULL,
	suggestions   TEXT[] NOT NULL DEFAULT '{}',
	model_version TEXT NOT NULL DEFAULT '',
	classified_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS sorted_messages_folder_idx ON sorted_messages (folder);
`

// FolderAdapter implements out.FolderRepository on PostgreSQL.
type FolderAdapter struct {
	db *sqlx.DB
}

var _ out.FolderRepository = (*FolderAdapter)(nil)

// NewFolderAdapter creates a new FolderAdapter.
func NewFolderAdapter(db *sqlx.DB) *FolderAdapter {
	return &FolderAdapter{db: db}
}

// messageRow represents the database row for filed messages.
type messageRow struct {
	ID           string         `db:"id"`
	Text         string         `db:"text"`
	Folder       string         `db:"folder"`
	Confidence   float64        `db:"confidence"`
	Source       string         `db:"source"`
	Suggestions  pq.StringArray `db:"suggestions"`
	ModelVersion string         `db:"model_version"`
	ClassifiedAt time.Time      `db:"classified_at"`
}

func (r *messageRow) toEntity() *domain.Message {
	return &domain.Message{
		ID:           r.ID,
		Text:         r.Text,
		Folder:       domain.Label(r.Folder),
		Confidence:   r.Confidence,
		Source:       domain.MessageSource(r.Source),
		Suggestions:  []string(r.Suggestions),
		ModelVersion: r.ModelVersion,
		ClassifiedAt: r.ClassifiedAt,
	}
}

func toRow(m *domain.Message) messageRow {
	return messageRow{
		ID:           m.ID,
		Text:         m.Text,
		Folder:       string(m.Folder),
		Confidence:   m.Confidence,
		Source:       string(m.Source),
		Suggestions:  pq.StringArray(m.Suggestions),
		ModelVersion: m.ModelVersion,
		ClassifiedAt: m.ClassifiedAt,
	}
}

const insertMessageQuery = `
	INSERT INTO sorted_messages (id, text, folder, confidence, source, suggestions, model_version, classified_at)
	VALUES (:id, :text, :folder, :confidence, :source, :suggestions, :model_version, :classified_at)
	ON CONFLICT (id) DO NOTHING`

// Save inserts msg. A message ID that already exists yields ErrDuplicate.
func (a *FolderAdapter) Save(ctx context.Context, msg *domain.Message) error {
	if msg == nil || msg.ID == "" {
		return ErrInvalidInput
	}
	res, err := a.db.NamedExecContext(ctx, insertMessageQuery, toRow(msg))
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicate
	}
	return nil
}

// List returns all messages in insertion order.
func (a *FolderAdapter) List(ctx context.Context) ([]*domain.Message, error) {
	var rows []messageRow
	query := `SELECT id, text, folder, confidence, source, suggestions, model_version, classified_at
		FROM sorted_messages ORDER BY seq ASC`

	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	msgs := make([]*domain.Message, len(rows))
	for i := range rows {
		msgs[i] = rows[i].toEntity()
	}
	return msgs, nil
}

// Clear deletes every stored message.
func (a *FolderAdapter) Clear(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM sorted_messages`); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}
	return nil
}
