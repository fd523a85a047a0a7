package persistence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sorter_server/core/domain"
)

func TestMemoryFolderAdapter(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	a := NewMemoryFolderAdapter()

	req.NoError(a.Save(ctx, &domain.Message{ID: "1", Text: "a", Folder: domain.LabelSpam}))
	req.NoError(a.Save(ctx, &domain.Message{ID: "2", Text: "b", Folder: domain.LabelUrgent}))
	req.ErrorIs(a.Save(ctx, &domain.Message{ID: "1"}), ErrDuplicate)
	req.ErrorIs(a.Save(ctx, &domain.Message{}), ErrInvalidInput)

	msgs, err := a.List(ctx)
	req.NoError(err)
	req.Len(msgs, 2)
	req.Equal("1", msgs[0].ID)
	req.Equal("2", msgs[1].ID)

	// returned values are copies
	msgs[0].Text = "changed"
	again, _ := a.List(ctx)
	req.Equal("a", again[0].Text)

	req.NoError(a.Clear(ctx))
	msgs, err = a.List(ctx)
	req.NoError(err)
	req.Empty(msgs)
	req.NoError(a.Save(ctx, &domain.Message{ID: "1"}))
}

func TestMessageRowMapping(t *testing.T) {
	req := require.New(t)
	m := &domain.Message{
		ID:          "abc",
		Text:        "hello",
		Folder:      domain.LabelRoutine,
		Confidence:  0.7,
		Source:      domain.SourceInbox,
		Suggestions: []string{"one", "two"},
	}

	row := toRow(m)
	req.Equal("Routine", row.Folder)
	req.Equal([]string{"one", "two"}, []string(row.Suggestions))
	req.Equal(m, row.toEntity())
}
