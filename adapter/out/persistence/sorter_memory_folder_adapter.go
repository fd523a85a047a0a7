package persistence

import (
	"context"
	"sync"

	"sorter_server/core/domain"
	"sorter_server/core/port/out"
)

// MemoryFolderAdapter keeps filed messages in process memory, in insertion order.
type MemoryFolderAdapter struct {
	mu    sync.RWMutex
	msgs  []*domain.Message
	index map[string]struct{}
}

var _ out.FolderRepository = (*MemoryFolderAdapter)(nil)

// NewMemoryFolderAdapter creates an empty store.
func NewMemoryFolderAdapter() *MemoryFolderAdapter {
	return &MemoryFolderAdapter{index: make(map[string]struct{})}
}

func (a *MemoryFolderAdapter) Save(_ context.Context, msg *domain.Message) error {
	if msg == nil || msg.ID == "" {
		return ErrInvalidInput
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.index[msg.ID]; ok {
		return ErrDuplicate
	}
	cp := *msg
	a.msgs = append(a.msgs, &cp)
	a.index[msg.ID] = struct{}{}
	return nil
}

func (a *MemoryFolderAdapter) List(context.Context) ([]*domain.Message, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]*domain.Message, len(a.msgs))
	for i, m := range a.msgs {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (a *MemoryFolderAdapter) Clear(context.Context) error {
	a.mu.Lock()
	a.msgs = nil
	a.index = make(map[string]struct{})
	a.mu.Unlock()
	return nil
}
