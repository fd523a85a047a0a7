package persistence

import (
	"context"
	"sync"

	"sorter_server/core/port/out"
)

// MemoryReportAdapter keeps evaluation runs in process memory, oldest first.
type MemoryReportAdapter struct {
	mu   sync.RWMutex
	recs []*out.EvaluationRecord
	max  int
}

var _ out.ReportRepository = (*MemoryReportAdapter)(nil)

// NewMemoryReportAdapter keeps at most capacity records; capacity <= 0 means 100.
func NewMemoryReportAdapter(capacity int) *MemoryReportAdapter {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryReportAdapter{max: capacity}
}

func (a *MemoryReportAdapter) Save(_ context.Context, rec *out.EvaluationRecord) error {
	if rec == nil || rec.ID == "" || rec.Report == nil {
		return ErrInvalidInput
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range a.recs {
		if r.ID == rec.ID {
			return ErrDuplicate
		}
	}
	cp := *rec
	a.recs = append(a.recs, &cp)
	if len(a.recs) > a.max {
		a.recs = a.recs[len(a.recs)-a.max:]
	}
	return nil
}

func (a *MemoryReportAdapter) Latest(_ context.Context, modelVersion string) (*out.EvaluationRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := len(a.recs) - 1; i >= 0; i-- {
		if a.recs[i].ModelVersion == modelVersion {
			cp := *a.recs[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (a *MemoryReportAdapter) List(_ context.Context, limit int) ([]*out.EvaluationRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit <= 0 || limit > len(a.recs) {
		limit = len(a.recs)
	}
	recs := make([]*out.EvaluationRecord, 0, limit)
	for i := len(a.recs) - 1; i >= 0 && len(recs) < limit; i-- {
		cp := *a.recs[i]
		recs = append(recs, &cp)
	}
	return recs, nil
}
