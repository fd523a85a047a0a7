package mongodb

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
)

func evaluationRecord(classes int) *out.EvaluationRecord {
	report := &classification.Report{TrainSize: 16, TestSize: 4, Accuracy: 0.75, MacroF1: 0.7}
	for i := 0; i < classes; i++ {
		report.Classes = append(report.Classes, classification.ClassMetrics{
			Label:     "Label" + strings.Repeat("x", i),
			Precision: 1,
			Recall:    0.5,
			F1:        0.66,
			Support:   1,
		})
	}
	return &out.EvaluationRecord{
		ID:           "r1",
		ModelVersion: "abc123",
		Trigger:      out.TriggerReload,
		Report:       report,
		CreatedAt:    time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestReportDocument_Compression(t *testing.T) {
	tests := []struct {
		name       string
		classes    int
		compressed bool
	}{
		{"small report stays plain", 1, false},
		{"large report is gzipped", 40, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			rec := evaluationRecord(tt.classes)

			doc, err := toDocument(rec)
			req.NoError(err)
			req.Equal(tt.compressed, doc.IsCompressed)
			req.Equal(0.75, doc.Accuracy)
			if tt.compressed {
				req.Less(int64(len(doc.Content)), doc.OriginalSize)
			}

			back, err := fromDocument(doc)
			req.NoError(err)
			req.Equal(rec, back)
		})
	}
}

func TestReportDocument_RequiresReport(t *testing.T) {
	_, err := toDocument(&out.EvaluationRecord{ID: "r1"})
	require.Error(t, err)
}
