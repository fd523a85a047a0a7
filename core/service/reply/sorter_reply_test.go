package reply

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sorter_server/core/domain"
)

func TestSuggestions(t *testing.T) {
	tests := []struct {
		label     domain.Label
		wantLen   int
		wantFirst string
	}{
		{domain.LabelUrgent, 3, "Thanks — I’ll prioritize this and get back to you shortly."},
		{domain.LabelRoutine, 3, "Thanks for the update — I’ll review it soon."},
		{domain.LabelSpam, 3, "Marking this as spam — no action needed."},
		{domain.LabelCustom, 3, "Thanks for reaching out — I will respond shortly."},
		{"Ops", 1, "No suggestions available."},
	}
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			got := Suggestions(tt.label)
			require.Len(t, got, tt.wantLen)
			require.Equal(t, tt.wantFirst, got[0])
		})
	}
}

func TestSuggestions_ReturnsCopy(t *testing.T) {
	got := Suggestions(domain.LabelSpam)
	got[0] = "mutated"

	require.NotEqual(t, "mutated", Suggestions(domain.LabelSpam)[0])
}
