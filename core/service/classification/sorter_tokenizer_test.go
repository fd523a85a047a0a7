package classification

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizer_Words(t *testing.T) {
	tok := NewTokenizer(1, 2)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "stop words and punctuation removed",
			text: "Urgent: Server will be down for maintenance tonight.",
			want: []string{"urgent", "server", "maintenance", "tonight"},
		},
		{
			name: "single characters dropped",
			text: "Let’s meet at 5 PM",
			want: []string{"let", "meet", "pm"},
		},
		{
			name: "case folding and full-width normalization",
			text: "ＳＥＲＶＥＲ Outage",
			want: []string{"server", "outage"},
		},
		{
			name: "digits kept",
			text: "Get 70% off",
			want: []string{"70"},
		},
		{
			name: "only stop words",
			text: "the and of",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tok.Words(tt.text))
		})
	}
}

func TestTokenizer_Terms(t *testing.T) {
	req := require.New(t)
	tok := NewTokenizer(1, 2)

	terms := tok.Terms("Server outage on cluster A")

	req.Equal([]string{"server", "outage", "cluster", "server outage", "outage cluster"}, terms)
	req.Nil(tok.Terms("   "))
}

func TestStopWords_Size(t *testing.T) {
	require.Len(t, englishStopWords, 318)
}
