package inbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSampleSource(t *testing.T) {
	req := require.New(t)

	got, err := NewSampleSource().Fetch(context.Background())
	req.NoError(err)
	req.Equal(SampleMessages, got)

	got[0] = "changed"
	again, _ := NewSampleSource().Fetch(context.Background())
	req.Equal("Reminder: Project report is due by end of day", again[0])

	custom, err := NewSampleSource("one").Fetch(context.Background())
	req.NoError(err)
	req.Equal([]string{"one"}, custom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewSampleSource().Fetch(ctx)
	req.ErrorIs(err, context.Canceled)
}
