package snowflake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		node    int64
		wantErr bool
	}{
		{"node 0", 0, false},
		{"node max", 1023, false},
		{"negative", -1, true},
		{"too large", 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.node)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewGenerator(%d) error = %v, wantErr %v", tt.node, err, tt.wantErr)
			}
		})
	}
}

func TestGenerator_FieldsRoundTrip(t *testing.T) {
	req := require.New(t)
	g, err := NewGenerator(7)
	req.NoError(err)
	g.now = func() int64 { return epoch + 1000 }

	first, err := g.Next()
	req.NoError(err)
	second, err := g.Next()
	req.NoError(err)

	req.Equal(int64(7), first.Node())
	req.Equal(int64(0), first.Sequence())
	req.Equal(int64(1), second.Sequence())
	req.Equal(epoch+1000, first.Time().UnixMilli())

	parsed, err := ParseID(second.String())
	req.NoError(err)
	req.Equal(second, parsed)
}

func TestGenerator_ClockBackwards(t *testing.T) {
	g, err := NewGenerator(1)
	require.NoError(t, err)
	now := epoch + 10_000
	g.now = func() int64 { return now }

	_, err = g.Next()
	require.NoError(t, err)

	now -= 1000
	_, err = g.Next()
	require.ErrorIs(t, err, ErrClockMovedBack)
}

func TestGenerator_ConcurrentUnique(t *testing.T) {
	g, err := NewGenerator(3)
	require.NoError(t, err)

	const workers, perWorker = 8, 500
	ids := make(chan ID, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id, err := g.Next()
				if err != nil {
					t.Errorf("Next() error = %v", err)
					return
				}
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[ID]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}
