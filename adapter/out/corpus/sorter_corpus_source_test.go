package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sorter_server/core/service/classification"
)

func TestSource_Builtin(t *testing.T) {
	req := require.New(t)
	s := NewSource("")

	c, err := s.Load(context.Background())

	req.NoError(err)
	req.Len(c, 20)
	req.Equal("builtin", s.Describe())
}

func TestSource_YAMLFile(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	req.NoError(os.WriteFile(path, []byte(`
samples:
  - subject: "Server down"
    body: "Outage on cluster"
    label: Ops
  - subject: "Win money"
    body: "Free prize inside"
    label: Junk
`), 0o600))

	c, err := NewSource(path).Load(context.Background())

	req.NoError(err)
	req.Len(c, 2)
	req.Equal("Server down Outage on cluster", c[0].Document())
	req.Equal([]string{"Ops", "Junk"}, c.Labels())
}

func TestSource_InvalidFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	oneClass := filepath.Join(dir, "one.yaml")
	req.NoError(os.WriteFile(oneClass, []byte("samples:\n  - subject: a\n    body: b\n    label: X\n"), 0o600))

	_, err := NewSource(oneClass).Load(context.Background())
	req.ErrorIs(err, classification.ErrInvalidCorpus)

	_, err = NewSource(filepath.Join(dir, "missing.yaml")).Load(context.Background())
	req.Error(err)
}
