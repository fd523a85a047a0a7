// Package corpus loads the training corpus.
package corpus

import (
	"context"

	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
)

// Source loads a YAML corpus from path, or the built-in reference corpus when path is empty.
// The file is re-read on every Load so a reload picks up edits.
type Source struct {
	path string
}

var _ out.CorpusSource = (*Source)(nil)

// NewSource creates a corpus source.
func NewSource(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Load(ctx context.Context) (classification.Corpus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.path == "" {
		return classification.ReferenceCorpus(), nil
	}
	return classification.LoadCorpusFile(s.path)
}

// Describe names where the corpus comes from.
func (s *Source) Describe() string {
	if s.path == "" {
		return "builtin"
	}
	return s.path
}
