package bootstrap

import (
	"context"
	"fmt"
	"io"

	"sorter_server/adapter/out/corpus"
	"sorter_server/config"
	"sorter_server/core/service/classification"
)

// RunEval trains on a seeded split of the configured corpus and writes the report table to w.
func RunEval(ctx context.Context, cfg *config.Config, w io.Writer) (*classification.Report, error) {
	src := corpus.NewSource(cfg.CorpusPath)
	docs, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus from %s: %w", src.Describe(), err)
	}

	report, err := classification.Evaluate(docs, EvalConfig(cfg))
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "corpus: %s (%d samples), train %d / test %d, seed %d\n",
		src.Describe(), len(docs), report.TrainSize, report.TestSize, cfg.EvalSeed)
	report.Render(w)
	return report, nil
}
