// Package sorter is the application service around the classification pipeline.
package sorter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"sorter_server/core/domain"
	"sorter_server/core/port/in"
	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
	"sorter_server/core/service/reply"
	"sorter_server/pkg/logger"
	"sorter_server/pkg/metrics"
)

// Latency operation names.
const (
	OpClassify = "classify"
	OpSuggest  = "suggest"
	OpReload   = "reload"
	OpEvaluate = "evaluate"
)

// Config holds service options.
type Config struct {
	CacheTTL time.Duration
	Eval     classification.EvalConfig
	// EvalOnReload re-runs the held-out evaluation after every successful reload.
	EvalOnReload bool
}

// Service implements in.SorterService.
type Service struct {
	pipeline *classification.Pipeline
	corpus   out.CorpusSource
	cache    out.Cache
	reports  out.ReportRepository
	cfg      Config
	latency  *metrics.LatencyRegistry
	counters *metrics.Counters
	log      *logger.Logger

	reloadMu   sync.Mutex
	evalMu     sync.RWMutex
	evaluation *classification.Report
}

var _ in.SorterService = (*Service)(nil)

// NewService wires a trained pipeline. cache may be nil.
func NewService(
	pipeline *classification.Pipeline,
	corpus out.CorpusSource,
	cache out.Cache,
	latency *metrics.LatencyRegistry,
	counters *metrics.Counters,
	cfg Config,
) *Service {
	if latency == nil {
		latency = metrics.NewLatencyRegistry(1000)
	}
	if counters == nil {
		counters = metrics.NewCounters()
	}
	return &Service{
		pipeline: pipeline,
		corpus:   corpus,
		cache:    cache,
		cfg:      cfg,
		latency:  latency,
		counters: counters,
		log:      logger.WithComponent("sorter"),
	}
}

// SetReportRepository enables persistence of evaluation runs.
func (s *Service) SetReportRepository(repo out.ReportRepository) {
	s.reports = repo
}

// Suggest classifies text without calibration and returns the folder replies.
func (s *Service) Suggest(ctx context.Context, text string) (domain.Label, []string, error) {
	defer s.latency.Since(OpSuggest, time.Now())

	label, err := s.pipeline.Classify(text)
	if err != nil {
		s.counters.Failure()
		return "", nil, err
	}
	l := domain.Label(label)
	s.counters.IncLabel(label)
	return l, reply.Suggestions(l), nil
}

// Classify returns the calibrated classification of text, served from cache when possible.
func (s *Service) Classify(ctx context.Context, text string) (*domain.Classification, error) {
	defer s.latency.Since(OpClassify, time.Now())

	version := s.pipeline.Info().Version
	key := cacheKey(version, text)

	if s.cache != nil {
		var cached domain.Classification
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("prediction cache read failed")
		}
		if ok {
			s.counters.CacheHit()
			s.counters.IncLabel(string(cached.Label))
			cached.Cached = true
			return &cached, nil
		}
		s.counters.CacheMiss()
	}

	pred, err := s.pipeline.ClassifyWithConfidence(text)
	if err != nil {
		s.counters.Failure()
		return nil, err
	}

	label := domain.Label(pred.Label)
	result := &domain.Classification{
		Label:         label,
		Confidence:    pred.Confidence,
		Probabilities: lo.MapKeys(pred.Probabilities, func(_ float64, k string) domain.Label { return domain.Label(k) }),
		Suggestions:   reply.Suggestions(label),
		ModelVersion:  pred.ModelVersion,
	}
	s.counters.IncLabel(pred.Label)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey(pred.ModelVersion, text), result, s.cfg.CacheTTL); err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("prediction cache write failed")
		}
	}
	return result, nil
}

// Labels returns the label set of the serving model.
func (s *Service) Labels() []domain.Label {
	return lo.Map(s.pipeline.Labels(), func(l string, _ int) domain.Label { return domain.Label(l) })
}

// ModelInfo returns metadata of the serving model and the latest evaluation.
func (s *Service) ModelInfo(ctx context.Context) (*in.ModelStatus, error) {
	s.evalMu.RLock()
	defer s.evalMu.RUnlock()
	return &in.ModelStatus{Model: s.pipeline.Info(), Evaluation: s.evaluation}, nil
}

// Reload retrains the pipeline from the corpus source. On failure the current model keeps serving.
func (s *Service) Reload(ctx context.Context) (*in.ModelStatus, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	defer s.latency.Since(OpReload, time.Now())

	if s.corpus == nil {
		return nil, fmt.Errorf("reload: no corpus source configured")
	}
	corpus, err := s.corpus.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload: %w", err)
	}

	info, err := s.pipeline.Reload(corpus)
	if err != nil {
		s.log.WithError(err).Error("model reload failed, keeping version %s", info.Version)
		return nil, err
	}
	s.counters.Reload()
	s.log.WithFields(map[string]any{
		"version":    info.Version,
		"vocabulary": info.VocabularySize,
		"corpus":     info.CorpusSize,
	}).Info("model reloaded")

	if s.cfg.EvalOnReload {
		if _, err := s.evaluate(ctx, corpus, out.TriggerReload); err != nil {
			s.log.WithError(err).Warn("evaluation after reload failed")
		}
	}
	return s.ModelInfo(ctx)
}

// Evaluate runs the held-out evaluation on corpus and stores the report.
func (s *Service) Evaluate(ctx context.Context, corpus classification.Corpus, trigger string) (*classification.Report, error) {
	return s.evaluate(ctx, corpus, trigger)
}

func (s *Service) evaluate(ctx context.Context, corpus classification.Corpus, trigger string) (*classification.Report, error) {
	defer s.latency.Since(OpEvaluate, time.Now())

	report, err := classification.Evaluate(corpus, s.cfg.Eval)
	if err != nil {
		return nil, err
	}
	s.evalMu.Lock()
	s.evaluation = report
	s.evalMu.Unlock()

	s.log.WithFields(map[string]any{
		"accuracy": report.Accuracy,
		"macro_f1": report.MacroF1,
		"test":     report.TestSize,
		"trigger":  trigger,
	}).Info("held-out evaluation complete")

	if s.reports != nil {
		rec := &out.EvaluationRecord{
			ID:           uuid.New().String(),
			ModelVersion: s.pipeline.Info().Version,
			Trigger:      trigger,
			Report:       report,
			CreatedAt:    time.Now().UTC(),
		}
		if err := s.reports.Save(ctx, rec); err != nil {
			s.log.WithContext(ctx).WithError(err).Warn("evaluation report not stored")
		}
	}
	return report, nil
}

// RestoreEvaluation loads the newest stored report of the serving model version.
// It reports whether one was found.
func (s *Service) RestoreEvaluation(ctx context.Context) (bool, error) {
	if s.reports == nil {
		return false, nil
	}
	rec, err := s.reports.Latest(ctx, s.pipeline.Info().Version)
	if err != nil {
		return false, fmt.Errorf("load latest evaluation: %w", err)
	}
	if rec == nil {
		return false, nil
	}
	s.evalMu.Lock()
	s.evaluation = rec.Report
	s.evalMu.Unlock()
	return true, nil
}

// Evaluations returns stored evaluation runs, newest first.
func (s *Service) Evaluations(ctx context.Context, limit int) ([]*out.EvaluationRecord, error) {
	if s.reports == nil {
		return []*out.EvaluationRecord{}, nil
	}
	recs, err := s.reports.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return recs, nil
}

// Latency exposes the latency registry.
func (s *Service) Latency() *metrics.LatencyRegistry { return s.latency }

// Counters exposes the classification counters.
func (s *Service) Counters() *metrics.Counters { return s.counters }

func cacheKey(version, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "classify:" + version + ":" + hex.EncodeToString(sum[:16])
}
