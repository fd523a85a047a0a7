package sorter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sorter_server/core/domain"
	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
	"sorter_server/pkg/cache"
)

type staticCorpus struct {
	corpus classification.Corpus
	err    error
}

func (s *staticCorpus) Load(context.Context) (classification.Corpus, error) {
	return s.corpus, s.err
}

type failingCache struct{}

func (failingCache) GetJSON(context.Context, string, any) (bool, error) {
	return false, cache.ErrUnavailable
}
func (failingCache) SetJSON(context.Context, string, any, time.Duration) error {
	return cache.ErrUnavailable
}
func (failingCache) Delete(context.Context, string) error { return cache.ErrUnavailable }

func newTestService(t *testing.T, c out.Cache, src out.CorpusSource) *Service {
	t.Helper()
	p, err := classification.NewPipeline(classification.ReferenceCorpus(), classification.DefaultModelConfig())
	require.NoError(t, err)
	cfg := Config{CacheTTL: time.Minute, Eval: classification.DefaultEvalConfig(), EvalOnReload: true}
	return NewService(p, src, c, nil, nil, cfg)
}

func TestService_Suggest(t *testing.T) {
	req := require.New(t)
	s := newTestService(t, nil, nil)

	label, suggestions, err := s.Suggest(context.Background(), "Server outage: unexpected downtime on cluster A")

	req.NoError(err)
	req.Equal(domain.LabelUrgent, label)
	req.Len(suggestions, 3)
	req.Equal(int64(1), s.Counters().Snapshot().Labels["Urgent"])
}

func TestService_SuggestBlank(t *testing.T) {
	s := newTestService(t, nil, nil)

	_, _, err := s.Suggest(context.Background(), "  ")

	require.ErrorIs(t, err, classification.ErrInvalidInput)
	require.Equal(t, int64(1), s.Counters().Snapshot().Failures)
}

func TestService_ClassifyUsesCache(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	mem := cache.NewMemoryCache(16)
	s := newTestService(t, mem, nil)

	first, err := s.Classify(ctx, "Exclusive: You have been selected for a prize!")
	req.NoError(err)
	req.False(first.Cached)
	req.Equal(domain.LabelSpam, first.Label)
	req.Len(first.Probabilities, 4)
	req.Equal(1, mem.Len())

	second, err := s.Classify(ctx, "Exclusive: You have been selected for a prize!")
	req.NoError(err)
	req.True(second.Cached)
	req.Equal(first.Label, second.Label)
	req.InDelta(first.Confidence, second.Confidence, 1e-12)

	snap := s.Counters().Snapshot()
	req.Equal(int64(1), snap.CacheHits)
	req.Equal(int64(1), snap.CacheMisses)
	req.Equal(int64(2), s.Latency().Stats(OpClassify).Count)
}

func TestService_ClassifyToleratesCacheOutage(t *testing.T) {
	req := require.New(t)
	p, err := classification.NewPipeline(classification.ReferenceCorpus(), classification.DefaultModelConfig())
	req.NoError(err)
	s := NewService(p, nil, failingCache{}, nil, nil, Config{CacheTTL: time.Minute})

	got, err := s.Classify(context.Background(), "Server outage: unexpected downtime on cluster A")

	req.NoError(err)
	req.Equal(domain.LabelUrgent, got.Label)
}

func TestService_Reload(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	src := &staticCorpus{corpus: classification.ReferenceCorpus()}
	s := newTestService(t, nil, src)
	before, err := s.ModelInfo(ctx)
	req.NoError(err)
	req.Nil(before.Evaluation)

	after, err := s.Reload(ctx)
	req.NoError(err)
	req.Equal(before.Model.Version, after.Model.Version)
	req.NotNil(after.Evaluation)
	req.Equal(4, after.Evaluation.TestSize)
	req.Equal(int64(1), s.Counters().Snapshot().Reloads)

	src.corpus = classification.Corpus{{Subject: "x", Body: "y", Label: "A"}}
	_, err = s.Reload(ctx)
	req.ErrorIs(err, classification.ErrInvalidCorpus)
	req.Equal([]domain.Label{"Custom", "Routine", "Spam", "Urgent"}, s.Labels())

	src.err = errors.New("disk gone")
	_, err = s.Reload(ctx)
	req.Error(err)
}

type reportLog struct {
	recs []*out.EvaluationRecord
	err  error
}

func (r *reportLog) Save(_ context.Context, rec *out.EvaluationRecord) error {
	if r.err != nil {
		return r.err
	}
	r.recs = append(r.recs, rec)
	return nil
}

func (r *reportLog) Latest(_ context.Context, version string) (*out.EvaluationRecord, error) {
	for i := len(r.recs) - 1; i >= 0; i-- {
		if r.recs[i].ModelVersion == version {
			return r.recs[i], nil
		}
	}
	return nil, r.err
}

func (r *reportLog) List(context.Context, int) ([]*out.EvaluationRecord, error) {
	return r.recs, r.err
}

func TestService_EvaluationHistory(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	reports := &reportLog{}
	s := newTestService(t, nil, nil)
	s.SetReportRepository(reports)

	report, err := s.Evaluate(ctx, classification.ReferenceCorpus(), out.TriggerStartup)
	req.NoError(err)
	req.Len(reports.recs, 1)
	rec := reports.recs[0]
	req.NotEmpty(rec.ID)
	req.Equal(out.TriggerStartup, rec.Trigger)
	req.Equal(s.pipeline.Info().Version, rec.ModelVersion)
	req.Same(report, rec.Report)

	listed, err := s.Evaluations(ctx, 10)
	req.NoError(err)
	req.Len(listed, 1)

	// a fresh process serving the same model picks the stored report back up
	restarted := newTestService(t, nil, nil)
	restarted.SetReportRepository(reports)
	found, err := restarted.RestoreEvaluation(ctx)
	req.NoError(err)
	req.True(found)
	status, err := restarted.ModelInfo(ctx)
	req.NoError(err)
	req.Equal(report, status.Evaluation)
}

func TestService_EvaluationStoreFailureIsNotFatal(t *testing.T) {
	req := require.New(t)
	s := newTestService(t, nil, nil)
	s.SetReportRepository(&reportLog{err: errors.New("mongo down")})

	_, err := s.Evaluate(context.Background(), classification.ReferenceCorpus(), out.TriggerStartup)
	req.NoError(err)

	found, err := s.RestoreEvaluation(context.Background())
	req.Error(err)
	req.False(found)
}

func TestService_EvaluationsWithoutRepository(t *testing.T) {
	s := newTestService(t, nil, nil)

	recs, err := s.Evaluations(context.Background(), 5)

	require.NoError(t, err)
	require.Empty(t, recs)
	found, err := s.RestoreEvaluation(context.Background())
	require.NoError(t, err)
	require.False(t, found)
}

func TestCacheKey(t *testing.T) {
	req := require.New(t)

	req.Equal(cacheKey("v1", "hello"), cacheKey("v1", "hello"))
	req.NotEqual(cacheKey("v1", "hello"), cacheKey("v2", "hello"))
	req.NotEqual(cacheKey("v1", "hello"), cacheKey("v1", "hello!"))
}
