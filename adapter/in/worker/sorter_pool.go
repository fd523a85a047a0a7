package worker

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/pool"
	"github.com/rs/zerolog"
)

// ErrPoolStopped is reported to jobs abandoned by a stopping pool.
var ErrPoolStopped = errors.New("worker pool stopped")

// PoolConfig holds worker pool configuration.
type PoolConfig struct {
	Workers        int
	BatchSize      int
	WorkerChanSize int
	JobTimeout     time.Duration
	MaxRetries     int
	RetryBase      time.Duration
	DLQSize        int
}

// DefaultPoolConfig returns default pool configuration.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Workers:        4,
		BatchSize:      1,
		WorkerChanSize: 100,
		JobTimeout:     30 * time.Second,
		MaxRetries:     3,
		RetryBase:      time.Second,
		DLQSize:        100,
	}
}

// Pool runs jobs on a go-pkgz/pool worker group with retry and a dead letter channel.
type Pool struct {
	handler Processor
	config  *PoolConfig

	pool *pool.WorkerGroup[*Message]

	ctx    context.Context
	cancel context.CancelFunc

	metrics *PoolMetrics
	log     zerolog.Logger

	dlq      chan *Message
	dlqWg    sync.WaitGroup
	retryWg  sync.WaitGroup
	started  bool
	mu       sync.Mutex
	inflight sync.WaitGroup
}

// PoolMetrics holds pool counters.
type PoolMetrics struct {
	JobsProcessed  int64
	JobsFailed     int64
	JobsDropped    int64
	JobsRetried    int64
	AvgProcessTime int64 // milliseconds
	QueueSize      int32
}

type messageWorker struct {
	pool *Pool
}

func (w *messageWorker) Do(ctx context.Context, msg *Message) error {
	return w.pool.processJob(ctx, msg)
}

// NewPool creates a worker pool. Zero config fields take defaults.
func NewPool(handler Processor, config *PoolConfig, log zerolog.Logger) *Pool {
	def := DefaultPoolConfig()
	if config == nil {
		config = def
	}
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.WorkerChanSize <= 0 {
		config.WorkerChanSize = def.WorkerChanSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = def.JobTimeout
	}
	if config.RetryBase <= 0 {
		config.RetryBase = def.RetryBase
	}
	if config.DLQSize <= 0 {
		config.DLQSize = def.DLQSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		handler: handler,
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		metrics: &PoolMetrics{},
		log:     log.With().Str("component", "worker_pool").Logger(),
		dlq:     make(chan *Message, config.DLQSize),
	}
}

// Start starts the worker pool.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}

	p.pool = pool.New[*Message](p.config.Workers, &messageWorker{pool: p}).
		WithBatchSize(p.config.BatchSize).
		WithWorkerChanSize(p.config.WorkerChanSize).
		WithContinueOnError()

	if err := p.pool.Go(p.ctx); err != nil {
		p.log.Error().Err(err).Msg("failed to start pool")
		return err
	}
	p.started = true

	p.dlqWg.Add(1)
	go p.dlqProcessor()
	go p.metricsReporter()

	p.log.Info().
		Int("workers", p.config.Workers).
		Int("batch_size", p.config.BatchSize).
		Int("max_retries", p.config.MaxRetries).
		Msg("worker pool started")
	return nil
}

// Stop drains submitted jobs and stops the pool. Pending retries are abandoned
// and reported to their jobs as ErrPoolStopped.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	p.log.Info().Msg("stopping worker pool...")

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()

	if err := p.pool.Close(closeCtx); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Warn().Err(err).Msg("error closing pool")
	}

	p.cancel()
	p.retryWg.Wait()
	close(p.dlq)
	p.dlqWg.Wait()

	p.log.Info().
		Int64("processed", atomic.LoadInt64(&p.metrics.JobsProcessed)).
		Int64("failed", atomic.LoadInt64(&p.metrics.JobsFailed)).
		Msg("worker pool stopped")
}

// Submit queues a job. It returns false when the pool is not running.
func (p *Pool) Submit(msg *Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		atomic.AddInt64(&p.metrics.JobsDropped, 1)
		p.log.Warn().
			Str("job_id", msg.ID).
			Str("job_type", msg.Type).
			Msg("job dropped, pool not running")
		return false
	}

	p.inflight.Add(1)
	atomic.AddInt32(&p.metrics.QueueSize, 1)
	p.pool.Submit(msg)
	return true
}

// Wait blocks until every submitted job, including retries, has finished or ctx ends.
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) processJob(ctx context.Context, msg *Message) error {
	start := time.Now()
	defer atomic.AddInt32(&p.metrics.QueueSize, -1)
	defer p.inflight.Done()

	jobCtx, cancel := context.WithTimeout(ctx, p.config.JobTimeout)
	defer cancel()

	err := p.handler.Process(jobCtx, msg)
	p.updateAvgProcessTime(time.Since(start).Milliseconds())

	if err == nil {
		atomic.AddInt64(&p.metrics.JobsProcessed, 1)
		msg.finish(nil)
		return nil
	}

	p.log.Error().
		Err(err).
		Str("job_id", msg.ID).
		Str("job_type", msg.Type).
		Int("retries", msg.Retries).
		Msg("job processing failed")

	if errors.Is(err, ErrUnknownJob) || msg.Retries >= p.config.MaxRetries {
		p.deadLetter(msg, err)
		return err
	}

	msg.Retries++
	atomic.AddInt64(&p.metrics.JobsRetried, 1)
	p.scheduleRetry(msg)
	return err
}

// scheduleRetry resubmits msg after base*2^retries plus up to 500ms jitter.
func (p *Pool) scheduleRetry(msg *Message) {
	backoff := p.config.RetryBase*time.Duration(1<<msg.Retries) +
		time.Duration(rand.Intn(500))*time.Millisecond

	p.inflight.Add(1)
	p.retryWg.Add(1)
	go func() {
		defer p.retryWg.Done()
		defer p.inflight.Done()

		t := time.NewTimer(backoff)
		defer t.Stop()
		select {
		case <-p.ctx.Done():
			p.deadLetter(msg, ErrPoolStopped)
		case <-t.C:
			if !p.Submit(msg) {
				p.deadLetter(msg, ErrPoolStopped)
			}
		}
	}()
}

func (p *Pool) deadLetter(msg *Message, err error) {
	atomic.AddInt64(&p.metrics.JobsFailed, 1)
	msg.finish(err)
	select {
	case p.dlq <- msg:
	default:
		p.log.Error().Str("job_id", msg.ID).Msg("DLQ full, job lost")
	}
}

func (p *Pool) updateAvgProcessTime(elapsed int64) {
	current := atomic.LoadInt64(&p.metrics.AvgProcessTime)
	if current == 0 {
		atomic.StoreInt64(&p.metrics.AvgProcessTime, elapsed)
		return
	}
	atomic.StoreInt64(&p.metrics.AvgProcessTime, (current*9+elapsed)/10)
}

func (p *Pool) dlqProcessor() {
	defer p.dlqWg.Done()

	for msg := range p.dlq {
		p.log.Error().
			Str("job_id", msg.ID).
			Str("job_type", msg.Type).
			Int("retries", msg.Retries).
			Interface("payload", msg.Payload).
			Msg("DLQ: job permanently failed")
	}
}

func (p *Pool) metricsReporter() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			m := p.GetMetrics()
			p.log.Info().
				Int64("processed", m.JobsProcessed).
				Int64("failed", m.JobsFailed).
				Int64("dropped", m.JobsDropped).
				Int64("retried", m.JobsRetried).
				Int64("avg_process_ms", m.AvgProcessTime).
				Int32("queue_size", m.QueueSize).
				Msg("worker pool metrics")
		}
	}
}

// GetMetrics returns current pool metrics.
func (p *Pool) GetMetrics() PoolMetrics {
	return PoolMetrics{
		JobsProcessed:  atomic.LoadInt64(&p.metrics.JobsProcessed),
		JobsFailed:     atomic.LoadInt64(&p.metrics.JobsFailed),
		JobsDropped:    atomic.LoadInt64(&p.metrics.JobsDropped),
		JobsRetried:    atomic.LoadInt64(&p.metrics.JobsRetried),
		AvgProcessTime: atomic.LoadInt64(&p.metrics.AvgProcessTime),
		QueueSize:      atomic.LoadInt32(&p.metrics.QueueSize),
	}
}
