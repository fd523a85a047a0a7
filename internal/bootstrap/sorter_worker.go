package bootstrap

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"sorter_server/adapter/in/worker"
	"sorter_server/adapter/out/messaging"
	"sorter_server/pkg/logger"
)

// Worker consumes the inbox stream and files messages through the pool.
type Worker struct {
	pool     *worker.Pool
	consumer *messaging.Consumer
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger

	mu      sync.Mutex
	stopped bool
}

// NewWorker builds the pool and, when Redis is configured, the stream consumer.
func NewWorker(deps *Dependencies) *Worker {
	cfg := deps.Config
	zlog := zerolog.New(os.Stdout).With().Timestamp().Str("component", "worker").Logger()
	if cfg.IsDevelopment() {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Str("component", "worker").Logger()
	}

	pool := worker.NewPool(worker.NewHandler(deps.InboxService), &worker.PoolConfig{
		Workers:        cfg.WorkerCount,
		BatchSize:      cfg.WorkerBatchSize,
		WorkerChanSize: cfg.WorkerQueueSize,
		MaxRetries:     cfg.ConsumerMaxRetries,
	}, zlog)

	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{pool: pool, ctx: ctx, cancel: cancel, zlog: zlog}

	if deps.Redis != nil {
		w.consumer = messaging.NewConsumer(deps.Redis, &messaging.ConsumerConfig{
			Group:                cfg.ConsumerGroup,
			Consumer:             cfg.WorkerID,
			Streams:              []string{cfg.InboxStream},
			Handler:              worker.NewStreamHandler(pool, map[string]worker.JobType{cfg.InboxStream: worker.JobInboxFile}),
			Logger:               zlog,
			BatchSize:            int64(cfg.ConsumerBatchSize),
			Block:                time.Duration(cfg.ConsumerBlockMS) * time.Millisecond,
			PendingCheckInterval: time.Duration(cfg.ConsumerPendingCheckSec) * time.Second,
			MaxRetries:           cfg.ConsumerMaxRetries,
		})
		logger.Info("Redis Stream Consumer configured for %s", cfg.InboxStream)
	} else {
		logger.Warn("Redis not available, worker has no stream to consume")
	}
	return w
}

// Start runs the pool and consumer until Stop is called.
func (w *Worker) Start() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	if err := w.pool.Start(); err != nil {
		w.mu.Unlock()
		return err
	}

	if w.consumer != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.zlog.Info().Msg("Starting Redis Stream Consumer...")
			if err := w.consumer.Run(w.ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.zlog.Error().Err(err).Msg("Redis Stream Consumer error")
			}
		}()
	}
	w.mu.Unlock()

	<-w.ctx.Done()
	return nil
}

// Stop stops consuming, then drains the pool.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	w.pool.Stop()
}

func (w *Worker) Metrics() worker.PoolMetrics {
	return w.pool.GetMetrics()
}
