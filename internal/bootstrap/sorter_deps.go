// Package bootstrap wires configuration into running API and worker processes.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"sorter_server/adapter/out/corpus"
	sample "sorter_server/adapter/out/inbox"
	"sorter_server/adapter/out/messaging"
	"sorter_server/adapter/out/mongodb"
	"sorter_server/adapter/out/persistence"
	"sorter_server/config"
	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
	"sorter_server/core/service/inbox"
	"sorter_server/core/service/sorter"
	"sorter_server/infra/database"
	"sorter_server/pkg/cache"
	"sorter_server/pkg/logger"
	"sorter_server/pkg/metrics"
	"sorter_server/pkg/snowflake"
)

// Dependencies holds everything the API and worker share.
type Dependencies struct {
	Config *config.Config

	DB    *pgxpool.Pool
	SQLDB *sqlx.DB
	Redis *redis.Client
	Mongo *mongo.Client

	Corpus   *corpus.Source
	Pipeline *classification.Pipeline
	Cache    out.Cache
	Latency  *metrics.LatencyRegistry
	Counters *metrics.Counters

	FolderRepo out.FolderRepository
	Reports    out.ReportRepository
	Producer   *messaging.RedisProducer

	SorterService *sorter.Service
	InboxService  *inbox.Service
}

// ModelConfig maps configuration onto the classification model settings.
func ModelConfig(cfg *config.Config) classification.ModelConfig {
	return classification.ModelConfig{
		MaxFeatures: cfg.MaxFeatures,
		SVM:         svmConfig(cfg),
	}
}

// EvalConfig maps configuration onto the held-out evaluation settings.
func EvalConfig(cfg *config.Config) classification.EvalConfig {
	return classification.EvalConfig{
		TestSize:    cfg.EvalTestSize,
		Seed:        cfg.EvalSeed,
		MaxFeatures: cfg.MaxFeatures,
		SVM:         svmConfig(cfg),
	}
}

func svmConfig(cfg *config.Config) classification.SVMConfig {
	return classification.SVMConfig{
		C:         cfg.SVMC,
		Weighting: classification.ClassWeighting(cfg.ClassWeight),
		MaxIter:   cfg.SVMMaxIter,
		Tolerance: cfg.SVMTolerance,
	}
}

// NewDependencies trains the model and opens the optional Postgres and Redis backends.
// Backends that are not configured are replaced by in-memory implementations.
func NewDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{
		Config:   cfg,
		Corpus:   corpus.NewSource(cfg.CorpusPath),
		Latency:  metrics.NewLatencyRegistry(1000),
		Counters: metrics.NewCounters(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	trainStart := time.Now()
	docs, err := deps.Corpus.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load corpus from %s: %w", deps.Corpus.Describe(), err)
	}
	deps.Pipeline, err = classification.NewPipeline(docs, ModelConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	info := deps.Pipeline.Info()
	logger.WithDuration(time.Since(trainStart)).WithFields(map[string]any{
		"version":    info.Version,
		"labels":     info.Labels,
		"vocabulary": info.VocabularySize,
		"corpus":     info.CorpusSize,
		"source":     deps.Corpus.Describe(),
	}).Info("model trained")

	if cfg.DatabaseURL != "" {
		deps.DB, err = database.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		closers = append(closers, deps.DB.Close)

		if err := database.Migrate(ctx, deps.DB, persistence.Schema); err != nil {
			cleanup()
			return nil, nil, err
		}

		deps.SQLDB, err = database.NewSQLX(cfg.DatabaseURL, 10)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect sqlx: %w", err)
		}
		closers = append(closers, func() { deps.SQLDB.Close() })
		deps.FolderRepo = persistence.NewFolderAdapter(deps.SQLDB)
		logger.Info("Postgres folder store enabled")
	} else {
		deps.FolderRepo = persistence.NewMemoryFolderAdapter()
		logger.Info("DATABASE_URL not set, folders kept in memory")
	}

	if cfg.RedisURL != "" {
		deps.Redis, err = database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		closers = append(closers, func() { deps.Redis.Close() })
		deps.Cache = cache.NewRedisCache(deps.Redis, "sorter:")
		deps.Producer = messaging.NewRedisProducer(deps.Redis, cfg.InboxStream)
		logger.Info("Redis cache and inbox stream enabled")
	} else {
		deps.Cache = cache.NewMemoryCache(cfg.CacheMaxEntries)
		logger.Info("REDIS_URL not set, using in-memory cache and inline filing")
	}

	deps.Reports = persistence.NewMemoryReportAdapter(0)
	if cfg.MongoDBURL != "" {
		client, err := mongodb.NewClient(ctx, cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed, evaluation reports kept in memory: %v", err)
		} else {
			deps.Mongo = client
			closers = append(closers, func() { _ = client.Disconnect(context.Background()) })

			reports := mongodb.NewReportAdapter(client.Database(cfg.MongoDBName))
			if err := reports.EnsureIndexes(ctx); err != nil {
				logger.WithError(err).Warn("failed to ensure evaluation report indexes")
			}
			deps.Reports = reports
			logger.Info("MongoDB evaluation report store enabled")
		}
	}

	deps.SorterService = sorter.NewService(deps.Pipeline, deps.Corpus, deps.Cache, deps.Latency, deps.Counters, sorter.Config{
		CacheTTL:     cfg.CacheTTL,
		Eval:         EvalConfig(cfg),
		EvalOnReload: cfg.EvalOnStartup,
	})

	deps.SorterService.SetReportRepository(deps.Reports)

	ids, err := snowflake.NewGenerator(cfg.NodeID)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	var publisher out.InboxPublisher
	if deps.Producer != nil {
		publisher = deps.Producer
	}
	deps.InboxService = inbox.NewService(deps.SorterService, deps.FolderRepo, sample.NewSampleSource(), publisher, ids)

	if cfg.EvalOnStartup {
		if _, err := deps.SorterService.Evaluate(ctx, docs, out.TriggerStartup); err != nil {
			logger.WithError(err).Warn("startup evaluation skipped")
		}
	} else if found, err := deps.SorterService.RestoreEvaluation(ctx); err != nil {
		logger.WithError(err).Warn("stored evaluation not restored")
	} else if found {
		logger.Info("restored stored evaluation for model %s", info.Version)
	}

	return deps, cleanup, nil
}
