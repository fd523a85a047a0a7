package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sorter_server/config"
	"sorter_server/internal/bootstrap"
	"sorter_server/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load .env file if exists (for local development)
	envErr := godotenv.Load()

	mode := flag.String("mode", "all", "Run mode: api, worker, all, eval")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "sorter-" + *mode,
	})
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	if *mode == "eval" {
		if _, err := bootstrap.RunEval(context.Background(), cfg, os.Stdout); err != nil {
			logger.Fatal("Evaluation failed: %v", err)
		}
		return
	}

	deps, cleanup, err := bootstrap.NewDependencies(context.Background(), cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	go watchReload(deps)

	switch *mode {
	case "api":
		runAPI(deps)
	case "worker":
		runWorker(deps)
	case "all":
		w := bootstrap.NewWorker(deps)
		go func() {
			if err := w.Start(); err != nil {
				logger.Error("Worker stopped: %v", err)
			}
		}()
		runAPI(deps)
		w.Stop()
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

// watchReload retrains the model from the corpus source on SIGHUP.
func watchReload(deps *bootstrap.Dependencies) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	for range hup {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		status, err := deps.SorterService.Reload(ctx)
		cancel()
		if err != nil {
			logger.WithError(err).Error("SIGHUP reload failed, previous model still serving")
			continue
		}
		logger.Info("SIGHUP reload complete, serving model %s", status.Model.Version)
	}
}

func runAPI(deps *bootstrap.Dependencies) {
	app, stop := bootstrap.NewAPI(deps)
	defer stop()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down: %v", err)
			return
		}
		logger.Info("API server shut down gracefully")
	}()

	addr := ":" + deps.Config.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func runWorker(deps *bootstrap.Dependencies) {
	w := bootstrap.NewWorker(deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-sigChan
		logger.Info("Shutting down worker (timeout: %v)...", shutdownTimeout)

		go func() {
			w.Stop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(shutdownTimeout):
			logger.Warn("Worker shutdown timed out, forcing exit")
			os.Exit(1)
		}
	}()

	logger.Info("Starting worker...")
	if err := w.Start(); err != nil {
		logger.Fatal("Worker failed: %v", err)
	}
	<-done

	m := w.Metrics()
	logger.WithFields(map[string]any{
		"processed": m.JobsProcessed,
		"failed":    m.JobsFailed,
	}).Info("Worker shut down gracefully")
}
