package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iconidentify/tubegrab/internal/api"
	"github.com/iconidentify/tubegrab/internal/api/handler"
	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/downloader"
	"github.com/iconidentify/tubegrab/internal/repository"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/internal/worker"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tubegrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting tubegrab",
		"version", Version,
		"build_time", BuildTime,
		"source", cfg.Source.Backend,
		"jobs_backend", cfg.Jobs.Backend,
	)

	if err := os.MkdirAll(cfg.Storage.DownloadPath, 0755); err != nil {
		logger.Error("failed to create download directory", "error", err)
		os.Exit(1)
	}

	ctx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	// Initialize dependencies
	jobRepo, closeRepo, err := newJobRepository(ctx, cfg.Jobs)
	if err != nil {
		logger.Error("failed to open job store", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	go repository.StartJanitor(ctx, jobRepo, cfg.Jobs.JanitorInterval, cfg.Jobs.Retention, logger)

	source := downloader.NewRetryingSource(
		newSource(cfg.Source, logger),
		downloader.RetryConfig{
			MaxAttempts:   cfg.Source.MaxRetries,
			InitialDelay:  cfg.Source.RetryDelay,
			MaxDelay:      30 * time.Second,
			BackoffFactor: 2.0,
		},
		logger,
	)

	// Initialize worker pool
	pool := worker.NewPool(
		worker.Config{
			Workers:         cfg.Worker.Count,
			DownloadDir:     cfg.Storage.DownloadPath,
			DownloadTimeout: cfg.Source.DownloadTimeout,
		},
		jobRepo,
		source,
		logger,
	)
	pool.Start()

	// Initialize services
	videoSvc := service.NewVideoService(source, service.VideoConfig{
		FetchConcurrency: cfg.Source.FetchConcurrency,
		FetchTimeout:     cfg.Source.FetchTimeout,
	}, logger)
	downloadSvc := service.NewDownloadService(jobRepo, pool, logger)

	// Setup router
	router := api.NewRouter(
		handler.NewVideoHandler(videoSvc, logger),
		handler.NewDownloadHandler(downloadSvc, logger),
		handler.NewHealthHandler(jobRepo, pool, cfg.Storage.DownloadPath),
		api.RouterConfig{
			Version:            Version,
			APIKey:             cfg.Server.APIKey,
			CORSOrigins:        cfg.Server.CORSOrigins,
			DownloadRateLimit:  cfg.RateLimit.DownloadRequests,
			DownloadRateWindow: cfg.RateLimit.Window,
		},
		logger,
	)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		exitCode = 1
	}

	cancelBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight downloads to complete)
	if err := pool.Stop(cfg.Worker.ShutdownTimeout); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	if exitCode != 0 {
		closeRepo()
		os.Exit(exitCode)
	}
}

func newJobRepository(ctx context.Context, cfg config.JobsConfig) (repository.JobRepository, func(), error) {
	switch cfg.Backend {
	case config.JobsBackendSQLite:
		repo, err := repository.NewSQLiteJobRepository(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { repo.Close() }, nil
	default:
		return repository.NewInMemoryJobRepository(), func() {}, nil
	}
}

func newSource(cfg config.SourceConfig, logger *slog.Logger) downloader.Source {
	switch cfg.Backend {
	case config.SourceBackendYTDLP:
		return downloader.NewYTDLPSource(cfg.YTDLPBinary, logger)
	default:
		return downloader.NewYouTubeSource(nil, logger)
	}
}
