package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newswire/internal/broadcast"
	"newswire/internal/config"
	"newswire/internal/dbpool"
	"newswire/internal/enrich"
	"newswire/internal/feed"
	"newswire/internal/match"
	"newswire/internal/store"
	"newswire/internal/version"
	"newswire/internal/worker"
)

func main() {
	configPath := flag.String("config", "configs/ingester.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingester",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"feeds", len(cfg.Feeds.URLs),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connection pool; connections are dialed lazily on first acquire
	logger.Info("creating connection pool",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
		"size", cfg.Database.PoolSize,
	)
	pool := dbpool.New(dbpool.Config{
		Size: cfg.Database.PoolSize,
		Dial: dbpool.PgxDialer(dbpool.BuildConnString(cfg.Database)),
	}, logger)
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		pool.Close(closeCtx)
	}()

	st := store.New(pool, logger)

	// Broadcast server
	broadcaster := broadcast.New(broadcast.Config{
		Addr:             cfg.Server.Addr,
		SharedSecret:     cfg.Server.SharedSecret,
		HandshakeTimeout: cfg.Server.HandshakeTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		DrainInterval:    cfg.Server.DrainInterval,
	}, logger)
	if err := broadcaster.Start(ctx); err != nil {
		logger.Error("failed to start broadcaster", "error", err)
		os.Exit(1)
	}
	logger.Info("broadcast server listening", "addr", cfg.Server.Addr)

	// Collaborators
	enricher := enrich.NewClient(
		cfg.Enrichment.Endpoint,
		cfg.Enrichment.APIKey,
		cfg.Enrichment.Model,
		enrich.WithLogger(logger),
		enrich.WithTimeout(cfg.Enrichment.Timeout),
		enrich.WithMaxAttempts(cfg.Enrichment.MaxAttempts),
		enrich.WithRateLimit(cfg.Enrichment.RatePerMin),
		enrich.WithMaxChars(cfg.Enrichment.MaxChars),
	)
	matcher := match.NewClient(
		cfg.Matcher.PrimaryURL,
		cfg.Matcher.SecondaryURL,
		cfg.Matcher.APIKey,
		match.WithLogger(logger),
		match.WithTimeout(cfg.Matcher.Timeout),
	)
	pipeline := worker.NewPipeline(st, enricher, matcher, broadcaster, logger)

	var sweep, stream *worker.Runner
	if len(cfg.Feeds.URLs) > 0 {
		src := feed.NewRSSSource(cfg.Feeds.URLs,
			feed.WithRSSLogger(logger),
			feed.WithRSSTimeout(cfg.Feeds.RequestTimeout),
		)
		sweep = worker.NewRunner(src, pipeline, logger)
	}
	if cfg.Stream.URL != "" {
		src := feed.NewStreamSource(cfg.Stream.URL, cfg.Stream.AuthToken,
			feed.WithStreamLogger(logger),
			feed.WithStreamTimeout(cfg.Stream.RequestTimeout),
		)
		stream = worker.NewRunner(src, pipeline, logger)
	}

	scheduler := worker.New(worker.Config{
		SweepInterval:  cfg.Feeds.SweepInterval,
		StreamCooldown: cfg.Stream.Cooldown,
	}, sweep, stream, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(pool, broadcaster),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("ingester running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Shutdown.JoinTimeout)
	defer shutdownCancel()

	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("scheduler shutdown incomplete", "error", err)
	}
	if err := broadcaster.Stop(shutdownCtx); err != nil {
		logger.Warn("broadcaster shutdown incomplete", "error", err)
	}
	healthServer.Shutdown(shutdownCtx)

	logger.Info("ingester stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *dbpool.Pool, broadcaster *broadcast.Broadcaster) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := pool.Stats()
		queue := broadcaster.QueueStats()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status: "healthy",
			Components: map[string]any{
				"pool": map[string]any{
					"size":   stats.Size,
					"in_use": stats.InUse,
				},
				"broadcast": map[string]any{
					"subscribers":  broadcaster.SubscriberCount(),
					"queue_len":    queue.Len,
					"total_pushed": queue.TotalPushed,
					"total_popped": queue.TotalPopped,
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
