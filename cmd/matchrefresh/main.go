package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newswire/internal/config"
	"newswire/internal/dbpool"
	"newswire/internal/match"
	"newswire/internal/store"
	"newswire/internal/version"
)

// matchrefresh re-resolves identity matches for sentiment rows the matcher
// left null at ingestion time (outages, unknown names that have since been
// listed). One bounded pass, then exit.
func main() {
	configPath := flag.String("config", "configs/ingester.local.yaml", "path to config file")
	batchSize := flag.Int("batch", 500, "rows fetched per batch")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting match refresh",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

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
	matcher := match.NewClient(
		cfg.Matcher.PrimaryURL,
		cfg.Matcher.SecondaryURL,
		cfg.Matcher.APIKey,
		match.WithLogger(logger),
		match.WithTimeout(cfg.Matcher.Timeout),
	)

	var resolved, still int
	var after int64
	for {
		rows, err := st.UnmatchedSentiments(ctx, after, *batchSize)
		if err != nil {
			logger.Error("failed to fetch unmatched rows", "error", err)
			os.Exit(1)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if ctx.Err() != nil {
				logger.Info("interrupted", "resolved", resolved, "unresolved", still)
				return
			}
			after = row.ID

			primary := matcher.Primary(ctx, row.EntityName)
			secondary := matcher.Secondary(ctx, row.EntityName)
			if primary.Null() && secondary.Null() {
				still++
				continue
			}

			if err := st.UpdateSentimentMatches(ctx, row.ID, primary, secondary); err != nil {
				logger.Warn("failed to update row", "id", row.ID, "error", err)
				continue
			}
			resolved++
			logger.Info("row resolved",
				"id", row.ID,
				"entity", row.EntityName,
				"primary_null", primary.Null(),
				"secondary_null", secondary.Null(),
			)
		}
	}

	logger.Info("match refresh complete", "resolved", resolved, "unresolved", still)
}
