package worker

import (
	"context"
	"log/slog"
	"time"

	"newswire/internal/feed"
)

// Runner executes one ingestion pass over a source: fetch the batch, then
// push each item through the pipeline. Item failures are logged and do not
// abort the pass; a panic anywhere in the pass is recovered so the schedule
// that invoked it keeps running.
type Runner struct {
	source   feed.Source
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewRunner binds a source to the pipeline.
func NewRunner(source feed.Source, pipeline *Pipeline, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{source: source, pipeline: pipeline, logger: logger}
}

// Run performs one pass.
func (r *Runner) Run(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("ingestion pass panicked", "source", r.source.Name(), "panic", rec)
		}
	}()

	start := time.Now()
	r.logger.Info("ingestion pass starting", "source", r.source.Name())

	items, err := r.source.Fetch(ctx)
	if err != nil {
		r.logger.Warn("fetch failed", "source", r.source.Name(), "error", err)
	}

	var processed, failed int
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		if err := r.pipeline.Process(ctx, item); err != nil {
			r.logger.Warn("item failed",
				"source", r.source.Name(),
				"link", item.Link,
				"error", err,
			)
			failed++
			continue
		}
		processed++
	}

	r.logger.Info("ingestion pass complete",
		"source", r.source.Name(),
		"items", len(items),
		"processed", processed,
		"failed", failed,
		"duration", time.Since(start),
	)
}
