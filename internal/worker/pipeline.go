package worker

import (
	"context"
	"fmt"
	"log/slog"

	"newswire/internal/model"
)

// Pipeline carries one work item from fetched to persisted and broadcast.
// Order matters: the parent item row is inserted and announced before any of
// its sentiment rows, so subscribers always see the item first.
type Pipeline struct {
	recorder  Recorder
	enricher  Enricher
	matcher   Matcher
	publisher Publisher
	logger    *slog.Logger
}

// NewPipeline wires the pipeline's collaborators.
func NewPipeline(recorder Recorder, enricher Enricher, matcher Matcher, publisher Publisher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		recorder:  recorder,
		enricher:  enricher,
		matcher:   matcher,
		publisher: publisher,
		logger:    logger,
	}
}

// Process handles one item end to end. A duplicate is a silent no-op. An
// enrichment failure skips the item entirely; nothing is persisted. Failures
// past the item insert leave the item row in place and are reported, so a
// sentiment-stage error never takes back an already-announced item.
func (p *Pipeline) Process(ctx context.Context, item model.WorkItem) error {
	exists, err := p.recorder.ItemExists(ctx, item.Link, item.Title)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		return nil
	}

	article := item.ArticleText()

	summary, err := p.enricher.Summarize(ctx, article)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	observations, err := p.enricher.Sentiments(ctx, article)
	if err != nil {
		return fmt.Errorf("extract sentiments: %w", err)
	}

	rec := model.EnrichedRecord{WorkItem: item, Summary: summary}
	if err := p.recorder.InsertItem(ctx, &rec); err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	p.publisher.Publish(model.ItemEvent(rec))

	if len(observations) == 0 {
		return nil
	}

	entries := make([]model.SentimentEntry, 0, len(observations))
	for _, obs := range observations {
		entries = append(entries, model.SentimentEntry{
			ItemID:         rec.ID,
			EntityType:     obs.Type,
			EntityName:     obs.Name,
			Symbol:         obs.Symbol,
			OrgName:        obs.OrgName,
			SentimentScore: obs.Sentiment,
			MovementScore:  obs.Movement,
			Certainty:      obs.Certainty,
			Timestamp:      item.Published,
			Primary:        p.matcher.Primary(ctx, obs.Name),
			Secondary:      p.matcher.Secondary(ctx, obs.Name),
		})
	}

	if err := p.recorder.InsertSentiments(ctx, entries); err != nil {
		return fmt.Errorf("insert sentiments for item %d: %w", rec.ID, err)
	}
	for _, entry := range entries {
		p.publisher.Publish(model.SentimentEvent(entry))
	}

	return nil
}
