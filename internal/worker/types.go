package worker

import (
	"context"

	"newswire/internal/enrich"
	"newswire/internal/model"
)

// Enricher produces summary and sentiment data for an article.
type Enricher interface {
	Summarize(ctx context.Context, article string) (model.Summary, error)
	Sentiments(ctx context.Context, article string) ([]enrich.Observation, error)
}

// Matcher resolves an entity name against the external registries. Lookups
// never fail; an unresolvable name yields a null result.
type Matcher interface {
	Primary(ctx context.Context, name string) model.MatchResult
	Secondary(ctx context.Context, name string) model.MatchResult
}

// Recorder persists pipeline output.
type Recorder interface {
	ItemExists(ctx context.Context, link, title string) (bool, error)
	InsertItem(ctx context.Context, rec *model.EnrichedRecord) error
	InsertSentiments(ctx context.Context, entries []model.SentimentEntry) error
}

// Publisher fans persisted records out to subscribers.
type Publisher interface {
	Publish(evt model.BroadcastEvent)
}
