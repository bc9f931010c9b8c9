package feed

import (
	"context"

	"newswire/internal/model"
)

// Source yields a batch of candidate items per fetch. Implementations must
// tolerate partial upstream failure: a broken feed or a malformed entry is
// logged and skipped, never returned as a batch-level error unless the whole
// fetch produced nothing usable.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Fetch retrieves the current batch of candidate items.
	Fetch(ctx context.Context) ([]model.WorkItem, error)
}
