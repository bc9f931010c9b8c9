package store

import (
	"context"
	"fmt"
	"log/slog"

	"newswire/internal/dbpool"
	"newswire/internal/model"
)

// Store runs the persistence statements for the ingestion pipeline and the
// match refresh pass.
type Store struct {
	pool   *dbpool.Pool
	logger *slog.Logger
}

// New creates a Store over the given pool.
func New(pool *dbpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// ItemExists reports whether a row with the same link or the same title is
// already persisted. Title matching is deliberate: some upstreams rewrite
// article URLs to point at their own mirror, so the link alone can't dedup
// across sources.
func (s *Store) ItemExists(ctx context.Context, link, title string) (bool, error) {
	const stmt = `SELECT id FROM items WHERE link = :link OR title = :title`

	var exists bool
	err := s.pool.With(ctx, func(ex *dbpool.Executor) error {
		res, err := ex.Execute(ctx, stmt, map[string]any{"link": link, "title": title})
		if err != nil {
			return err
		}
		exists = len(res.Rows) > 0
		return nil
	})
	return exists, err
}

// InsertItem persists an enriched record and fills in its generated id.
func (s *Store) InsertItem(ctx context.Context, rec *model.EnrichedRecord) error {
	const stmt = `
		INSERT INTO items (
			title, link, published, summary, content, description, source,
			one_sentence_summary, two_sentence_summary, topic_keywords,
			impact_importance, is_relevant
		) VALUES (
			:title, :link, :published, :summary, :content, :description, :source,
			:one_sentence_summary, :two_sentence_summary, :topic_keywords,
			:impact_importance, :is_relevant
		) RETURNING id`

	params := map[string]any{
		"title":                rec.Title,
		"link":                 rec.Link,
		"published":            rec.Published,
		"summary":              rec.WorkItem.Summary,
		"content":              rec.Content,
		"description":          rec.Description,
		"source":               rec.Source,
		"one_sentence_summary": rec.OneSentence,
		"two_sentence_summary": rec.TwoSentence,
		"topic_keywords":       rec.TopicKeywords,
		"impact_importance":    rec.Impact,
		"is_relevant":          rec.IsRelevant,
	}

	return s.pool.With(ctx, func(ex *dbpool.Executor) error {
		res, err := ex.Execute(ctx, stmt, params)
		if err != nil {
			return err
		}
		id, err := scanID(res.Rows)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		rec.ID = id
		return nil
	})
}

// InsertSentiments persists a batch of sentiment entries in one statement.
// A nil or empty batch is a no-op.
func (s *Store) InsertSentiments(ctx context.Context, entries []model.SentimentEntry) error {
	if len(entries) == 0 {
		return nil
	}

	const stmt = `
		INSERT INTO sentiments (
			entity_type, entity_name, symbol, org_name,
			sentiment_score, movement_score, certainty, timestamp,
			match_id_a, match_name_a, match_score_a,
			match_id_b, match_score_b, item_id
		) VALUES (
			:entity_type, :entity_name, :symbol, :org_name,
			:sentiment_score, :movement_score, :certainty, :timestamp,
			:match_id_a, :match_name_a, :match_score_a,
			:match_id_b, :match_score_b, :item_id
		)`

	rows := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, map[string]any{
			"entity_type":     e.EntityType,
			"entity_name":     e.EntityName,
			"symbol":          e.Symbol,
			"org_name":        e.OrgName,
			"sentiment_score": e.SentimentScore,
			"movement_score":  e.MovementScore,
			"certainty":       e.Certainty,
			"timestamp":       e.Timestamp,
			"match_id_a":      e.Primary.ID,
			"match_name_a":    e.Primary.Name,
			"match_score_a":   e.Primary.Score,
			"match_id_b":      e.Secondary.ID,
			"match_score_b":   e.Secondary.Score,
			"item_id":         e.ItemID,
		})
	}

	return s.pool.With(ctx, func(ex *dbpool.Executor) error {
		_, err := ex.Execute(ctx, stmt, rows)
		return err
	})
}

// UnmatchedSentiment is one sentiment row awaiting an identity match.
type UnmatchedSentiment struct {
	ID         int64
	EntityName string
}

// UnmatchedSentiments returns rows whose primary match is still null, in id
// order starting after the given cursor, up to limit. Callers page with the
// cursor so rows the matcher still cannot resolve are not re-fetched forever.
func (s *Store) UnmatchedSentiments(ctx context.Context, after int64, limit int) ([]UnmatchedSentiment, error) {
	const stmt = `
		SELECT id, entity_name FROM sentiments
		WHERE match_id_a IS NULL AND id > :after
		ORDER BY id
		LIMIT :limit`

	var out []UnmatchedSentiment
	err := s.pool.With(ctx, func(ex *dbpool.Executor) error {
		res, err := ex.Execute(ctx, stmt, map[string]any{"after": after, "limit": limit})
		if err != nil {
			return err
		}
		for _, row := range res.Rows {
			if len(row) < 2 {
				return fmt.Errorf("unmatched sentiments: short row %v", row)
			}
			id, err := toInt64(row[0])
			if err != nil {
				return fmt.Errorf("unmatched sentiments: %w", err)
			}
			name, _ := row[1].(string)
			out = append(out, UnmatchedSentiment{ID: id, EntityName: name})
		}
		return nil
	})
	return out, err
}

// UpdateSentimentMatches writes freshly resolved match columns for one row.
func (s *Store) UpdateSentimentMatches(ctx context.Context, id int64, primary, secondary model.MatchResult) error {
	const stmt = `
		UPDATE sentiments SET
			match_id_a = :match_id_a,
			match_name_a = :match_name_a,
			match_score_a = :match_score_a,
			match_id_b = :match_id_b,
			match_score_b = :match_score_b
		WHERE id = :id`

	params := map[string]any{
		"id":            id,
		"match_id_a":    primary.ID,
		"match_name_a":  primary.Name,
		"match_score_a": primary.Score,
		"match_id_b":    secondary.ID,
		"match_score_b": secondary.Score,
	}

	return s.pool.With(ctx, func(ex *dbpool.Executor) error {
		res, err := ex.Execute(ctx, stmt, params)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			s.logger.Warn("match update touched no rows", "id", id)
		}
		return nil
	})
}

// scanID extracts the generated id from a RETURNING result.
func scanID(rows [][]any) (int64, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, fmt.Errorf("no id returned")
	}
	return toInt64(rows[0][0])
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected id type %T", v)
	}
}
