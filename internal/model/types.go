package model

import "time"

// -----------------------------------------------------------------------------
// Ingestion Types
// -----------------------------------------------------------------------------

// WorkItem is a freshly fetched, not-yet-enriched candidate news record.
// It is immutable once produced by a source.
type WorkItem struct {
	Source      string    // Feed URL or upstream source domain
	Title       string    // Headline
	Link        string    // Canonical article URL
	Published   time.Time // Publication time as reported upstream
	Summary     string    // Upstream-provided summary (may be empty)
	Content     string    // Full text with markup stripped (may be empty)
	Description string    // Upstream description with markup stripped
}

// ArticleText assembles the text handed to the enrichment service.
func (w WorkItem) ArticleText() string {
	text := w.Title
	if w.Summary != "" {
		text += "\n" + w.Summary
	}
	if w.Description != "" {
		text += "\n" + w.Description
	}
	if w.Content != "" {
		text += "\n" + w.Content
	}
	if !w.Published.IsZero() {
		text = "Published: " + w.Published.Format(time.RFC1123) + "\n" + text
	}
	return text
}

// Summary holds the enrichment service's summary output for one item.
type Summary struct {
	OneSentence   string `json:"one_sentence_summary"`
	TwoSentence   string `json:"two_sentence_summary"`
	TopicKeywords string `json:"topic_keywords"`
	Impact        int    `json:"impact_importance"`
	IsRelevant    bool   `json:"is_relevant"`
}

// EnrichedRecord is a WorkItem plus its summary fields, as persisted.
// Never mutated after insertion except by the matching-refresh pass
// (which touches sentiment rows only).
type EnrichedRecord struct {
	ID int64 // Generated by the database; zero until inserted

	WorkItem
	Summary
}

// -----------------------------------------------------------------------------
// Sentiment Types
// -----------------------------------------------------------------------------

// MatchResult is one external-identifier lookup outcome. A failed or empty
// lookup is represented by zero-value pointers, never by an error that stops
// the insert pipeline.
type MatchResult struct {
	ID    *string
	Name  *string
	Score *float64
}

// Null reports whether the lookup produced no usable match.
func (m MatchResult) Null() bool {
	return m.ID == nil
}

// SentimentEntry is one extracted entity-sentiment observation tied to an
// EnrichedRecord. Created only after the parent row's generated id is known.
type SentimentEntry struct {
	ID     int64
	ItemID int64 // Foreign key to the parent item row

	EntityType string // e.g. "defi token", "coin", "chain", "exchange"
	EntityName string
	Symbol     string
	OrgName    string

	SentimentScore float64
	MovementScore  float64
	Certainty      float64
	Timestamp      time.Time // Parent item's published time

	Primary   MatchResult // Primary registry match (match_id_a columns)
	Secondary MatchResult // Secondary registry match (match_id_b columns)
}

// -----------------------------------------------------------------------------
// Broadcast Types
// -----------------------------------------------------------------------------

// Broadcast event types, as seen on the wire.
const (
	EventTypeItem      = "item"
	EventTypeSentiment = "sentiment"
)

// BroadcastEvent is a transient fan-out payload describing a just-persisted
// record. It lives only in the broadcaster's queue and on the wire.
type BroadcastEvent struct {
	Type string `json:"type"` // "item" or "sentiment"
	Data any    `json:"data"`
}

// ItemEvent builds the "item" event for a persisted record.
func ItemEvent(rec EnrichedRecord) BroadcastEvent {
	return BroadcastEvent{
		Type: EventTypeItem,
		Data: itemEventData{
			ID:            rec.ID,
			Source:        rec.Source,
			Title:         rec.Title,
			Link:          rec.Link,
			Published:     rec.Published,
			Description:   rec.Description,
			OneSentence:   rec.OneSentence,
			TwoSentence:   rec.TwoSentence,
			TopicKeywords: rec.TopicKeywords,
			Impact:        rec.Impact,
			IsRelevant:    rec.IsRelevant,
		},
	}
}

// SentimentEvent builds the "sentiment" event for a persisted entry. The
// parent item id is deliberately not part of the wire payload.
func SentimentEvent(s SentimentEntry) BroadcastEvent {
	return BroadcastEvent{
		Type: EventTypeSentiment,
		Data: sentimentEventData{
			EntityType:     s.EntityType,
			EntityName:     s.EntityName,
			Symbol:         s.Symbol,
			OrgName:        s.OrgName,
			SentimentScore: s.SentimentScore,
			MovementScore:  s.MovementScore,
			Certainty:      s.Certainty,
			Timestamp:      s.Timestamp,
			MatchIDA:       s.Primary.ID,
			MatchNameA:     s.Primary.Name,
			MatchScoreA:    s.Primary.Score,
			MatchIDB:       s.Secondary.ID,
			MatchScoreB:    s.Secondary.Score,
		},
	}
}

type itemEventData struct {
	ID            int64     `json:"id"`
	Source        string    `json:"source"`
	Title         string    `json:"title"`
	Link          string    `json:"link"`
	Published     time.Time `json:"published"`
	Description   string    `json:"description"`
	OneSentence   string    `json:"one_sentence_summary"`
	TwoSentence   string    `json:"two_sentence_summary"`
	TopicKeywords string    `json:"topic_keywords"`
	Impact        int       `json:"impact_importance"`
	IsRelevant    bool      `json:"is_relevant"`
}

type sentimentEventData struct {
	EntityType     string    `json:"entity_type"`
	EntityName     string    `json:"entity_name"`
	Symbol         string    `json:"symbol"`
	OrgName        string    `json:"org_name"`
	SentimentScore float64   `json:"sentiment_score"`
	MovementScore  float64   `json:"movement_score"`
	Certainty      float64   `json:"certainty"`
	Timestamp      time.Time `json:"timestamp"`
	MatchIDA       *string   `json:"match_id_a"`
	MatchNameA     *string   `json:"match_name_a"`
	MatchScoreA    *float64  `json:"match_score_a"`
	MatchIDB       *string   `json:"match_id_b"`
	MatchScoreB    *float64  `json:"match_score_b"`
}
