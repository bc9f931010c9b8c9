package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestWorkItem_ArticleText(t *testing.T) {
	item := WorkItem{
		Source:      "https://example.com/feed",
		Title:       "Headline",
		Summary:     "A summary",
		Description: "A description",
		Content:     "Full text",
		Published:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	text := item.ArticleText()

	for _, want := range []string{"Published:", "Headline", "A summary", "A description", "Full text"} {
		if !strings.Contains(text, want) {
			t.Errorf("ArticleText() missing %q:\n%s", want, text)
		}
	}
}

func TestWorkItem_ArticleTextSparse(t *testing.T) {
	item := WorkItem{Title: "Headline", Description: "desc"}

	if got := item.ArticleText(); got != "Headline\ndesc" {
		t.Errorf("ArticleText() = %q, want %q", got, "Headline\ndesc")
	}
}

func TestSentimentEvent_OmitsItemID(t *testing.T) {
	entry := SentimentEntry{
		ItemID:         42,
		EntityType:     "coin",
		EntityName:     "BTC",
		SentimentScore: 7,
	}

	data, err := json.Marshal(SentimentEvent(entry))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "item_id") {
		t.Errorf("sentiment event payload leaked item_id: %s", data)
	}
	if !strings.Contains(string(data), `"type":"sentiment"`) {
		t.Errorf("missing type field: %s", data)
	}
}

func TestItemEvent_Fields(t *testing.T) {
	rec := EnrichedRecord{
		ID: 7,
		WorkItem: WorkItem{
			Title: "X",
			Link:  "http://a",
		},
		Summary: Summary{
			OneSentence: "one",
			Impact:      5,
			IsRelevant:  true,
		},
	}

	data, err := json.Marshal(ItemEvent(rec))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded struct {
		Type string `json:"type"`
		Data struct {
			ID          int64  `json:"id"`
			Title       string `json:"title"`
			OneSentence string `json:"one_sentence_summary"`
			IsRelevant  bool   `json:"is_relevant"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded.Type != EventTypeItem {
		t.Errorf("Type = %q, want %q", decoded.Type, EventTypeItem)
	}
	if decoded.Data.ID != 7 || decoded.Data.Title != "X" || decoded.Data.OneSentence != "one" || !decoded.Data.IsRelevant {
		t.Errorf("unexpected payload: %+v", decoded.Data)
	}
}

func TestMatchResult_Null(t *testing.T) {
	if !(MatchResult{}).Null() {
		t.Error("zero MatchResult should be null")
	}
	id := "bitcoin"
	if (MatchResult{ID: &id}).Null() {
		t.Error("MatchResult with ID should not be null")
	}
}
