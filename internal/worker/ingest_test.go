package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"newswire/internal/broadcast"
	"newswire/internal/enrich"
	"newswire/internal/model"
)

// Full ingestion path: one stubbed item flows fetch → enrich → persist →
// broadcast, and an authenticated subscriber sees the item event followed by
// its sentiment event.
func TestIngestEndToEnd(t *testing.T) {
	const secret = "s3cret"

	bcfg := broadcast.DefaultConfig()
	bcfg.Addr = "127.0.0.1:0"
	bcfg.SharedSecret = secret
	bcfg.DrainInterval = 5 * time.Millisecond

	b := broadcast.New(bcfg, nil)
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("broadcaster Start failed: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		b.Stop(ctx)
	}()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+b.Addr().String()+"/", nil)
	if err != nil {
		t.Fatalf("dial broadcaster: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(secret)); err != nil {
		t.Fatalf("send secret: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for b.SubscriberCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(2 * time.Millisecond)
	}

	rec := newFakeRecorder()
	matchID := "1"
	matchName := "Bitcoin"
	matchScore := 0.92
	matcher := &fakeMatcher{
		primary: model.MatchResult{ID: &matchID, Name: &matchName, Score: &matchScore},
	}
	enricher := &fakeEnricher{
		summary:      model.Summary{OneSentence: "one", TwoSentence: "two", TopicKeywords: "btc", Impact: 5, IsRelevant: true},
		observations: []enrich.Observation{btcObservation()},
	}

	src := &staticSource{items: []model.WorkItem{{
		Source:      "X",
		Title:       "Headline",
		Link:        "http://a",
		Published:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Description: "d",
	}}}

	pipeline := NewPipeline(rec, enricher, matcher, b, nil)
	NewRunner(src, pipeline, nil).Run(context.Background())

	if len(rec.items) != 1 {
		t.Fatalf("got %d item rows, want 1", len(rec.items))
	}
	if len(rec.sentiments) != 1 {
		t.Fatalf("got %d sentiment rows, want 1", len(rec.sentiments))
	}
	if rec.sentiments[0].ItemID != rec.items[0].ID {
		t.Errorf("sentiment ItemID = %d, want %d", rec.sentiments[0].ItemID, rec.items[0].ID)
	}

	readFrame := func() (string, map[string]json.RawMessage) {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var evt struct {
			Type string                     `json:"type"`
			Data map[string]json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &evt); err != nil {
			t.Fatalf("decode frame %q: %v", data, err)
		}
		return evt.Type, evt.Data
	}

	typ, data := readFrame()
	if typ != model.EventTypeItem {
		t.Fatalf("first event type = %q, want item", typ)
	}
	var title string
	if err := json.Unmarshal(data["title"], &title); err != nil || title != "Headline" {
		t.Errorf("item event title = %q (%v)", title, err)
	}

	typ, data = readFrame()
	if typ != model.EventTypeSentiment {
		t.Fatalf("second event type = %q, want sentiment", typ)
	}
	var entity string
	if err := json.Unmarshal(data["entity_name"], &entity); err != nil || entity != "Bitcoin" {
		t.Errorf("sentiment event entity = %q (%v)", entity, err)
	}
	// The parent row id never appears on the sentiment wire payload.
	for _, key := range []string{"id", "item_id"} {
		if _, ok := data[key]; ok {
			t.Errorf("sentiment event carries %q", key)
		}
	}
}
