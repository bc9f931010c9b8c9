package broadcast

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"newswire/internal/model"
)

const testSecret = "s3cret"

func startBroadcaster(t *testing.T) *Broadcaster {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.SharedSecret = testSecret
	cfg.DrainInterval = 5 * time.Millisecond
	cfg.HandshakeTimeout = time.Second
	cfg.WriteTimeout = time.Second

	b := New(cfg, nil)
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		b.Stop(ctx)
	})
	return b
}

func dial(t *testing.T, b *Broadcaster, secret string) *websocket.Conn {
	t.Helper()

	url := "ws://" + b.Addr().String() + "/"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := conn.WriteMessage(websocket.TextMessage, []byte(secret)); err != nil {
		t.Fatalf("send secret: %v", err)
	}
	return conn
}

func waitSubscribers(t *testing.T, b *Broadcaster, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for b.SubscriberCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("SubscriberCount() = %d, want %d", b.SubscriberCount(), want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) model.BroadcastEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var evt model.BroadcastEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("decode event %q: %v", data, err)
	}
	return evt
}

func TestBroadcaster_RejectsBadSecret(t *testing.T) {
	b := startBroadcaster(t)

	conn := dial(t, b, "wrong-secret")

	// The server closes without a further message; the next read fails.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected connection to be closed after failed auth")
	}
	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("SubscriberCount() = %d, want 0", got)
	}
}

func TestBroadcaster_FanOutPreservesOrder(t *testing.T) {
	b := startBroadcaster(t)

	sub1 := dial(t, b, testSecret)
	sub2 := dial(t, b, testSecret)
	waitSubscribers(t, b, 2)

	b.Publish(model.BroadcastEvent{Type: model.EventTypeItem, Data: map[string]any{"id": 1}})
	b.Publish(model.BroadcastEvent{Type: model.EventTypeSentiment, Data: map[string]any{"entity_name": "BTC"}})

	for _, conn := range []*websocket.Conn{sub1, sub2} {
		first := readEvent(t, conn)
		second := readEvent(t, conn)
		if first.Type != model.EventTypeItem || second.Type != model.EventTypeSentiment {
			t.Errorf("event order = %q, %q; want item, sentiment", first.Type, second.Type)
		}
	}
}

func TestBroadcaster_NoBacklogReplay(t *testing.T) {
	b := startBroadcaster(t)

	// Published with nobody connected: drained and discarded, no block.
	for i := 0; i < 10; i++ {
		b.Publish(model.BroadcastEvent{Type: model.EventTypeItem, Data: i})
	}

	// Wait for the drain loop to discard the backlog.
	deadline := time.Now().Add(2 * time.Second)
	for b.queue.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("queue never drained")
		}
		time.Sleep(2 * time.Millisecond)
	}

	conn := dial(t, b, testSecret)
	waitSubscribers(t, b, 1)

	b.Publish(model.BroadcastEvent{Type: model.EventTypeSentiment, Data: "fresh"})

	evt := readEvent(t, conn)
	if evt.Type != model.EventTypeSentiment {
		t.Errorf("received replayed event %q, want only the fresh sentiment", evt.Type)
	}
}

func TestBroadcaster_DeadSubscriberDoesNotAffectOthers(t *testing.T) {
	b := startBroadcaster(t)

	dead := dial(t, b, testSecret)
	live := dial(t, b, testSecret)
	waitSubscribers(t, b, 2)

	dead.Close()

	// The event still reaches the live subscriber.
	b.Publish(model.BroadcastEvent{Type: model.EventTypeItem, Data: "after-close"})
	evt := readEvent(t, live)
	if evt.Type != model.EventTypeItem {
		t.Errorf("Type = %q, want item", evt.Type)
	}

	waitSubscribers(t, b, 1)
}

func TestBroadcaster_StopClosesSubscribers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.SharedSecret = testSecret
	cfg.DrainInterval = 5 * time.Millisecond

	b := New(cfg, nil)
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	conn := dial(t, b, testSecret)
	waitSubscribers(t, b, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected subscriber connection to be closed on Stop")
	}
}
