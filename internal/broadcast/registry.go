package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// subscriber is one authenticated live connection. The write mutex
// serializes frames; the drain loop and control frames share the conn.
type subscriber struct {
	id   uuid.UUID
	conn *websocket.Conn

	writeMu sync.Mutex
}

// send writes one prepared frame with a deadline.
func (s *subscriber) send(data []byte, timeout time.Duration) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(timeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// registry is the concurrency-safe subscriber set. Fan-out iterates a
// point-in-time snapshot so connect/disconnect never races the drain loop.
type registry struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*subscriber
}

func newRegistry() *registry {
	return &registry{subs: make(map[uuid.UUID]*subscriber)}
}

func (r *registry) add(s *subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[s.id] = s
}

// remove deletes the subscriber and reports whether it was still present,
// so disconnect paths racing a failed send close the conn exactly once.
func (r *registry) remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; !ok {
		return false
	}
	delete(r.subs, id)
	return true
}

func (r *registry) snapshot() []*subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*subscriber, 0, len(r.subs))
	for _, s := range r.subs {
		out = append(out, s)
	}
	return out
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
