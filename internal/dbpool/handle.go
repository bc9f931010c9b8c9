package dbpool

import (
	"context"
	"sync"
)

// HandleState tracks the liveness of a pooled connection.
type HandleState int

const (
	// StateClosed means no connection is currently open (initial state, and
	// the state after a broken connection is discarded).
	StateClosed HandleState = iota

	// StateOpen means the connection is believed live.
	StateOpen

	// StateBroken means the last statement failed at the connection level;
	// the connection must be discarded before the next attempt.
	StateBroken
)

// Handle is one pool-owned connection slot's connection plus its liveness
// state. A handle is used by at most one caller at a time; the pool enforces
// that, so Handle's own lock only guards reconnect bookkeeping.
type Handle struct {
	dial Dial

	mu    sync.Mutex
	conn  Conn
	state HandleState
}

func newHandle(dial Dial) *Handle {
	return &Handle{dial: dial, state: StateClosed}
}

// ensure returns a live connection, dialing a fresh one if the handle is
// closed or was marked broken.
func (h *Handle) ensure(ctx context.Context) (Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateBroken {
		if h.conn != nil {
			_ = h.conn.Close(ctx)
			h.conn = nil
		}
		h.state = StateClosed
	}

	if h.conn == nil {
		conn, err := h.dial(ctx)
		if err != nil {
			return nil, err
		}
		h.conn = conn
		h.state = StateOpen
	}

	return h.conn, nil
}

// markBroken discards the current connection so the next ensure re-dials.
func (h *Handle) markBroken(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn != nil {
		_ = h.conn.Close(ctx)
		h.conn = nil
	}
	h.state = StateClosed
}

// State returns the current liveness state.
func (h *Handle) State() HandleState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// close terminates the connection for good at pool shutdown.
func (h *Handle) close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var err error
	if h.conn != nil {
		err = h.conn.Close(ctx)
		h.conn = nil
	}
	h.state = StateClosed
	return err
}
