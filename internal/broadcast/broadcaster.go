package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"newswire/internal/model"
)

// Config holds broadcaster settings.
type Config struct {
	// Addr is the websocket listen address (e.g. ":8765").
	Addr string

	// SharedSecret must match the first frame a subscriber sends.
	SharedSecret string

	// HandshakeTimeout bounds the wait for the auth frame.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each outbound frame; a timed-out subscriber is dropped.
	WriteTimeout time.Duration

	// DrainInterval is the idle sleep between drain polls.
	DrainInterval time.Duration

	// QueueCapacity is the outbound queue's initial capacity.
	QueueCapacity int
}

// DefaultConfig returns sensible defaults (the shared secret must still be set).
func DefaultConfig() Config {
	return Config{
		Addr:             ":8765",
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		DrainInterval:    100 * time.Millisecond,
		QueueCapacity:    256,
	}
}

// Broadcaster owns the subscriber set and the outbound event queue: it runs
// the websocket listener and the queue-draining fan-out loop.
type Broadcaster struct {
	cfg    Config
	logger *slog.Logger

	queue *Queue
	reg   *registry

	server   *http.Server
	listener net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Broadcaster.
func New(cfg Config, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if cfg.DrainInterval == 0 {
		cfg.DrainInterval = 100 * time.Millisecond
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 256
	}

	return &Broadcaster{
		cfg:    cfg,
		logger: logger,
		queue:  NewQueue(cfg.QueueCapacity),
		reg:    newRegistry(),
	}
}

// Start opens the listener and begins the drain loop.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	ln, err := net.Listen("tcp", b.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", b.cfg.Addr, err)
	}
	b.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/", b.handleSubscriber)
	b.server = &http.Server{Handler: mux}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := b.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			b.logger.Error("broadcast server error", "error", err)
		}
	}()

	b.wg.Add(1)
	go b.drainLoop()

	b.logger.Info("broadcast server started", "addr", ln.Addr().String())
	return nil
}

// Stop cancels the drain loop, force-closes the listener and every
// subscriber connection, and waits (bounded by ctx) for goroutine exit.
func (b *Broadcaster) Stop(ctx context.Context) error {
	b.logger.Info("stopping broadcaster")

	if b.cancel != nil {
		b.cancel()
	}
	b.queue.Close()

	if b.server != nil {
		// Close rather than Shutdown: subscriber handlers block on reads
		// and only exit when their connection dies.
		b.server.Close()
	}
	for _, s := range b.reg.snapshot() {
		if b.reg.remove(s.id) {
			s.conn.Close()
		}
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("broadcaster stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("broadcaster stop timed out")
		return ctx.Err()
	}
}

// Publish enqueues an event for fan-out. Never blocks; events published
// with no subscribers connected are drained and discarded.
func (b *Broadcaster) Publish(evt model.BroadcastEvent) {
	if !b.queue.Push(evt) {
		b.logger.Warn("publish after broadcaster close", "type", evt.Type)
	}
}

// SubscriberCount returns the number of authenticated subscribers.
func (b *Broadcaster) SubscriberCount() int {
	return b.reg.len()
}

// QueueStats exposes queue counters for the health endpoint.
func (b *Broadcaster) QueueStats() QueueStats {
	return b.queue.Stats()
}

// Addr returns the bound listen address (useful with ":0").
func (b *Broadcaster) Addr() net.Addr {
	if b.listener == nil {
		return nil
	}
	return b.listener.Addr()
}

// drainLoop dequeues events and fans each one out to a snapshot of the
// current subscribers. Delivery order is preserved per subscriber; a failed
// send drops only that subscriber.
func (b *Broadcaster) drainLoop() {
	defer b.wg.Done()

	for {
		select {
		case <-b.ctx.Done():
			return
		default:
		}

		events := b.queue.Drain(0)
		if len(events) == 0 {
			select {
			case <-b.ctx.Done():
				return
			case <-time.After(b.cfg.DrainInterval):
			}
			continue
		}

		for _, evt := range events {
			data, err := json.Marshal(evt)
			if err != nil {
				b.logger.Error("marshal broadcast event", "type", evt.Type, "error", err)
				continue
			}

			for _, sub := range b.reg.snapshot() {
				if err := sub.send(data, b.cfg.WriteTimeout); err != nil {
					if b.reg.remove(sub.id) {
						sub.conn.Close()
						b.logger.Info("dropping subscriber on send failure",
							"subscriber", sub.id,
							"error", err,
						)
					}
				}
			}
		}
	}
}
