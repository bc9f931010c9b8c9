package dbpool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrClosed is returned by Acquire after Close has been called.
var ErrClosed = errors.New("dbpool: pool is closed")

// Config holds pool construction settings.
type Config struct {
	// Size is the fixed number of slots. Exhaustion blocks callers.
	Size int

	// Dial opens connections; handles re-dial through it after failures.
	Dial Dial

	// AcquireInterval is the poll backoff while waiting for a free slot.
	AcquireInterval time.Duration

	// RetryCooldown is the executor's wait between transient-failure retries.
	RetryCooldown time.Duration
}

// DefaultConfig returns sensible defaults (dial must still be provided).
func DefaultConfig() Config {
	return Config{
		Size:            4,
		AcquireInterval: 100 * time.Millisecond,
		RetryCooldown:   5 * time.Second,
	}
}

type slot struct {
	handle *Handle
	inUse  bool
}

// Pool is a fixed set of connection slots. The slot table is the only
// structure needing mutual exclusion: acquisition scans and marks under one
// lock, and the lock is never held across a statement execution.
type Pool struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.Mutex
	slots  []slot
	closed bool
}

// New creates a pool with cfg.Size empty slots. Connections are dialed
// lazily on first use of each slot.
func New(cfg Config, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Size < 1 {
		cfg.Size = 1
	}
	if cfg.AcquireInterval == 0 {
		cfg.AcquireInterval = 100 * time.Millisecond
	}
	if cfg.RetryCooldown == 0 {
		cfg.RetryCooldown = 5 * time.Second
	}

	slots := make([]slot, cfg.Size)
	for i := range slots {
		slots[i] = slot{handle: newHandle(cfg.Dial)}
	}

	return &Pool{
		cfg:    cfg,
		logger: logger,
		slots:  slots,
	}
}

// Acquire blocks until a slot is free, marks it in-use and returns its
// handle. Returns ctx.Err() on cancellation and ErrClosed after Close.
func (p *Pool) Acquire(ctx context.Context) (*Handle, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}
		for i := range p.slots {
			if !p.slots[i].inUse {
				p.slots[i].inUse = true
				h := p.slots[i].handle
				p.mu.Unlock()
				return h, nil
			}
		}
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.cfg.AcquireInterval):
		}
	}
}

// Release clears the in-use flag for the slot owning the handle. Releasing a
// handle the pool does not own is a no-op.
func (p *Pool) Release(h *Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.slots {
		if p.slots[i].handle == h {
			p.slots[i].inUse = false
			return
		}
	}
}

// With acquires a handle, runs fn with an executor bound to it, and releases
// the handle on every exit path.
func (p *Pool) With(ctx context.Context, fn func(*Executor) error) error {
	h, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(h)

	return fn(newExecutor(h, p.cfg.RetryCooldown, p.logger))
}

// Close terminates every underlying connection. No new acquisitions are
// permitted afterwards; callers are expected to have stopped already.
func (p *Pool) Close(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	handles := make([]*Handle, 0, len(p.slots))
	for i := range p.slots {
		handles = append(handles, p.slots[i].handle)
	}
	p.mu.Unlock()

	for _, h := range handles {
		if err := h.close(ctx); err != nil {
			p.logger.Warn("closing pooled connection", "error", err)
		}
	}
	p.logger.Info("connection pool closed", "slots", len(handles))
}

// Stats reports pool occupancy.
type Stats struct {
	Size  int
	InUse int
}

// Stats returns a point-in-time occupancy snapshot.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{Size: len(p.slots)}
	for i := range p.slots {
		if p.slots[i].inUse {
			s.InUse++
		}
	}
	return s
}
