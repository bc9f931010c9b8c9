package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds scheduler timing.
type Config struct {
	SweepInterval  time.Duration // Periodic sweep cadence (default: 10m)
	StreamCooldown time.Duration // Pause between continuous poll passes (default: 60s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SweepInterval:  10 * time.Minute,
		StreamCooldown: 60 * time.Second,
	}
}

// Scheduler owns the two ingestion workers: the cron-driven sweep and the
// continuous poll loop. Either runner may be nil, in which case that worker
// is not started.
type Scheduler struct {
	cfg    Config
	sweep  *Runner
	stream *Runner
	logger *slog.Logger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler over the given runners.
func New(cfg Config, sweep, stream *Runner, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultConfig().SweepInterval
	}
	if cfg.StreamCooldown <= 0 {
		cfg.StreamCooldown = DefaultConfig().StreamCooldown
	}
	return &Scheduler{
		cfg:    cfg,
		sweep:  sweep,
		stream: stream,
		logger: logger,
	}
}

// Start launches the workers. The sweep runs once immediately, then on its
// cron cadence; overlapping sweep runs are skipped rather than stacked.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	if s.sweep != nil {
		clog := cronLogger{s.logger}
		s.cron = cron.New(cron.WithChain(
			cron.SkipIfStillRunning(clog),
			cron.Recover(clog),
		))
		spec := fmt.Sprintf("@every %s", s.cfg.SweepInterval)
		if _, err := s.cron.AddFunc(spec, func() { s.sweep.Run(s.ctx) }); err != nil {
			return fmt.Errorf("schedule sweep: %w", err)
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sweep.Run(s.ctx)
		}()
		s.cron.Start()
	}

	if s.stream != nil {
		s.wg.Add(1)
		go s.streamLoop()
	}

	s.logger.Info("ingestion scheduler started",
		"sweep_interval", s.cfg.SweepInterval,
		"stream_cooldown", s.cfg.StreamCooldown,
	)
	return nil
}

// Stop halts the workers, waiting for in-flight passes up to ctx's deadline.
// Workers that do not stop in time are abandoned and logged.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	if s.cron != nil {
		cronDone := s.cron.Stop()
		select {
		case <-cronDone.Done():
		case <-ctx.Done():
			s.logger.Warn("sweep worker did not stop in time, abandoning")
			return ctx.Err()
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("ingestion scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("ingestion workers did not stop in time, abandoning")
		return ctx.Err()
	}
}

// streamLoop runs continuous poll passes with a cooldown between them.
func (s *Scheduler) streamLoop() {
	defer s.wg.Done()

	for {
		if s.ctx.Err() != nil {
			return
		}
		s.stream.Run(s.ctx)

		if !InterruptibleSleep(s.ctx, s.cfg.StreamCooldown) {
			return
		}
	}
}

// InterruptibleSleep waits for d, returning early with false when ctx is
// cancelled.
func InterruptibleSleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// cronLogger adapts slog to the cron logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{"error", err}, keysAndValues...)
	l.logger.Error(msg, args...)
}
