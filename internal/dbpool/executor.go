package dbpool

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Result holds the outcome of one executed statement: fetched rows when the
// statement produced a row-bearing cursor, otherwise the affected-row count.
type Result struct {
	Rows         [][]any
	RowsAffected int64
}

// ExecOption adjusts a single Execute call.
type ExecOption func(*execOptions)

type execOptions struct {
	forceCommit bool
}

// ForceCommit treats the statement as a write even when its leading keyword
// parses as a read. Use it for mixed statements (e.g. WITH ... INSERT) whose
// shape the keyword check cannot detect.
func ForceCommit() ExecOption {
	return func(o *execOptions) { o.forceCommit = true }
}

// Executor runs parameterized statements on one pooled handle, retrying
// transient connection failures indefinitely. State machine per statement:
//
//	connected → retrying(cooldown) → connected
//
// Non-transient errors propagate immediately with no retry.
type Executor struct {
	h        *Handle
	cooldown time.Duration
	logger   *slog.Logger
}

func newExecutor(h *Handle, cooldown time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{h: h, cooldown: cooldown, logger: logger}
}

// NewExecutor binds an executor to a handle directly. Most callers should go
// through Pool.With instead; this exists for the pool itself and for tests.
func NewExecutor(h *Handle, cooldown time.Duration, logger *slog.Logger) *Executor {
	return newExecutor(h, cooldown, logger)
}

// Execute binds params into stmt and runs it. On a transient failure it rolls
// back (best-effort), discards the broken connection, waits out the cooldown,
// reconnects and re-runs the same call from the top. Statement-level errors of
// any other kind, and bind errors, are returned as-is.
func (e *Executor) Execute(ctx context.Context, stmt string, params any, opts ...ExecOption) (Result, error) {
	var o execOptions
	for _, opt := range opts {
		opt(&o)
	}

	sql, args, err := bind(stmt, params)
	if err != nil {
		return Result{}, err
	}

	rowBearing := bearsRows(stmt, o.forceCommit)

	for {
		conn, err := e.h.ensure(ctx)
		if err == nil {
			var res Result
			if rowBearing {
				res.Rows, err = conn.Query(ctx, sql, args...)
			} else {
				res.RowsAffected, err = conn.Exec(ctx, sql, args...)
			}
			if err == nil {
				return res, nil
			}
			if !Transient(err) {
				return Result{}, err
			}
			e.logger.Error("statement failed on connection error, will retry",
				"error", err,
				"cooldown", e.cooldown,
			)
			e.rollback(ctx, conn)
			e.h.markBroken(ctx)
		} else {
			if !Transient(err) {
				return Result{}, err
			}
			e.logger.Error("reconnect failed, will retry",
				"error", err,
				"cooldown", e.cooldown,
			)
		}

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(e.cooldown):
		}
	}
}

// rollback clears any open transaction state before the connection is
// discarded. Failure is logged, never escalated.
func (e *Executor) rollback(ctx context.Context, conn Conn) {
	if _, err := conn.Exec(ctx, "ROLLBACK"); err != nil {
		e.logger.Warn("rollback failed", "error", err)
	}
}

// bearsRows reports whether the statement produces a row-bearing cursor: a
// read by leading keyword (unless forceCommit overrides), or any statement
// with a RETURNING clause.
func bearsRows(stmt string, forceCommit bool) bool {
	upper := strings.ToUpper(stmt)
	if strings.Contains(upper, "RETURNING") {
		return true
	}
	if forceCommit {
		return false
	}

	lead := strings.TrimLeft(upper, " \t\r\n(")
	for _, kw := range []string{"SELECT", "WITH", "SHOW", "VALUES", "TABLE"} {
		if strings.HasPrefix(lead, kw) {
			return true
		}
	}
	return false
}
