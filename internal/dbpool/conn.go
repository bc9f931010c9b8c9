package dbpool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"newswire/internal/config"
)

// Conn is the narrow connection surface the pool manages. Production uses a
// pgx-backed implementation; tests inject scripted fakes.
type Conn interface {
	// Exec runs a statement that returns no rows and reports the affected count.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// Query runs a row-bearing statement and returns all fetched rows.
	Query(ctx context.Context, sql string, args ...any) ([][]any, error)

	// Close terminates the underlying connection.
	Close(ctx context.Context) error
}

// Dial opens a new connection. The executor re-dials through this after
// discarding a broken connection.
type Dial func(ctx context.Context) (Conn, error)

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DBConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// PgxDialer returns a Dial that opens single pgx connections.
func PgxDialer(connString string) Dial {
	return func(ctx context.Context) (Conn, error) {
		conn, err := pgx.Connect(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return &pgxConn{conn: conn}, nil
	}
}

// pgxConn adapts *pgx.Conn to the Conn interface.
type pgxConn struct {
	conn *pgx.Conn
}

func (c *pgxConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := c.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgxConn) Query(ctx context.Context, sql string, args ...any) ([][]any, error) {
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

func (c *pgxConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// Transient reports whether an error is a connection-level failure expected
// to clear on reconnect. Errors implementing `Transient() bool` override the
// classification (injectable failure source for tests).
func Transient(err error) bool {
	if err == nil {
		return false
	}

	var marker interface{ Transient() bool }
	if errors.As(err, &marker) {
		return marker.Transient()
	}

	// Covers network failures and deadline expiry (statement timeouts).
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exceptions. 57P01-57P03: server shutdown/crash.
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P")
	}

	return false
}
