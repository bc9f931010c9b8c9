// Package dbpool implements a fixed-size pool of PostgreSQL connections and a
// resilient statement executor on top of it.
//
// The pool owns every connection. Callers acquire a handle for exactly one
// logical operation and must release it on every exit path; Pool.With is the
// scoped form that guarantees this. Pool exhaustion blocks the caller (short
// polling backoff) rather than failing.
//
// The executor retries indefinitely on transient connection-level failures:
// best-effort rollback, discard the broken connection, cool down, reconnect,
// re-run the statement. Any other failure propagates immediately. The pipeline
// is a background batch process, so trading latency for availability here is
// deliberate.
package dbpool
