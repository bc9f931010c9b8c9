// Package store persists items and their sentiment entries. It is a thin
// statement layer over the connection pool's executor: every call borrows a
// pooled connection for exactly one statement and releases it before
// returning.
package store
