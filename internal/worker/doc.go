// Package worker drives ingestion: a cron-scheduled sweep over the RSS
// source, a continuous poll of the streaming source, and the per-item
// pipeline both feed into (dedup, enrichment, persistence, broadcast).
// Failures are isolated per item; a panic in one pass is recovered and the
// schedule continues.
package worker
