// Package feed provides the ingestion sources that produce candidate work
// items: a periodic RSS sweep across a configured feed list, and a continuous
// poll of an upstream news API. Sources only fetch and normalize; dedup,
// enrichment and persistence happen downstream.
package feed
