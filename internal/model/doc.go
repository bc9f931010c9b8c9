// Package model defines shared data types used across the newswire pipeline.
//
// Conventions:
//   - Timestamps: time.Time in UTC
//   - Scores: float64 (sentiment/movement -10..10, certainty 0..10,
//     match scores 0..1 as reported by the lookup service)
//   - Nullable match fields: pointer types, nil when no match was found
package model
