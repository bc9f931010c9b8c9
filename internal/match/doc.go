// Package match resolves extracted entity names against external asset
// registries through a fuzzy-search lookup service. Lookups are best effort:
// a transport failure, a bad response or an empty result set all produce a
// null match, never an error that stops the caller's insert.
package match
