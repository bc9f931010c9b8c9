// Package enrich talks to an OpenAI-compatible chat-completions service to
// produce summary and entity-sentiment data for fetched articles. Responses
// are strictly validated: an unparsable or incomplete answer means the item
// (or the individual sentiment entry) is skipped, never guessed at.
package enrich
