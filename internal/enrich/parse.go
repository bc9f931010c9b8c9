package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newswire/internal/model"
)

// ErrInvalidResponse marks a completion reply that could not be validated.
// Callers skip the affected item rather than retrying or failing the run.
var ErrInvalidResponse = errors.New("enrich: invalid completion response")

// Observation is one entity-sentiment line extracted from an article.
type Observation struct {
	Type      string  `json:"type"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	OrgName   string  `json:"org_name"`
	Sentiment float64 `json:"sentiment"`
	Movement  float64 `json:"movement"`
	Certainty float64 `json:"indicator_certainty"`
}

var summaryRequired = []string{
	"one_sentence_summary",
	"two_sentence_summary",
	"topic_keywords",
	"impact_importance",
	"is_relevant",
}

var observationRequired = []string{
	"type",
	"name",
	"sentiment",
	"movement",
	"indicator_certainty",
}

// parseSummary validates and decodes the summary reply. Every required key
// must be present; anything less means the item is skipped.
func parseSummary(content string) (model.Summary, error) {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return model.Summary{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	for _, key := range summaryRequired {
		if _, ok := raw[key]; !ok {
			return model.Summary{}, fmt.Errorf("%w: missing %q", ErrInvalidResponse, key)
		}
	}

	var s model.Summary
	if err := json.Unmarshal([]byte(stripFences(content)), &s); err != nil {
		return model.Summary{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return s, nil
}

// parseObservations validates and decodes the sentiment reply. Entries with
// missing required fields are dropped individually; the rest survive.
func parseObservations(content string, logger *slog.Logger) ([]Observation, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	observations := make([]Observation, 0, len(raw))
entries:
	for i, entry := range raw {
		for _, key := range observationRequired {
			if _, ok := entry[key]; !ok {
				logger.Warn("dropping sentiment entry", "index", i, "missing", key)
				continue entries
			}
		}

		blob, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		var obs Observation
		if err := json.Unmarshal(blob, &obs); err != nil {
			logger.Warn("dropping sentiment entry", "index", i, "error", err)
			continue
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

// stripFences removes a markdown code fence wrapper if the model added one.
func stripFences(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
