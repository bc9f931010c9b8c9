package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"newswire/internal/model"
)

// Result rows come back as positional arrays. The score always leads; the
// identifier and display name sit at endpoint-specific offsets.
const (
	primaryScoreIndex = 0
	primaryNameIndex  = 1
	primaryIDIndex    = 7

	secondaryScoreIndex = 0
	secondaryIDIndex    = 1
)

// Client queries the fuzzy-search lookup service. It exposes one lookup per
// registry: the primary registry carries id, name and score; the secondary
// carries id and score only.
type Client struct {
	primaryURL   string
	secondaryURL string
	apiKey       string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a lookup client for the given registry endpoints.
func NewClient(primaryURL, secondaryURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		primaryURL:   primaryURL,
		secondaryURL: secondaryURL,
		apiKey:       apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Primary resolves a name against the primary registry.
func (c *Client) Primary(ctx context.Context, name string) model.MatchResult {
	return c.lookup(ctx, c.primaryURL, name, primaryIDIndex, primaryNameIndex, primaryScoreIndex)
}

// Secondary resolves a name against the secondary registry. The secondary
// result rows carry no display name.
func (c *Client) Secondary(ctx context.Context, name string) model.MatchResult {
	return c.lookup(ctx, c.secondaryURL, name, secondaryIDIndex, -1, secondaryScoreIndex)
}

type searchResponse struct {
	Data struct {
		Results [][]any `json:"results"`
	} `json:"data"`
}

func (c *Client) lookup(ctx context.Context, endpoint, name string, idIdx, nameIdx, scoreIdx int) model.MatchResult {
	row, err := c.bestMatch(ctx, endpoint, name)
	if err != nil {
		c.logger.Debug("match lookup failed", "name", name, "endpoint", endpoint, "error", err)
		return model.MatchResult{}
	}
	if row == nil {
		return model.MatchResult{}
	}

	id, ok := stringAt(row, idIdx)
	if !ok {
		c.logger.Debug("match row missing id", "name", name, "endpoint", endpoint)
		return model.MatchResult{}
	}

	result := model.MatchResult{ID: &id}
	if nameIdx >= 0 {
		if n, ok := stringAt(row, nameIdx); ok {
			result.Name = &n
		}
	}
	if score, ok := floatAt(row, scoreIdx); ok {
		result.Score = &score
	}
	return result
}

// bestMatch returns the top-ranked result row, or nil when the search found
// nothing.
func (c *Client) bestMatch(ctx context.Context, endpoint, name string) ([]any, error) {
	query := url.Values{}
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	query.Set("searchterms", name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("lookup returned %d", resp.StatusCode)
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(search.Data.Results) == 0 {
		return nil, nil
	}
	return search.Data.Results[0], nil
}

// stringAt reads a row cell as a string. Registry identifiers arrive as
// either strings or numbers depending on the endpoint.
func stringAt(row []any, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	switch v := row[idx].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func floatAt(row []any, idx int) (float64, bool) {
	if idx < 0 || idx >= len(row) {
		return 0, false
	}
	v, ok := row[idx].(float64)
	return v, ok
}
