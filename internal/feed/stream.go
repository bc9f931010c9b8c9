package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"newswire/internal/model"
)

// StreamSource polls an upstream news API that serves recent posts as a JSON
// page. Unlike the RSS sweep it runs continuously with a short cooldown, so
// one Fetch maps to one GET of the posts endpoint.
type StreamSource struct {
	url        string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// StreamOption configures a StreamSource.
type StreamOption func(*StreamSource)

// WithStreamTimeout sets the HTTP client timeout.
func WithStreamTimeout(d time.Duration) StreamOption {
	return func(s *StreamSource) {
		s.httpClient.Timeout = d
	}
}

// WithStreamLogger sets the logger.
func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(s *StreamSource) {
		s.logger = logger
	}
}

// WithStreamHTTPClient sets a custom HTTP client.
func WithStreamHTTPClient(hc *http.Client) StreamOption {
	return func(s *StreamSource) {
		s.httpClient = hc
	}
}

// NewStreamSource creates a poll source for the given posts endpoint.
func NewStreamSource(url, authToken string, opts ...StreamOption) *StreamSource {
	s := &StreamSource{
		url:       url,
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the source in logs.
func (s *StreamSource) Name() string { return "stream" }

type postsResponse struct {
	Results []post `json:"results"`
}

type post struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Source      struct {
		Domain string `json:"domain"`
	} `json:"source"`
	Metadata *struct {
		Description string `json:"description"`
	} `json:"metadata"`
}

// Fetch performs one poll of the posts endpoint. Posts without a metadata
// description carry no usable article text and are skipped.
func (s *StreamSource) Fetch(ctx context.Context) ([]model.WorkItem, error) {
	url := s.url + "?metadata=true"
	if s.authToken != "" {
		url += "&auth_token=" + s.authToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("posts endpoint returned %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var page postsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	items := make([]model.WorkItem, 0, len(page.Results))
	for _, p := range page.Results {
		if p.Metadata == nil || p.Metadata.Description == "" {
			continue
		}

		published := time.Now().UTC()
		if ts, err := time.Parse(time.RFC3339, p.PublishedAt); err == nil {
			published = ts.UTC()
		} else {
			s.logger.Debug("unparsable published_at", "value", p.PublishedAt, "title", p.Title)
		}

		items = append(items, model.WorkItem{
			Source:      p.Source.Domain,
			Title:       p.Title,
			Link:        p.URL,
			Published:   published,
			Description: StripHTML(p.Metadata.Description),
		})
	}

	s.logger.Debug("stream fetched", "posts", len(page.Results), "usable", len(items))
	return items, nil
}
