package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"newswire/internal/model"
)

// Client calls an OpenAI-compatible chat-completions endpoint. All requests
// pass through a shared rate limiter, so callers may invoke it from several
// workers without coordinating.
type Client struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter

	maxAttempts  int
	retryBackoff time.Duration
	maxChars     int
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

// WithRateLimit caps outgoing completion requests per minute.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// WithMaxAttempts sets how many times one completion is attempted before
// giving up.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithRetryBackoff sets the initial delay between attempts.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.retryBackoff = d
	}
}

// WithMaxChars caps the article text length before it is placed into a
// prompt. Longer articles are truncated.
func WithMaxChars(n int) Option {
	return func(c *Client) {
		c.maxChars = n
	}
}

// NewClient creates an enrichment client for the given completions endpoint.
func NewClient(endpoint, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:       slog.Default(),
		limiter:      rate.NewLimiter(rate.Inf, 1),
		maxAttempts:  5,
		retryBackoff: 10 * time.Second,
		maxChars:     24000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Summarize produces the summary fields for one article. A response the
// service cannot be made to give in the expected shape surfaces as
// ErrInvalidResponse, which callers treat as "skip this item".
func (c *Client) Summarize(ctx context.Context, article string) (model.Summary, error) {
	content, err := c.complete(ctx, renderPrompt(summaryPrompt, c.trim(article)))
	if err != nil {
		return model.Summary{}, err
	}
	return parseSummary(content)
}

// Sentiments extracts the entity-sentiment observations for one article.
// Individually malformed entries are dropped; an empty list is a valid
// answer meaning the article carried no entity sentiment.
func (c *Client) Sentiments(ctx context.Context, article string) ([]Observation, error) {
	content, err := c.complete(ctx, renderPrompt(sentimentPrompt, c.trim(article)))
	if err != nil {
		return nil, err
	}
	return parseObservations(content, c.logger)
}

func (c *Client) trim(article string) string {
	if c.maxChars <= 0 || len(article) <= c.maxChars {
		return article
	}
	runes := []rune(article)
	if len(runes) <= c.maxChars {
		return article
	}
	return string(runes[:c.maxChars])
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// complete sends one prompt and returns the assistant's reply text, retrying
// transport and server errors up to maxAttempts times.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			// Add jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying completion", "attempt", attempt, "backoff", jitter)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(jitter):
			}
			backoff *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		content, err := c.doCompletion(ctx, prompt)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err
		c.logger.Warn("completion attempt failed", "attempt", attempt+1, "error", err)
	}

	return "", fmt.Errorf("max attempts exceeded: %w", lastErr)
}

func (c *Client) doCompletion(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   800,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("completions endpoint returned %d: %s", resp.StatusCode, truncateForLog(body))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if chat.Error != nil {
		return "", fmt.Errorf("completions error: %s", chat.Error.Message)
	}
	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("completions response has no choices")
	}
	return chat.Choices[0].Message.Content, nil
}

func truncateForLog(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
