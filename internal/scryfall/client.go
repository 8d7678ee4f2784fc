// Package scryfall is a rate-limited client for the Scryfall card API.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultUserAgent = "CommanderForge/1.0"

	defaultRequestDelay = 100 * time.Millisecond // 10 req/sec
	defaultTimeout      = 30 * time.Second
	defaultMaxPages     = 5
	maxRetries          = 3
	initialBackoff      = 1 * time.Second
	maxBackoff          = 16 * time.Second
)

// RequestObserver is notified after every HTTP attempt.
type RequestObserver interface {
	ObserveRequest(endpoint string, status int, duration time.Duration)
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL      string
	RequestDelay time.Duration
	Timeout      time.Duration
	UserAgent    string

	// MaxPages bounds how many result pages SearchAll follows.
	MaxPages int

	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client

	Observer RequestObserver
}

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	maxPages    int
	observer    RequestObserver

	// initialBackoff is shortened in tests.
	initialBackoff time.Duration
}

// NewClient creates a new Scryfall API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestDelay <= 0 {
		opts.RequestDelay = defaultRequestDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     httpClient,
		rateLimiter:    rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
		userAgent:      opts.UserAgent,
		maxPages:       opts.MaxPages,
		observer:       opts.Observer,
		initialBackoff: initialBackoff,
	}
}

// GetCardByName retrieves a card by exact name, optionally from a specific set.
func (c *Client) GetCardByName(ctx context.Context, name, setCode string) (*Card, error) {
	params := url.Values{}
	params.Set("exact", name)
	if setCode != "" {
		params.Set("set", strings.ToLower(setCode))
	}
	endpoint := fmt.Sprintf("%s/cards/named?%s", c.baseURL, params.Encode())

	var card Card
	if err := c.doRequest(ctx, "named", endpoint, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	return &card, nil
}

// SearchCards performs a full-text search and returns the first page of results.
func (c *Client) SearchCards(ctx context.Context, query string) (*SearchResult, error) {
	endpoint := fmt.Sprintf("%s/cards/search?q=%s", c.baseURL, url.QueryEscape(query))

	var result SearchResult
	if err := c.doRequest(ctx, "search", endpoint, &result); err != nil {
		return nil, fmt.Errorf("failed to search cards with query '%s': %w", query, err)
	}

	return &result, nil
}

// SearchAll follows result pages up to the configured page limit.
// A query with no matches returns an empty slice, not an error.
func (c *Client) SearchAll(ctx context.Context, query string) ([]Card, error) {
	result, err := c.SearchCards(ctx, query)
	if err != nil {
		if IsNotFound(err) {
			return []Card{}, nil
		}
		return nil, err
	}

	cards := result.Data
	next := result.NextPage
	for page := 1; result.HasMore && next != "" && page < c.maxPages; page++ {
		var more SearchResult
		if err := c.doRequest(ctx, "search", next, &more); err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of '%s': %w", page+1, query, err)
		}
		cards = append(cards, more.Data...)
		result = &more
		next = more.NextPage
	}

	return cards, nil
}

// doRequest performs an HTTP GET with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, name, endpoint string, result any) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		retry, err := c.attempt(ctx, name, endpoint, result)
		if err == nil {
			return nil
		}
		lastErr = err
		if retry.after < 0 || attempt == maxRetries {
			return err
		}

		wait := backoff
		if retry.after > 0 {
			wait = retry.after
		}
		if err := sleepContext(ctx, wait); err != nil {
			return err
		}
		backoff = min(backoff*2, maxBackoff)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// retryHint tells doRequest whether and how long to wait before retrying.
// after < 0 means the error is final; 0 means use the backoff schedule.
type retryHint struct {
	after time.Duration
}

var noRetry = retryHint{after: -1}

func (c *Client) attempt(ctx context.Context, name, endpoint string, result any) (retryHint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return noRetry, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(name, 0, time.Since(start))
		if ctx.Err() != nil {
			return noRetry, fmt.Errorf("HTTP request failed: %w", err)
		}
		return retryHint{}, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	c.observe(name, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return noRetry, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return noRetry, nil

	case http.StatusTooManyRequests:
		hint := retryHint{}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			hint.after = time.Duration(secs) * time.Second
		}
		return hint, fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return noRetry, &NotFoundError{URL: endpoint}

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			if apiErr.Status == 0 {
				apiErr.Status = resp.StatusCode
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return retryHint{}, &apiErr
			}
			return noRetry, &apiErr
		}

		err := fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= http.StatusInternalServerError {
			return retryHint{}, err
		}
		return noRetry, err
	}
}

func (c *Client) observe(name string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(name, status, d)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsNotFound returns true if the error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
