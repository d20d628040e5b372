// Package catalog provides a REST client for The Cat API image catalog.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/raphaelgruber/catgallery/internal/metrics"
)

const (
	// DefaultBaseURL is the public Cat API endpoint.
	DefaultBaseURL = "https://api.thecatapi.com/v1"

	// DefaultPageSize is the number of images requested per page.
	DefaultPageSize = 9

	// maxErrorBody caps how much of an error response is kept for messages.
	maxErrorBody = 512

	// slowRequestThreshold is the duration above which requests are logged at WARN level.
	slowRequestThreshold = 2 * time.Second
)

// Config configures a Client.
type Config struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Timeout  time.Duration
}

// Client talks to the image catalog over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	httpClient *http.Client
	metrics    *metrics.Collector
	logger     *slog.Logger
}

// New creates a catalog client. Zero values in cfg fall back to defaults.
// collector and logger may be nil.
func New(cfg Config, collector *metrics.Collector, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		pageSize: cfg.PageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: collector,
		logger:  logger,
	}
}

// PageSize returns the number of items requested per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

// SearchPage fetches one page of images, optionally narrowed to a breed.
// An empty result is not an error.
func (c *Client) SearchPage(ctx context.Context, breedID string, page int) (items []Item, err error) {
	done := c.metrics.Track(metrics.OpSearchPage)
	defer func() { done(err) }()

	if page < 0 {
		return nil, fmt.Errorf("search page: negative page %d", page)
	}

	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("order", "ASC")
	q.Set("has_breeds", "1")
	if breedID != "" {
		q.Set("breed_ids", breedID)
	}

	body, err := c.get(ctx, "search page", "/images/search", q)
	if err != nil {
		return nil, err
	}

	if err := decodeValidated("search page", listSchema, body, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		c.logger.Warn("catalog returned an empty page", "breed", breedID, "page", page)
	}
	return items, nil
}

// FetchDetail fetches one image with its full breed information.
// Returns an error wrapping ErrNotFound when the id is unknown.
func (c *Client) FetchDetail(ctx context.Context, id string) (item Item, err error) {
	done := c.metrics.Track(metrics.OpFetchDetail)
	defer func() { done(err) }()

	if id == "" {
		return Item{}, fmt.Errorf("fetch detail: empty id: %w", ErrNotFound)
	}

	body, err := c.get(ctx, "fetch detail", "/images/"+url.PathEscape(id), nil)
	if err != nil {
		return Item{}, err
	}

	if err := decodeValidated("fetch detail", imageSchema, body, &item); err != nil {
		return Item{}, err
	}
	return item, nil
}

// ListCategories returns every breed known to the catalog.
func (c *Client) ListCategories(ctx context.Context) (breeds []Breed, err error) {
	done := c.metrics.Track(metrics.OpListCategories)
	defer func() { done(err) }()

	body, err := c.get(ctx, "list categories", "/breeds", nil)
	if err != nil {
		return nil, err
	}

	if err := decodeValidated("list categories", listSchema, body, &breeds); err != nil {
		return nil, err
	}
	return breeds, nil
}

// get performs a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	duration := time.Since(start)
	attrs := []any{
		"op", op,
		"url", endpoint,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", duration.Milliseconds(),
	}
	if duration > slowRequestThreshold {
		c.logger.Warn("slow catalog request", attrs...)
	} else {
		c.logger.Debug("catalog request", attrs...)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       msg,
		}
	}

	return body, nil
}
