// Package fantlab is a rate-limited client for the Fantlab bibliographic API.
package fantlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mailib/mailib-server/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public Fantlab API.
	DefaultBaseURL = "https://api.fantlab.ru"

	defaultRPS     = 5.0
	defaultBurst   = 5
	defaultTimeout = 10 * time.Second

	// All outbound calls share one bucket.
	limiterKey = "fantlab"

	userAgent = "mailib/1.0"
)

// Config configures a Client. Zero values select the defaults.
type Config struct {
	BaseURL string
	RPS     float64
	Burst   int
	Timeout time.Duration
}

// Client is a rate-limited Fantlab API client. It never retries.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new Fantlab client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RPS <= 0 {
		cfg.RPS = defaultRPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: ratelimit.New(cfg.RPS, cfg.Burst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// FetchWork returns the extended payload of a work.
func (c *Client) FetchWork(ctx context.Context, id string) (*Work, error) {
	var work Work
	if err := c.getJSON(ctx, "work", id, "/work/"+url.PathEscape(id)+"/extended", nil, &work); err != nil {
		return nil, err
	}
	return &work, nil
}

// FetchEdition returns the extended payload of an edition.
func (c *Client) FetchEdition(ctx context.Context, id string) (*Edition, error) {
	var edition Edition
	if err := c.getJSON(ctx, "edition", id, "/edition/"+url.PathEscape(id)+"/extended", nil, &edition); err != nil {
		return nil, err
	}
	return &edition, nil
}

// SearchWorks runs a free-text work search.
func (c *Client) SearchWorks(ctx context.Context, q string) ([]WorkHit, error) {
	var hits []WorkHit
	if err := c.getJSON(ctx, "searchWorks", q, "/search-works", searchQuery(q), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

// SearchEditions runs a free-text edition search.
func (c *Client) SearchEditions(ctx context.Context, q string) ([]EditionHit, error) {
	var hits []EditionHit
	if err := c.getJSON(ctx, "searchEditions", q, "/search-editions", searchQuery(q), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

func searchQuery(q string) url.Values {
	return url.Values{
		"onlymatches": {"1"},
		"q":           {q},
	}
}

// getJSON performs a GET and decodes the body into out.
// 404 maps to ErrNotFound, everything else that fails maps to ErrUpstream.
func (c *Client) getJSON(ctx context.Context, op, target, path string, query url.Values, out any) error {
	body, status, err := c.doRequest(ctx, path, query)
	if err != nil {
		if ctx.Err() != nil {
			return wrapError(op, target, 0, ctx.Err())
		}
		return wrapError(op, target, 0, fmt.Errorf("%w: %w", ErrUpstream, err))
	}

	switch {
	case status == http.StatusNotFound:
		return wrapError(op, target, status, ErrNotFound)
	case status < 200 || status > 299:
		return wrapError(op, target, status, ErrUpstream)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return wrapError(op, target, status, fmt.Errorf("%w: decode: %w", ErrUpstream, err))
	}
	return nil
}

// doRequest executes an HTTP request with rate limiting.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("fantlab request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
