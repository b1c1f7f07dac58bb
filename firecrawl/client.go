// Package firecrawl is a typed HTTP client for the Firecrawl scraping API.
// It covers the two operations this SDK consumes: single-URL scrape and
// bounded crawl. All fetching, rendering and markdown conversion happens on
// the service side; this client only moves JSON.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/anisirji/llm-web-extractor/log"
	"github.com/anisirji/llm-web-extractor/util"
)

const (
	// DefaultAPIURL is the hosted Firecrawl endpoint.
	DefaultAPIURL = "https://api.firecrawl.dev"
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second
	// DefaultPollInterval is the delay between crawl status checks.
	DefaultPollInterval = 2 * time.Second

	// maxBodySize caps response body reads at 50MiB.
	maxBodySize = 50 * util.MiB

	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Client talks to the Firecrawl API. It is safe for concurrent use.
type Client struct {
	log zerolog.Logger

	apiKey       string
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, e.g. for a self-hosted instance.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout overrides the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.Timeout = timeout }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger replaces the client's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// WithPollInterval overrides the delay between crawl status checks.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) { c.pollInterval = interval }
}

// NewClient returns a Client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("firecrawl API key is required")
	}

	c := &Client{
		log:          log.NewLogger("firecrawl"),
		apiKey:       apiKey,
		baseURL:      DefaultAPIURL,
		http:         &http.Client{Timeout: DefaultTimeout},
		pollInterval: DefaultPollInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Scrape extracts a single URL and returns its document. A service-side
// failure (auth, rate limit, unreachable page) is returned as an error
// carrying the service's message.
func (c *Client) Scrape(ctx context.Context, url string, params *ScrapeParams) (*Document, error) {
	body, err := c.post(ctx, "/v1/scrape", scrapeRequest{URL: url, ScrapeParams: params})
	if err != nil {
		return nil, err
	}

	var resp scrapeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "failed to decode scrape response")
	}

	if !resp.Success || resp.Data == nil {
		return nil, errors.Errorf("scrape was not successful: %s", serviceError(resp.Error))
	}

	return resp.Data, nil
}

// Crawl starts a crawl at the given seed URL and polls until the job
// completes, returning every page document the service collected. The
// context bounds the whole wait, not just individual requests.
func (c *Client) Crawl(ctx context.Context, url string, params *CrawlParams) ([]*Document, error) {
	body, err := c.post(ctx, "/v1/crawl", crawlRequest{URL: url, CrawlParams: params})
	if err != nil {
		return nil, err
	}

	var submit crawlSubmitResponse
	if err := json.Unmarshal(body, &submit); err != nil {
		return nil, errors.Wrap(err, "failed to decode crawl response")
	}

	if !submit.Success || submit.ID == "" {
		return nil, errors.Errorf("crawl was not accepted: %s", serviceError(submit.Error))
	}

	c.log.Debug().Str("jobID", submit.ID).Str("url", url).Msg("Crawl accepted, polling for completion")

	return c.waitForCrawl(ctx, submit.ID)
}

func (c *Client) waitForCrawl(ctx context.Context, jobID string) ([]*Document, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "crawl wait canceled")
		case <-time.After(c.pollInterval):
		}

		body, err := c.get(ctx, "/v1/crawl/"+jobID)
		if err != nil {
			return nil, err
		}

		var status crawlStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return nil, errors.Wrap(err, "failed to decode crawl status")
		}

		switch status.Status {
		case statusCompleted:
			return status.Data, nil
		case statusFailed:
			return nil, errors.Errorf("crawl failed: %s", serviceError(status.Error))
		default:
			c.log.Debug().
				Str("jobID", jobID).
				Str("status", status.Status).
				Int("completed", status.Completed).
				Int("total", status.Total).
				Msg("Crawl in progress")
		}
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request to %s failed", req.URL.Path)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	c.log.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Str("size", util.FormatBytes(int64(len(body)))).
		Msg("API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("API error (status %d): %s", resp.StatusCode, serviceError(extractError(body)))
	}

	return body, nil
}

// extractError pulls the error message out of an API error body.
func extractError(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	return payload.Error
}

func serviceError(msg string) string {
	if msg == "" {
		return "no error message provided"
	}

	return fmt.Sprintf("%q", msg)
}
