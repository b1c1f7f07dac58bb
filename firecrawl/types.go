package firecrawl

import "encoding/json"

// ScrapeParams are the per-page options sent with both scrape and crawl
// requests. Durations are in milliseconds, matching the wire format.
type ScrapeParams struct {
	Formats         []string `json:"formats,omitempty"`
	OnlyMainContent *bool    `json:"onlyMainContent,omitempty"`
	WaitFor         *int     `json:"waitFor,omitempty"`
	Timeout         *int     `json:"timeout,omitempty"`
}

// CrawlParams bound a crawl: page and depth ceilings plus the link-following
// policy. ScrapeOptions apply to every page the crawl visits.
type CrawlParams struct {
	Limit              *int          `json:"limit,omitempty"`
	MaxDepth           *int          `json:"maxDepth,omitempty"`
	AllowSubdomains    *bool         `json:"allowSubdomains,omitempty"`
	AllowExternalLinks *bool         `json:"allowExternalLinks,omitempty"`
	ScrapeOptions      *ScrapeParams `json:"scrapeOptions,omitempty"`
}

// Document is one scraped page as returned by the service. Which payload
// fields are populated depends on the formats requested.
type Document struct {
	Markdown string            `json:"markdown,omitempty"`
	HTML     string            `json:"html,omitempty"`
	Text     string            `json:"text,omitempty"`
	Content  string            `json:"content,omitempty"`
	Links    []string          `json:"links,omitempty"`
	Metadata *DocumentMetadata `json:"metadata,omitempty"`
}

// DocumentMetadata carries the known core of the service's metadata object.
// Everything else the service sends lands in Extra, so callers never have
// to reach into raw JSON.
type DocumentMetadata struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Language    *string `json:"language,omitempty"`
	SourceURL   *string `json:"sourceURL,omitempty"`
	StatusCode  *int    `json:"statusCode,omitempty"`
	Error       *string `json:"error,omitempty"`

	// Extra holds any metadata keys outside the core schema.
	Extra map[string]any `json:"-"`
}

var coreMetadataKeys = []string{"title", "description", "language", "sourceURL", "statusCode", "error"}

func (m *DocumentMetadata) UnmarshalJSON(data []byte) error {
	type plain DocumentMetadata

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, key := range coreMetadataKeys {
		delete(raw, key)
	}

	if len(raw) > 0 {
		p.Extra = raw
	}

	*m = DocumentMetadata(p)
	return nil
}

type scrapeRequest struct {
	URL string `json:"url"`
	*ScrapeParams
}

type scrapeResponse struct {
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Data    *Document `json:"data,omitempty"`
}

type crawlRequest struct {
	URL string `json:"url"`
	*CrawlParams
}

type crawlSubmitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	ID      string `json:"id,omitempty"`
}

type crawlStatusResponse struct {
	Status    string      `json:"status"`
	Total     int         `json:"total,omitempty"`
	Completed int         `json:"completed,omitempty"`
	Error     string      `json:"error,omitempty"`
	Data      []*Document `json:"data,omitempty"`
}
