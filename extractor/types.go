package extractor

import (
	"time"
)

// Format selects which payload the scraping service should produce.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

const (
	// MaxCrawlPages is the hard ceiling on pages per crawl. Requests above
	// it are clamped, not rejected; see CrawlOptions.EffectiveLimit.
	MaxCrawlPages = 100

	// DefaultMaxPages is used when CrawlOptions.MaxPages is unset.
	DefaultMaxPages = 10

	// DefaultTimeout bounds each collaborator request.
	DefaultTimeout = 30 * time.Second
)

// Config is the read-only construction-time configuration of an Extractor.
type Config struct {
	// APIKey authenticates against the scraping service. Required.
	APIKey string
	// BaseURL overrides the service endpoint. Optional.
	BaseURL string
	// Timeout bounds each request to the service. Defaults to
	// DefaultTimeout.
	Timeout time.Duration
	// Debug enables debug-level logging.
	Debug bool
}

// PageOptions control a single-page extraction.
type PageOptions struct {
	// Format of the returned content. Defaults to FormatMarkdown.
	Format Format
	// OnlyMainContent asks the service to drop navigation, footers and
	// other boilerplate.
	OnlyMainContent bool
	// WaitFor delays extraction to let client-side rendering settle.
	WaitFor time.Duration
	// TitlePrefix is prepended to every page title, e.g. a site label.
	TitlePrefix string
}

// DefaultPageOptions returns the options used when none are given:
// markdown output, main content only.
func DefaultPageOptions() *PageOptions {
	return &PageOptions{
		Format:          FormatMarkdown,
		OnlyMainContent: true,
	}
}

// CrawlOptions control a bounded multi-page crawl. The embedded PageOptions
// apply to every visited page.
type CrawlOptions struct {
	PageOptions

	// MaxPages caps how many pages the crawl may return. Values above
	// MaxCrawlPages are clamped; zero means DefaultMaxPages.
	MaxPages int
	// MaxDepth caps the link depth from the seed URL. Zero leaves the
	// service default in place.
	MaxDepth int
	// IncludeSubdomains lets the crawl follow links to subdomains of the
	// seed's domain.
	IncludeSubdomains bool
	// FollowExternalLinks lets the crawl leave the seed's domain entirely.
	FollowExternalLinks bool
	// IncludePatterns keeps only URLs matching at least one pattern.
	IncludePatterns []string
	// ExcludePatterns drops URLs matching any pattern. Exclusion wins over
	// inclusion.
	ExcludePatterns []string
}

// EffectiveLimit returns the page ceiling the crawl will actually use after
// defaulting and clamping, so callers can detect a clamped request.
func (o *CrawlOptions) EffectiveLimit() int {
	if o.MaxPages <= 0 {
		return DefaultMaxPages
	}

	if o.MaxPages > MaxCrawlPages {
		return MaxCrawlPages
	}

	return o.MaxPages
}

// Page is one successfully extracted URL. Immutable after creation.
type Page struct {
	// Title of the page, possibly prefixed via PageOptions.TitlePrefix.
	Title string
	// Content in the requested format, already cleaned.
	Content string
	// URL is the canonical form of the page's source URL.
	URL string
	// Metadata derived from the content and the service response.
	Metadata PageMetadata
}

// PageMetadata carries the derived and service-supplied details of a Page.
type PageMetadata struct {
	ScrapedAt   time.Time
	SourceURL   string
	Description string
	WordCount   int
	// Language is a two-letter code guessed from the content, empty when
	// undetected.
	Language   string
	StatusCode int
	// Extra holds service metadata outside the core schema.
	Extra map[string]any
}

// Failure records one URL that could not be turned into a Page during a
// crawl. A URL lands in exactly one of Result.Pages or Result.Failed.
type Failure struct {
	URL        string
	Error      string
	StatusCode int
}

// Result is the outcome of a crawl or fan-out extraction.
type Result struct {
	Pages  []*Page
	Failed []Failure
	// TotalPages is always len(Pages) + len(Failed).
	TotalPages int
	Stats      Stats
}

// Stats summarizes a Result.
type Stats struct {
	// Duration is the wall-clock time of the whole operation.
	Duration time.Duration
	// SuccessRate is 100 * successes / total, 0 when nothing was attempted.
	SuccessRate float64
	// TotalWords across all pages.
	TotalWords int
	// AvgWordsPerPage is 0 when there are no pages.
	AvgWordsPerPage float64
}

func computeStats(pages []*Page, failed []Failure, elapsed time.Duration) Stats {
	stats := Stats{Duration: elapsed}

	total := len(pages) + len(failed)
	if total > 0 {
		stats.SuccessRate = 100 * float64(len(pages)) / float64(total)
	}

	for _, page := range pages {
		stats.TotalWords += page.Metadata.WordCount
	}

	if len(pages) > 0 {
		stats.AvgWordsPerPage = float64(stats.TotalWords) / float64(len(pages))
	}

	return stats
}
