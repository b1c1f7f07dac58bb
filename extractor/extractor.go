// Package extractor orchestrates page extraction against an external
// scraping service and annotates the results: URLs are normalized and
// deduplicated, content is cleaned, word counts and a language guess are
// derived, and crawl results carry success/failure accounting.
package extractor

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/anisirji/llm-web-extractor/content"
	"github.com/anisirji/llm-web-extractor/firecrawl"
	"github.com/anisirji/llm-web-extractor/log"
	"github.com/anisirji/llm-web-extractor/urlutil"
)

// fanOutConcurrency bounds ExtractPages' parallel collaborator calls.
const fanOutConcurrency = 5

// client is the slice of the scraping service this package consumes.
type client interface {
	Scrape(ctx context.Context, url string, params *firecrawl.ScrapeParams) (*firecrawl.Document, error)
	Crawl(ctx context.Context, url string, params *firecrawl.CrawlParams) ([]*firecrawl.Document, error)
}

// Extractor wraps the scraping service with typed extraction operations.
// It holds no mutable state beyond construction-time configuration and is
// safe for concurrent use.
type Extractor struct {
	log zerolog.Logger

	client   client
	timeout  time.Duration
	normOpts urlutil.NormalizeOptions
}

// New returns an Extractor configured against the scraping service.
func New(cfg Config) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts := []firecrawl.Option{
		firecrawl.WithTimeout(timeout),
		firecrawl.WithLogger(log.NewLoggerWithLevel("firecrawl", level)),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, firecrawl.WithBaseURL(cfg.BaseURL))
	}

	c, err := firecrawl.NewClient(cfg.APIKey, opts...)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		log:      log.NewLoggerWithLevel("extractor", level),
		client:   c,
		timeout:  timeout,
		normOpts: urlutil.DefaultNormalizeOptions(),
	}, nil
}

// ExtractPage extracts a single URL and returns the annotated page. The URL
// is validated and normalized before any network call; a malformed or
// non-http(s) URL fails with urlutil.ErrInvalidURL. A collaborator failure
// surfaces as an *ExtractionError. There is no partial success here.
func (e *Extractor) ExtractPage(ctx context.Context, rawURL string, opts *PageOptions) (*Page, error) {
	if opts == nil {
		opts = DefaultPageOptions()
	}

	canonical, err := urlutil.Normalize(rawURL, e.normOpts)
	if err != nil {
		return nil, err
	}

	e.log.Debug().Str("url", canonical).Str("format", string(opts.Format)).Msg("Extracting page")

	doc, err := e.client.Scrape(ctx, canonical, e.scrapeParams(opts))
	if err != nil {
		return nil, &ExtractionError{URL: canonical, Err: err}
	}

	page, err := e.buildPage(doc, canonical, opts)
	if err != nil {
		return nil, err
	}

	return page, nil
}

// ExtractWebsite crawls from the seed URL and returns a deduplicated,
// filtered, annotated result set. Individual bad records are downgraded to
// Failure entries; only a failure of the crawl call itself aborts the whole
// operation with an *ExtractionError. Page limits above MaxCrawlPages are
// clamped.
func (e *Extractor) ExtractWebsite(ctx context.Context, seedURL string, opts *CrawlOptions) (*Result, error) {
	if opts == nil {
		opts = &CrawlOptions{PageOptions: *DefaultPageOptions()}
	}

	start := time.Now()

	seed, err := urlutil.Normalize(seedURL, e.normOpts)
	if err != nil {
		return nil, err
	}

	limit := opts.EffectiveLimit()
	if opts.MaxPages > MaxCrawlPages {
		e.log.Warn().
			Int("requested", opts.MaxPages).
			Int("effective", limit).
			Msg("Requested page limit exceeds the maximum, clamping")
	}

	e.log.Debug().Str("seed", seed).Int("limit", limit).Int("maxDepth", opts.MaxDepth).Msg("Starting crawl")

	docs, err := e.client.Crawl(ctx, seed, e.crawlParams(opts, limit))
	if err != nil {
		return nil, &ExtractionError{URL: seed, Err: err}
	}

	// Dedup and pattern filtering operate on the raw source URLs; records
	// whose URL does not survive are dropped entirely.
	sourceURLs := make([]string, len(docs))
	for i, doc := range docs {
		sourceURLs[i] = sourceURL(doc, seed)
	}

	surviving := urlutil.Deduplicate(sourceURLs, e.normOpts)

	if len(opts.IncludePatterns) > 0 || len(opts.ExcludePatterns) > 0 {
		surviving, err = urlutil.FilterByPattern(surviving, opts.IncludePatterns, opts.ExcludePatterns)
		if err != nil {
			return nil, err
		}
	}

	keep := make(map[string]struct{}, len(surviving))
	for _, u := range surviving {
		keep[u] = struct{}{}
	}

	var (
		pages  []*Page
		failed []Failure
	)

	for i, doc := range docs {
		if _, ok := keep[sourceURLs[i]]; !ok {
			// Unparseable URLs never survive deduplication, but they still
			// count toward the total: fall through so buildPage classifies
			// them as failures instead of dropping the record.
			if _, err := urlutil.Validate(sourceURLs[i]); err == nil {
				continue
			}
		}

		page, err := e.buildPage(doc, seed, &opts.PageOptions)
		if err != nil {
			failed = append(failed, Failure{
				URL:        sourceURLs[i],
				Error:      err.Error(),
				StatusCode: statusCode(doc),
			})
			continue
		}

		pages = append(pages, page)
	}

	result := &Result{
		Pages:      pages,
		Failed:     failed,
		TotalPages: len(pages) + len(failed),
		Stats:      computeStats(pages, failed, time.Since(start)),
	}

	e.log.Info().
		Str("seed", seed).
		Int("pages", len(pages)).
		Int("failed", len(failed)).
		Dur("elapsed", result.Stats.Duration).
		Msg("Crawl finished")

	return result, nil
}

// ExtractPages fans out independent single-page extractions over the given
// URLs, at most fanOutConcurrency at a time, and folds per-URL failures
// into Result.Failed. Page order follows the input order. The calls do not
// share state; one failing URL never affects the others.
func (e *Extractor) ExtractPages(ctx context.Context, urls []string, opts *PageOptions) (*Result, error) {
	start := time.Now()

	type slot struct {
		page *Page
		err  error
	}

	slots := make([]slot, len(urls))

	var g errgroup.Group
	g.SetLimit(fanOutConcurrency)

	for i, u := range urls {
		g.Go(func() error {
			page, err := e.ExtractPage(ctx, u, opts)
			slots[i] = slot{page: page, err: err}
			return nil
		})
	}

	// Goroutines never return errors; failures live in their slots.
	_ = g.Wait()

	var (
		pages  []*Page
		failed []Failure
	)

	for i, s := range slots {
		if s.err != nil {
			failed = append(failed, Failure{URL: urls[i], Error: s.err.Error()})
			continue
		}

		pages = append(pages, s.page)
	}

	return &Result{
		Pages:      pages,
		Failed:     failed,
		TotalPages: len(pages) + len(failed),
		Stats:      computeStats(pages, failed, time.Since(start)),
	}, nil
}

func (e *Extractor) scrapeParams(opts *PageOptions) *firecrawl.ScrapeParams {
	format := opts.Format
	if format == "" {
		format = FormatMarkdown
	}

	onlyMain := opts.OnlyMainContent
	timeoutMS := int(e.timeout.Milliseconds())

	params := &firecrawl.ScrapeParams{
		Formats:         []string{string(format)},
		OnlyMainContent: &onlyMain,
		Timeout:         &timeoutMS,
	}

	if opts.WaitFor > 0 {
		waitMS := int(opts.WaitFor.Milliseconds())
		params.WaitFor = &waitMS
	}

	return params
}

func (e *Extractor) crawlParams(opts *CrawlOptions, limit int) *firecrawl.CrawlParams {
	params := &firecrawl.CrawlParams{
		Limit:              &limit,
		AllowSubdomains:    &opts.IncludeSubdomains,
		AllowExternalLinks: &opts.FollowExternalLinks,
		ScrapeOptions:      e.scrapeParams(&opts.PageOptions),
	}

	if opts.MaxDepth > 0 {
		params.MaxDepth = &opts.MaxDepth
	}

	return params
}

// buildPage turns one raw service document into an annotated Page. It is a
// pure per-record transform: any error (typically an unparseable source
// URL) is returned for the caller to classify, never raised mid-crawl.
func (e *Extractor) buildPage(doc *firecrawl.Document, fallbackURL string, opts *PageOptions) (*Page, error) {
	source := sourceURL(doc, fallbackURL)

	canonical, err := urlutil.Normalize(source, e.normOpts)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		format = FormatMarkdown
	}

	cleaned := content.Clean(e.selectPayload(doc, format, canonical))

	title := metadataTitle(doc)
	if title == "" && format == FormatMarkdown {
		title = content.FindTitle(cleaned)
	}

	if opts.TitlePrefix != "" {
		title = opts.TitlePrefix + title
	}

	metadata := PageMetadata{
		ScrapedAt:  time.Now(),
		SourceURL:  source,
		WordCount:  content.CountWords(cleaned),
		Language:   content.DetectLanguage(cleaned),
		StatusCode: statusCode(doc),
	}

	if doc.Metadata != nil {
		if doc.Metadata.Description != nil {
			metadata.Description = *doc.Metadata.Description
		}

		// Prefer the service's own language tag over the heuristic guess.
		if doc.Metadata.Language != nil && *doc.Metadata.Language != "" {
			metadata.Language = *doc.Metadata.Language
		}

		metadata.Extra = doc.Metadata.Extra
	}

	return &Page{
		Title:    title,
		Content:  cleaned,
		URL:      canonical,
		Metadata: metadata,
	}, nil
}

// selectPayload picks the requested format's payload, converting or
// stripping HTML when the service returned only that, then falling back to
// the generic content field and finally the empty string.
func (e *Extractor) selectPayload(doc *firecrawl.Document, format Format, canonical string) string {
	switch format {
	case FormatHTML:
		if doc.HTML != "" {
			return doc.HTML
		}
	case FormatText:
		if doc.Text != "" {
			return doc.Text
		}

		if doc.HTML != "" {
			return content.StripHTML(doc.HTML)
		}
	default: // markdown
		if doc.Markdown != "" {
			return doc.Markdown
		}

		if doc.HTML != "" {
			domain, _ := urlutil.ExtractDomain(canonical)
			md, err := content.HTMLToMarkdown(doc.HTML, domain)
			if err == nil {
				return md
			}

			e.log.Debug().Err(err).Str("url", canonical).Msg("HTML to markdown fallback failed")
		}
	}

	return doc.Content
}

func sourceURL(doc *firecrawl.Document, fallback string) string {
	if doc.Metadata != nil && doc.Metadata.SourceURL != nil && *doc.Metadata.SourceURL != "" {
		return *doc.Metadata.SourceURL
	}

	return fallback
}

func metadataTitle(doc *firecrawl.Document) string {
	if doc.Metadata != nil && doc.Metadata.Title != nil {
		return *doc.Metadata.Title
	}

	return ""
}

func statusCode(doc *firecrawl.Document) int {
	if doc.Metadata != nil && doc.Metadata.StatusCode != nil {
		return *doc.Metadata.StatusCode
	}

	return 0
}
