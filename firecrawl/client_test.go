package firecrawl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestScrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/scrape" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", got)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		if req["url"] != "https://example.com/page" {
			t.Errorf("unexpected url in request: %v", req["url"])
		}

		fmt.Fprint(w, `{
			"success": true,
			"data": {
				"markdown": "# Hello",
				"metadata": {
					"title": "Hello",
					"sourceURL": "https://example.com/page",
					"statusCode": 200,
					"ogSiteName": "Example"
				}
			}
		}`)
	}))
	defer server.Close()

	c, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	doc, err := c.Scrape(context.Background(), "https://example.com/page", &ScrapeParams{Formats: []string{"markdown"}})
	if err != nil {
		t.Fatal(err)
	}

	if doc.Markdown != "# Hello" {
		t.Errorf("unexpected markdown: %q", doc.Markdown)
	}

	md := doc.Metadata
	if md == nil || md.Title == nil || *md.Title != "Hello" {
		t.Fatalf("unexpected metadata: %+v", md)
	}

	if md.StatusCode == nil || *md.StatusCode != 200 {
		t.Errorf("unexpected status code: %+v", md.StatusCode)
	}

	// Non-core keys land in the Extra bag, not on the floor.
	if got, ok := md.Extra["ogSiteName"]; !ok || got != "Example" {
		t.Errorf("expected ogSiteName in Extra, got %v", md.Extra)
	}

	if _, ok := md.Extra["title"]; ok {
		t.Error("core keys must not be duplicated into Extra")
	}
}

func TestScrapeServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "error": "Page not reachable"}`)
	}))
	defer server.Close()

	c, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Scrape(context.Background(), "https://example.com", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), "Page not reachable") {
		t.Errorf("expected service message in error, got: %v", err)
	}
}

func TestScrapeHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": "Rate limit exceeded"}`)
	}))
	defer server.Close()

	c, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Scrape(context.Background(), "https://example.com", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "Rate limit exceeded") {
		t.Errorf("expected status and message in error, got: %v", err)
	}
}

func TestCrawlPollsUntilCompleted(t *testing.T) {
	var polls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/crawl":
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("failed to decode request body: %v", err)
			}

			if req["limit"] != float64(5) {
				t.Errorf("unexpected limit: %v", req["limit"])
			}

			fmt.Fprint(w, `{"success": true, "id": "job-1"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/crawl/job-1":
			if polls.Add(1) < 3 {
				fmt.Fprint(w, `{"status": "scraping", "completed": 1, "total": 2}`)
				return
			}

			fmt.Fprint(w, `{
				"status": "completed",
				"total": 2,
				"completed": 2,
				"data": [
					{"markdown": "page one", "metadata": {"sourceURL": "https://example.com/one"}},
					{"markdown": "page two", "metadata": {"sourceURL": "https://example.com/two"}}
				]
			}`)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	c, err := NewClient("test-key", WithBaseURL(server.URL), WithPollInterval(5*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	limit := 5
	docs, err := c.Crawl(context.Background(), "https://example.com", &CrawlParams{Limit: &limit})
	if err != nil {
		t.Fatal(err)
	}

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	if docs[0].Markdown != "page one" {
		t.Errorf("unexpected first document: %+v", docs[0])
	}

	if polls.Load() < 3 {
		t.Errorf("expected at least 3 polls, got %d", polls.Load())
	}
}

func TestCrawlFailedJob(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"success": true, "id": "job-2"}`)
			return
		}

		fmt.Fprint(w, `{"status": "failed", "error": "Crawl exceeded quota"}`)
	}))
	defer server.Close()

	c, err := NewClient("test-key", WithBaseURL(server.URL), WithPollInterval(5*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Crawl(context.Background(), "https://example.com", nil)
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), "Crawl exceeded quota") {
		t.Errorf("expected failure reason in error, got: %v", err)
	}
}

func TestCrawlContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"success": true, "id": "job-3"}`)
			return
		}

		fmt.Fprint(w, `{"status": "scraping"}`)
	}))
	defer server.Close()

	c, err := NewClient("test-key", WithBaseURL(server.URL), WithPollInterval(5*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = c.Crawl(ctx, "https://example.com", nil)
	if err == nil {
		t.Fatal("expected error when context expires during polling")
	}
}
