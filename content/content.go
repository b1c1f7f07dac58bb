// Package content turns raw extracted text into a presentation-ready string
// and derives simple descriptive statistics from it.
package content

import (
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

var excessiveNewlines = regexp.MustCompile(`\n{3,}`)

// Clean collapses runs of three or more newlines down to exactly two and
// trims surrounding whitespace. Empty input yields an empty string.
func Clean(content string) string {
	return strings.TrimSpace(excessiveNewlines.ReplaceAllString(content, "\n\n"))
}

// CountWords counts whitespace-delimited tokens.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// StripHTML removes script and style blocks including their contents, drops
// all remaining tags and collapses whitespace. It is a best-effort fallback
// for when the scraping service returns raw HTML: malformed markup never
// produces an error, just degraded output.
func StripHTML(raw string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(raw))

	var b strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break
		}

		switch tt {
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func isSkippedTag(name string) bool {
	return name == "script" || name == "style"
}

// GenerateExcerpt returns content unchanged when it has at most maxWords
// tokens; otherwise the first maxWords tokens joined by single spaces,
// followed by an ellipsis.
func GenerateExcerpt(content string, maxWords int) string {
	words := strings.Fields(content)
	if len(words) <= maxWords {
		return content
	}

	return strings.Join(words[:maxWords], " ") + "..."
}

// Similarity computes the Jaccard similarity of the two documents'
// lowercase vocabularies. Two empty documents have similarity 0.
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}

	return set
}

// HTMLToMarkdown converts an HTML document to markdown. A non-empty domain
// is used to resolve relative links.
func HTMLToMarkdown(raw, domain string) (string, error) {
	var opts []converter.ConvertOptionFunc
	if domain != "" {
		opts = append(opts, converter.WithDomain(domain))
	}

	out, err := md.ConvertString(raw, opts...)
	if err != nil {
		return "", errors.Wrap(err, "failed to convert HTML to markdown")
	}

	return out, nil
}
