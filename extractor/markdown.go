package extractor

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	Title       string `yaml:"title"`
	Source      string `yaml:"source"`
	Description string `yaml:"description,omitempty"`
	Language    string `yaml:"language,omitempty"`
	WordCount   int    `yaml:"wordCount"`
	ScrapedAt   string `yaml:"scrapedAt"`
}

// Markdown renders the page as a markdown document with its metadata as
// YAML front matter, suitable for archiving or feeding to downstream
// tooling.
func (p *Page) Markdown() (string, error) {
	fm := frontMatter{
		Title:       p.Title,
		Source:      p.Metadata.SourceURL,
		Description: p.Metadata.Description,
		Language:    p.Metadata.Language,
		WordCount:   p.Metadata.WordCount,
		ScrapedAt:   p.Metadata.ScrapedAt.Format(time.RFC3339),
	}

	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal front matter")
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n")
	b.WriteString(p.Content)

	return b.String(), nil
}
