// Package readability extracts the main content of wiki pages whose
// layout defeats chrome stripping.
package readability

import (
	"strings"

	"github.com/fwojciec/wikimap"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements wikimap.Extractor at compile time.
var _ wikimap.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content. TextContent is
// whitespace-normalized line by line, with blank lines dropped.
func (e *Extractor) Extract(rawHTML string) (*wikimap.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, wikimap.Errorf(wikimap.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &wikimap.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
		TextContent: normalizeLines(article.TextContent),
	}, nil
}

func normalizeLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 {
			lines = append(lines, strings.Join(fields, " "))
		}
	}
	return strings.Join(lines, "\n")
}
