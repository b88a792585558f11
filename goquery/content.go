package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wikimap"
	"golang.org/x/net/html"
)

// ChromeSelectors match the MediaWiki navigation and boilerplate removed
// before text extraction.
var ChromeSelectors = []string{
	"#mw-panel",
	"#mw-head",
	"#mw-navigation",
	"#toc",
	"#footer",
	"script",
	"style",
	"noscript",
}

// Ensure ContentExtractor implements wikimap.ContentExtractor at compile time.
var _ wikimap.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor converts wiki pages into plain text.
type ContentExtractor struct{}

// NewContentExtractor creates a new ContentExtractor.
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// ExtractText removes chrome elements and returns one line per text node,
// with runs of whitespace inside a node collapsed to a single space.
func (e *ContentExtractor) ExtractText(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", wikimap.Errorf(wikimap.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find(strings.Join(ChromeSelectors, ", ")).Remove()

	var lines []string
	for _, n := range doc.Nodes {
		lines = collectText(n, lines)
	}
	return strings.Join(lines, "\n"), nil
}

// ExtractHTML returns the body markup with chrome removed.
func (e *ContentExtractor) ExtractHTML(markup string) (string, error) {
	return StripChrome(markup)
}

// StripChrome returns the markup of markup's body with chrome removed.
func StripChrome(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", wikimap.Errorf(wikimap.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find(strings.Join(ChromeSelectors, ", ")).Remove()
	return doc.Find("body").Html()
}

func collectText(n *html.Node, lines []string) []string {
	if n.Type == html.TextNode {
		if s := strings.Join(strings.Fields(n.Data), " "); s != "" {
			lines = append(lines, s)
		}
		return lines
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lines = collectText(c, lines)
	}
	return lines
}
