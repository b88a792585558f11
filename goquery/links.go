// Package goquery implements wiki markup parsing with goquery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wikimap"
)

// ContextWindow is the number of characters kept on either side of an
// anchor's text when building Link.Context.
const ContextWindow = 60

// xmlMarker switches extraction to XML mode.
const xmlMarker = "<?xml"

// Ensure LinkExtractor implements wikimap.LinkExtractor at compile time.
var _ wikimap.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor extracts anchors from wiki HTML pages.
type LinkExtractor struct {
	xml wikimap.LinkExtractor
}

// LinkExtractorOption configures a LinkExtractor.
type LinkExtractorOption func(*LinkExtractor)

// WithXMLExtractor sets the extractor used for markup that declares itself XML.
// Without one, XML markup is parsed as HTML.
func WithXMLExtractor(x wikimap.LinkExtractor) LinkExtractorOption {
	return func(e *LinkExtractor) {
		e.xml = x
	}
}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor(opts ...LinkExtractorOption) *LinkExtractor {
	e := &LinkExtractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLinks returns every anchor of markup with an href, in document
// order. Titles are the trimmed anchor text. Filtering and deduplication
// are left to the caller.
func (e *LinkExtractor) ExtractLinks(markup, pageURL, baseURL string) ([]wikimap.Link, error) {
	if e.xml != nil && strings.Contains(markup, xmlMarker) {
		return e.xml.ExtractLinks(markup, pageURL, baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, wikimap.Errorf(wikimap.EINVALID, "failed to parse HTML: %v", err)
	}

	var links []wikimap.Link
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		resolved := wikimap.ResolveURL(href, pageURL, baseURL)
		if resolved == "" {
			return
		}
		title := strings.TrimSpace(sel.Text())
		links = append(links, wikimap.Link{
			URL:     resolved,
			Title:   title,
			Context: AnchorContext(title, joinedText(sel.Parent())),
		})
	})
	return links, nil
}

// AnchorContext returns the part of parentText around the first occurrence
// of anchorText, widened by ContextWindow characters on each side.
// Returns "" when either text is empty or the anchor text is not found.
func AnchorContext(anchorText, parentText string) string {
	if anchorText == "" || parentText == "" {
		return ""
	}
	idx := strings.Index(parentText, anchorText)
	if idx < 0 {
		return ""
	}
	runes := []rune(parentText)
	start := len([]rune(parentText[:idx]))
	end := start + len([]rune(anchorText))
	start = max(0, start-ContextWindow)
	end = min(len(runes), end+ContextWindow)
	return strings.TrimSpace(string(runes[start:end]))
}

// joinedText returns the trimmed text nodes under sel joined by single spaces.
func joinedText(sel *goquery.Selection) string {
	var parts []string
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			if s := strings.TrimSpace(c.Text()); s != "" {
				parts = append(parts, s)
			}
			return
		}
		if s := joinedText(c); s != "" {
			parts = append(parts, s)
		}
	})
	return strings.Join(parts, " ")
}
