// Package etree extracts links from XML-mode wiki markup using etree.
package etree

import (
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/goquery"
)

// Ensure LinkExtractor implements wikimap.LinkExtractor at compile time.
var _ wikimap.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor extracts anchors from XHTML and other XML documents.
// Element names are matched without their namespace prefix.
type LinkExtractor struct{}

// NewLinkExtractor creates a new LinkExtractor.
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{}
}

// ExtractLinks returns every <a href> element of markup in document order.
func (e *LinkExtractor) ExtractLinks(markup, pageURL, baseURL string) ([]wikimap.Link, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString(markup); err != nil {
		return nil, wikimap.Errorf(wikimap.EINVALID, "failed to parse XML: %v", err)
	}

	var links []wikimap.Link
	for _, el := range doc.FindElements("//a[@href]") {
		resolved := wikimap.ResolveURL(el.SelectAttrValue("href", ""), pageURL, baseURL)
		if resolved == "" {
			continue
		}
		title := strings.TrimSpace(text(el))
		var context string
		if parent := el.Parent(); parent != nil {
			context = goquery.AnchorContext(title, text(parent))
		}
		links = append(links, wikimap.Link{
			URL:     resolved,
			Title:   title,
			Context: context,
		})
	}
	return links, nil
}

// text joins the trimmed character data under el with single spaces.
func text(el *etree.Element) string {
	var parts []string
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if s := strings.TrimSpace(t.Data); s != "" {
				parts = append(parts, s)
			}
		case *etree.Element:
			if s := text(t); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " ")
}
