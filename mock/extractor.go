package mock

import "github.com/fwojciec/wikimap"

var _ wikimap.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of wikimap.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*wikimap.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*wikimap.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ wikimap.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of wikimap.ContentExtractor.
type ContentExtractor struct {
	ExtractTextFn func(html string) (string, error)
	ExtractHTMLFn func(html string) (string, error)
}

func (e *ContentExtractor) ExtractText(html string) (string, error) {
	return e.ExtractTextFn(html)
}

func (e *ContentExtractor) ExtractHTML(html string) (string, error) {
	return e.ExtractHTMLFn(html)
}

var _ wikimap.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of wikimap.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(markup, pageURL, baseURL string) ([]wikimap.Link, error)
}

func (e *LinkExtractor) ExtractLinks(markup, pageURL, baseURL string) ([]wikimap.Link, error) {
	return e.ExtractLinksFn(markup, pageURL, baseURL)
}
