package crawl

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/wikimap"
)

var _ wikimap.PageReader = (*Reader)(nil)

// Reader returns the content of single wiki pages for retrieval tools.
type Reader struct {
	Fetcher wikimap.Fetcher
	Content wikimap.ContentExtractor
	Links   wikimap.LinkExtractor

	// Fallback, if set, extracts the main content when chrome stripping
	// leaves no text.
	Fallback wikimap.Extractor

	// Converter, if set, renders the page body as markdown.
	Converter wikimap.Converter

	// Cache, if set, contributes the mapped links of the page's version.
	Cache *Cache

	// HomepageTemplate defaults to wikimap.DefaultHomepageTemplate.
	HomepageTemplate string

	Policy FetchPolicy
}

// Read fetches url and extracts its text and hyperlinks. When the wiki
// keeps rate limiting, Read returns the partial content with
// BotLimitReached set instead of an error. Extraction failures are
// returned as *wikimap.StageError; a page without any text is ENOTFOUND.
func (r *Reader) Read(ctx context.Context, url string) (*wikimap.PageContent, error) {
	start := time.Now()
	content := &wikimap.PageContent{URL: url}
	if compact, ok := wikimap.VersionFromURL(url); ok {
		content.Version = r.version(compact)
	}

	page, err := FetchPage(ctx, r.Fetcher, url, r.Policy)
	if err != nil {
		var rle *RateLimitError
		if errors.As(err, &rle) {
			content.BotLimitReached = true
			content.RequestBotLimit = rle.LimitAt
			content.Hyperlinks = r.cached(content.Version, nil)
			content.ExecutionTime = time.Since(start)
			return content, nil
		}
		return nil, &wikimap.StageError{Stage: wikimap.StageFetch, Err: err}
	}

	text, err := r.text(page.Body)
	if err != nil {
		return nil, &wikimap.StageError{Stage: wikimap.StageText, Err: err}
	}
	if text == "" {
		return nil, &wikimap.StageError{
			Stage: wikimap.StageText,
			Err:   wikimap.Errorf(wikimap.ENOTFOUND, "no content found for %s", url),
		}
	}
	content.TextContent = text
	content.ContentHash = ComputeHash(text)

	if r.Converter != nil {
		body, err := r.Content.ExtractHTML(page.Body)
		if err != nil {
			return nil, &wikimap.StageError{Stage: wikimap.StageText, Err: err}
		}
		markdown, err := r.Converter.Convert(body)
		if err != nil {
			return nil, &wikimap.StageError{Stage: wikimap.StageText, Err: err}
		}
		content.Markdown = markdown
	}

	links, err := r.Links.ExtractLinks(page.Body, url, r.baseURL(url, content.Version))
	if err != nil {
		return nil, &wikimap.StageError{Stage: wikimap.StageLinks, Err: err}
	}
	content.Hyperlinks = r.cached(content.Version, usableLinks(links))
	content.ExecutionTime = time.Since(start)
	return content, nil
}

func (r *Reader) text(body string) (string, error) {
	text, err := r.Content.ExtractText(body)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" || r.Fallback == nil {
		return strings.TrimSpace(text), nil
	}
	extracted, err := r.Fallback.Extract(body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(extracted.TextContent), nil
}

// version maps the compact digits of a URL to a version, preferring
// versions the cache already holds.
func (r *Reader) version(compact string) wikimap.VersionID {
	var known []wikimap.VersionID
	if r.Cache != nil {
		known = r.Cache.Versions()
	}
	return wikimap.MatchCompactVersion(compact, known)
}

// baseURL returns the homepage of the page's version, or the page itself
// when the URL carries no version.
func (r *Reader) baseURL(url string, v wikimap.VersionID) string {
	if v == "" {
		return url
	}
	template := r.HomepageTemplate
	if template == "" {
		template = wikimap.DefaultHomepageTemplate
	}
	return wikimap.HomepageURL(template, v)
}

// cached appends the cached links of version v that links does not hold.
func (r *Reader) cached(v wikimap.VersionID, links []wikimap.Link) []wikimap.Link {
	if links == nil {
		links = []wikimap.Link{}
	}
	if r.Cache == nil || v == "" {
		return links
	}
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		seen[l.URL] = true
	}
	for _, l := range r.Cache.Entries(v) {
		if !seen[l.URL] {
			seen[l.URL] = true
			links = append(links, l)
		}
	}
	return links
}

// usableLinks returns the links passing the filter, fragments stripped and
// deduplicated by URL, in their original order.
func usableLinks(links []wikimap.Link) []wikimap.Link {
	seen := make(map[string]bool, len(links))
	out := make([]wikimap.Link, 0, len(links))
	for _, l := range links {
		l.URL = StripFragment(l.URL)
		if seen[l.URL] || !wikimap.IsUsable(l) {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}
