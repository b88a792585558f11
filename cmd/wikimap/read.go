package main

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/crawl"
)

// summaryURLWidth bounds the page URL printed in the read summary.
const summaryURLWidth = 60

// Run executes the read command.
func (c *ReadCmd) Run(deps *Dependencies) error {
	if !wikimap.IsValidLinkURL(c.URL) {
		fmt.Fprintf(deps.Stderr, "error: %q is not a readable wiki page URL\n", c.URL)
		return wikimap.Errorf(wikimap.EINVALID, "invalid page URL %q", c.URL)
	}

	page, err := deps.Reader.Read(deps.Ctx, c.URL)
	if err != nil {
		if stage := wikimap.ErrorStage(err); stage != "" {
			fmt.Fprintf(deps.Stderr, "error: %s stage failed: %s\n", stage, wikimap.ErrorMessage(err))
		} else {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wikimap.ErrorMessage(err))
		}
		return err
	}

	fmt.Fprintf(deps.Stderr, "Read %s: %s of text, %d links\n",
		crawl.TruncateURL(page.URL, summaryURLWidth), crawl.FormatBytes(len(page.TextContent)), len(page.Hyperlinks))
	if page.BotLimitReached {
		fmt.Fprintf(deps.Stderr, "warning: wiki rate limit reached after %d requests; returning partial content\n", page.RequestBotLimit)
	}

	if deps.Pages != nil {
		path, err := deps.Pages.WritePage(deps.Ctx, page)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wikimap.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Wrote %s\n", path)
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(page)
}

// origin returns the scheme and host of rawURL.
func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
