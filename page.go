package wikimap

import (
	"context"
	"time"
)

// PageContent is the content-extraction result consumed by the retrieval
// layer (agent tools and search endpoints).
type PageContent struct {
	URL     string    `json:"url"`
	Version VersionID `json:"version,omitempty"`

	// TextContent is the page body with navigation chrome removed,
	// converted to whitespace-normalized plain text.
	TextContent string `json:"textContent"`

	// Markdown is the same content rendered as markdown, when requested.
	Markdown string `json:"markdown,omitempty"`

	// Hyperlinks merges the page's own links with the cached map of its version.
	Hyperlinks []Link `json:"hyperlinks"`

	ContentHash   string        `json:"contentHash,omitempty"`
	ExecutionTime time.Duration `json:"executionTime"`

	// BotLimitReached is set when extraction stopped early because the
	// wiki signalled rate limiting. The other fields hold partial results.
	BotLimitReached bool `json:"botLimitReached,omitempty"`

	// RequestBotLimit is the number of requests served before the limit.
	RequestBotLimit int `json:"requestBotLimit,omitempty"`
}

// ContentExtractor removes wiki navigation chrome from page markup.
// Missing chrome elements are not an error.
type ContentExtractor interface {
	// ExtractText returns the page text, whitespace-normalized.
	ExtractText(html string) (string, error)

	// ExtractHTML returns the page body markup.
	ExtractHTML(html string) (string, error)
}

// PageReader returns the content of a single wiki page.
type PageReader interface {
	Read(ctx context.Context, url string) (*PageContent, error)
}
