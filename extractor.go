package wikimap

// ExtractResult holds the main content of an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string

	// TextContent is the main content as plain text.
	TextContent string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// It is used as a fallback when chrome stripping leaves no text.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
