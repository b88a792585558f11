package wikimap

// Link is a recorded wiki page reference. Two links are the same page when
// their URLs are equal; the title is informational.
type Link struct {
	URL   string `json:"url"`
	Title string `json:"title"`

	// Context is a window of the text surrounding the anchor.
	Context string `json:"context,omitempty"`
}

// Same reports whether l and other reference the same page.
func (l Link) Same(other Link) bool {
	return l.URL == other.URL
}

// HomeTitle is the title recorded for a version's homepage.
const HomeTitle = "Home Page"

// VersionMap is the per-version verified link map.
type VersionMap map[VersionID][]Link

// Len returns the total number of links across all versions.
func (m VersionMap) Len() int {
	var n int
	for _, links := range m {
		n += len(links)
	}
	return n
}

// LinkExtractor extracts anchors from fetched markup.
type LinkExtractor interface {
	// ExtractLinks returns the anchors of markup in document order, each
	// resolved with ResolveURL against pageURL and baseURL. Anchors that
	// resolve to an empty URL are omitted.
	ExtractLinks(markup, pageURL, baseURL string) ([]Link, error)
}
