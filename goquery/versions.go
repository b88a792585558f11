package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/wikimap"
)

// Ensure VersionParser implements wikimap.VersionParser at compile time.
var _ wikimap.VersionParser = (*VersionParser)(nil)

// VersionParser reads version announcements from the preformatted blocks
// of the revision-history page.
type VersionParser struct{}

// NewVersionParser creates a new VersionParser.
func NewVersionParser() *VersionParser {
	return &VersionParser{}
}

// ParseVersions returns one identifier per pre block that announces a
// version, in document order. Blocks without an announcement are skipped.
func (p *VersionParser) ParseVersions(html string) ([]wikimap.VersionID, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, wikimap.Errorf(wikimap.EINVALID, "failed to parse HTML: %v", err)
	}

	var ids []wikimap.VersionID
	doc.Find("pre").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := wikimap.ParseVersionText(sel.Text()); ok {
			ids = append(ids, id)
		}
	})
	return ids, nil
}
