package wikimap

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Default wiki locations.
const (
	// DefaultRevisionHistoryURL lists every released WCU software version.
	DefaultRevisionHistoryURL = "https://wice-sysdoc.alkit.se/index.php/WICE_WCU_Software_Revision_History"

	// DefaultHomepageTemplate is the homepage of one wiki version.
	// VersionPlaceholder is replaced with "wice" followed by the compact version id.
	DefaultHomepageTemplate = "https://wiki.alkit.se/<VERSION_NUMBER>/index.php/Main_Page"

	// VersionPlaceholder marks where the version segment goes in a homepage template.
	VersionPlaceholder = "<VERSION_NUMBER>"

	// versionPathPrefix prefixes the compact version id in wiki URL paths.
	versionPathPrefix = "wice"
)

// VersionID is a normalized "major.minor" wiki version identifier.
// It is the partition key of the crawl cache.
type VersionID string

// Compact returns the identifier without dots, as it appears in wiki URLs.
func (v VersionID) Compact() string {
	return strings.ReplaceAll(string(v), ".", "")
}

// PathSegment returns the URL path segment for the version (e.g. "wice1105").
func (v VersionID) PathSegment() string {
	return versionPathPrefix + v.Compact()
}

// Number returns the numeric value of the version used for ordering.
// Identifiers that do not parse sort as zero.
func (v VersionID) Number() float64 {
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0
	}
	return f
}

// versionPattern finds version announcements in revision-history text.
var versionPattern = regexp.MustCompile(`Version\s*([\d.]+)`)

// ParseVersionText extracts the version identifier announced in text such
// as "Version 11.05.2 (2024-03-01)". The patch component is dropped.
// Returns false if text contains no version announcement.
func ParseVersionText(text string) (VersionID, bool) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return NormalizeVersion(m[1]), true
}

// NormalizeVersion truncates a dotted version number to major.minor.
func NormalizeVersion(raw string) VersionID {
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return VersionID(strings.Join(parts, "."))
}

// ParseCompactVersion converts a dot-stripped version ("1105") back to the
// canonical dotted form ("11.05"). Minor versions are two digits wide.
func ParseCompactVersion(compact string) VersionID {
	if len(compact) <= 2 {
		return VersionID(compact)
	}
	return VersionID(compact[:len(compact)-2] + "." + compact[len(compact)-2:])
}

// MatchCompactVersion returns the version in known whose compact form is
// compact, falling back to ParseCompactVersion. The compact form drops the
// dot, so "wice43" is only recognized as 4.3 when 4.3 is known.
func MatchCompactVersion(compact string, known []VersionID) VersionID {
	for _, v := range known {
		if v.Compact() == compact {
			return v
		}
	}
	return ParseCompactVersion(compact)
}

// versionSegmentPattern matches the wice<NN> segment of a wiki URL path.
var versionSegmentPattern = regexp.MustCompile(`/` + versionPathPrefix + `(\d+)(?:/|$)`)

// VersionFromURL derives the version of a wiki page from its wice<NN>
// path segment. Returns the compact digits and false if the URL carries no
// version segment.
func VersionFromURL(rawURL string) (compact string, ok bool) {
	m := versionSegmentPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// HomepageURL substitutes the version segment into a homepage template.
func HomepageURL(template string, id VersionID) string {
	return strings.ReplaceAll(template, VersionPlaceholder, id.PathSegment())
}

// VersionRecord is the outcome of validating one version's homepage.
type VersionRecord struct {
	ID          VersionID `json:"id"`
	HomepageURL string    `json:"homepageUrl"`
	Reachable   bool      `json:"reachable"`

	// Reason explains why an unreachable homepage was rejected.
	Reason string `json:"reason,omitempty"`
}

// Resolution is the result of one version resolution pass.
type Resolution struct {
	// Available maps reachable versions to their homepage.
	Available map[VersionID]string `json:"available"`

	// Unavailable maps rejected versions to a "<url> - <reason>" diagnostic.
	Unavailable map[VersionID]string `json:"unavailable"`

	// Records lists every classification in document order.
	Records []VersionRecord `json:"records"`
}

// Latest returns the highest available version.
// Returns false if no version is available.
func (r *Resolution) Latest() (VersionID, bool) {
	ids := r.Versions()
	if len(ids) == 0 {
		return "", false
	}
	return ids[len(ids)-1], true
}

// Versions returns the available versions in ascending numeric order.
func (r *Resolution) Versions() []VersionID {
	ids := make([]VersionID, 0, len(r.Available))
	for id := range r.Available {
		ids = append(ids, id)
	}
	SortVersions(ids)
	return ids
}

// SortVersions orders ids ascending by numeric value, ties broken lexically.
func SortVersions(ids []VersionID) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i].Number(), ids[j].Number()
		if a != b {
			return a < b
		}
		return ids[i] < ids[j]
	})
}

// VersionParser extracts announced versions from a revision-history document.
type VersionParser interface {
	// ParseVersions returns the normalized version identifiers found in the
	// document's preformatted blocks, in document order. Duplicates are kept.
	ParseVersions(html string) ([]VersionID, error)
}

// VersionResolver discovers available wiki versions.
type VersionResolver interface {
	// Resolve fetches the revision history and classifies every announced
	// version. Failing to fetch the revision history is fatal.
	Resolve(ctx context.Context) (*Resolution, error)
}
