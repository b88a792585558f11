package wikimap

import (
	"net/url"
	"regexp"
	"strings"
)

// namespacePattern matches embedded wiki namespaces such as
// "Special:RecentChanges" or "User:Admin".
var namespacePattern = regexp.MustCompile(`[A-Za-z0-9_]+:[A-Za-z0-9_]+`)

// mainPageMarker identifies links to a version's homepage. The wiki
// templates point Main_Page links at the wrong version, so they are
// rewritten to the crawl's base URL.
const mainPageMarker = "Main_Page"

// IsNamespaceURL reports whether s contains an embedded namespace pattern.
func IsNamespaceURL(s string) bool {
	return namespacePattern.MatchString(s)
}

// ResolveURL converts an anchor href to an absolute URL.
//
//   - fragment-only and empty hrefs resolve to ""
//   - hrefs containing a namespace pattern resolve to ""
//   - hrefs containing Main_Page resolve to base
//   - http, https, mailto and tel hrefs are returned unchanged
//   - hrefs starting with "/" are resolved against current
//   - anything else is resolved against base, not current
//
// The last rule is an approximation: nested relative paths are resolved
// from the version homepage rather than from the page they appear on.
func ResolveURL(href, current, base string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "", strings.HasPrefix(href, "#"):
		return ""
	case IsNamespaceURL(href):
		return ""
	case strings.Contains(href, mainPageMarker):
		return base
	case hasAbsoluteScheme(href):
		return href
	case strings.HasPrefix(href, "/"):
		return join(current, href)
	default:
		return join(base, href)
	}
}

func hasAbsoluteScheme(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"http://", "https://", "mailto:", "tel:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// join resolves href against ref. Returns "" if either fails to parse.
func join(ref, href string) string {
	base, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	rel, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(rel).String()
}

// SameHost reports whether a and b share a host. Unparseable URLs never match.
func SameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return ua.Host != "" && ua.Host == ub.Host
}
