package wikimap

import (
	"net/url"
	"path"
	"strings"
)

// ExactURLDenylist lists URLs that are never recorded.
var ExactURLDenylist = []string{
	"https://developer.wikimedia.org/",
	"https://www.mediawiki.org/",
	"https://www.wikipedia.org/",
	"https://foundation.wikimedia.org/wiki/Home",
	"https://species.wikimedia.org/wiki/Wikispecies:Administrators",
	"https://hsb.wikipedia.org/wiki/Diskusija_z_wužiwarjom:J_budissin",
}

// URLSubstringDenylist lists substrings that disqualify a URL: administrative
// paths, disallowed schemes, off-domain hosts and unrelated services.
// Matching is case-sensitive.
var URLSubstringDenylist = []string{
	"Administrator",
	"Admin",
	"logout",
	"login",
	"remove credentials",
	"export",
	"contribute",
	"edit",
	"editor",
	"download",
	"http://",
	"mailto:",
	"tel:",
	"file:",
	"ftp://",
	"ftps://",
	"google",
	"wikipedia",
	"mediawiki",
	"foundation",
	"_blank",
	"confero.alkit",
	"github.com",
	"wireguard.com",
	";", "(", ")", "[", "]", "{", "}", "<", ">", "|", "\\",
}

// TitleDenylist lists anchor labels that disqualify a link.
// Matching is case-insensitive equality after trimming.
var TitleDenylist = []string{
	"log in",
	"logout",
	"remove credentials",
	"export",
	"contribute",
	"edit",
	"history",
	"view source",
	"the portal administrator view",
	"user",
	"administrator",
	"random page",
	"https://",
	"http://",
	"mailto:",
	"tel:",
	"file:",
	"ftp://",
	"ftps://",
	"download",
	";",
	"(",
	")",
}

// Media extensions. Media URLs are recorded as leaves and never fetched.
var (
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}
	VideoExtensions = []string{".mp4", ".avi", ".mov", ".wmv", ".flv"}
	AudioExtensions = []string{".mp3", ".wav", ".ogg", ".m4a"}
)

// IsUsableURL reports whether rawURL may be recorded in the crawl cache.
// It rejects empty URLs, URLs whose path or query embeds a namespace
// pattern, exact denylist entries and URLs containing a denylisted substring.
func IsUsableURL(rawURL string) bool {
	if !IsValidLinkURL(rawURL) {
		return false
	}
	u := strings.TrimSpace(rawURL)
	for _, denied := range ExactURLDenylist {
		if u == denied {
			return false
		}
	}
	for _, denied := range URLSubstringDenylist {
		if strings.Contains(u, denied) {
			return false
		}
	}
	return true
}

// IsValidLinkURL reports whether rawURL satisfies the invariant of every
// recorded link: non-empty and free of namespace patterns.
func IsValidLinkURL(rawURL string) bool {
	u := strings.TrimSpace(rawURL)
	return u != "" && !IsNamespaceURL(stripAuthority(u))
}

// IsUsableTitle reports whether an anchor label may be recorded.
// Empty titles are usable.
func IsUsableTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, denied := range TitleDenylist {
		if t == denied {
			return false
		}
	}
	return true
}

// IsUsable reports whether link passes both the URL and the title filter.
func IsUsable(link Link) bool {
	return IsUsableURL(link.URL) && IsUsableTitle(link.Title)
}

// IsMediaURL reports whether rawURL points at an image, video or audio file.
func IsMediaURL(rawURL string) bool {
	p := strings.TrimSpace(rawURL)
	if u, err := url.Parse(p); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, group := range [][]string{ImageExtensions, VideoExtensions, AudioExtensions} {
		for _, e := range group {
			if ext == e {
				return true
			}
		}
	}
	return false
}

// stripAuthority drops the scheme and host so that ports are not mistaken
// for namespaces. Unparseable input is returned as is.
func stripAuthority(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	rest := u.EscapedPath()
	if u.RawQuery != "" {
		rest += "?" + u.RawQuery
	}
	return rest
}
