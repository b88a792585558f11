package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/wikimap"
)

// CompactOptions controls Cache.Compact.
type CompactOptions struct {
	// DedupTitles also drops links whose title repeats an earlier title
	// of the same version. Empty titles never collide.
	DedupTitles bool
}

// Cache holds the verified links of every version. A URL is owned by the
// first version that records it; later attempts to record the same URL in
// any version are rejected. Cache is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[wikimap.VersionID][]wikimap.Link
	owners  map[string]wikimap.VersionID
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[wikimap.VersionID][]wikimap.Link),
		owners:  make(map[string]wikimap.VersionID),
	}
}

// RecordIfNew records url under version v unless any version already
// holds it. Returns true if the link was recorded.
func (c *Cache) RecordIfNew(v wikimap.VersionID, url, title string) bool {
	return c.Record(v, wikimap.Link{URL: url, Title: title})
}

// Record is like RecordIfNew but keeps the link's context.
// Links with an empty or namespaced URL are rejected.
func (c *Cache) Record(v wikimap.VersionID, link wikimap.Link) bool {
	link.URL = strings.TrimSpace(link.URL)
	if !wikimap.IsValidLinkURL(link.URL) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.owners[link.URL]; ok {
		return false
	}
	c.owners[link.URL] = v
	c.entries[v] = append(c.entries[v], link)
	return true
}

// ExistsAnywhere reports whether any version holds url.
func (c *Cache) ExistsAnywhere(url string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.owners[strings.TrimSpace(url)]
	return ok
}

// Owner returns the version holding url.
func (c *Cache) Owner(url string) (wikimap.VersionID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.owners[strings.TrimSpace(url)]
	return v, ok
}

// Remove deletes url from version v. Returns false if v does not hold url.
func (c *Cache) Remove(v wikimap.VersionID, url string) bool {
	url = strings.TrimSpace(url)

	c.mu.Lock()
	defer c.mu.Unlock()
	if owner, ok := c.owners[url]; !ok || owner != v {
		return false
	}
	delete(c.owners, url)
	c.entries[v] = keep(c.entries[v], func(l wikimap.Link) bool {
		return l.URL != url
	})
	return true
}

// Entries returns a copy of the links of version v in recording order.
func (c *Cache) Entries(v wikimap.VersionID) []wikimap.Link {
	c.mu.RLock()
	defer c.mu.RUnlock()
	links := c.entries[v]
	out := make([]wikimap.Link, len(links))
	copy(out, links)
	return out
}

// Len returns the number of links held by version v.
func (c *Cache) Len(v wikimap.VersionID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries[v])
}

// Versions returns the versions holding at least one link, in ascending order.
func (c *Cache) Versions() []wikimap.VersionID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]wikimap.VersionID, 0, len(c.entries))
	for v, links := range c.entries {
		if len(links) > 0 {
			ids = append(ids, v)
		}
	}
	wikimap.SortVersions(ids)
	return ids
}

// Snapshot returns a deep copy of the cache contents.
func (c *Cache) Snapshot() wikimap.VersionMap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := make(wikimap.VersionMap, len(c.entries))
	for v, links := range c.entries {
		if len(links) == 0 {
			continue
		}
		out := make([]wikimap.Link, len(links))
		copy(out, links)
		m[v] = out
	}
	return m
}

// Merge records every link of m, visiting versions in ascending order.
// Links already held by some version are skipped. Returns the number of
// links recorded.
func (c *Cache) Merge(m wikimap.VersionMap) int {
	ids := make([]wikimap.VersionID, 0, len(m))
	for v := range m {
		ids = append(ids, v)
	}
	wikimap.SortVersions(ids)

	var n int
	for _, v := range ids {
		for _, link := range m[v] {
			if c.Record(v, link) {
				n++
			}
		}
	}
	return n
}

// Compact rebuilds the links of version v, dropping repeated URLs and
// links that no longer pass the filter. Returns the number of links removed.
func (c *Cache) Compact(v wikimap.VersionID, opts CompactOptions) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	links := c.entries[v]
	seenURLs := make(map[string]bool, len(links))
	seenTitles := make(map[string]bool)
	compacted := keep(links, func(l wikimap.Link) bool {
		if seenURLs[l.URL] || !wikimap.IsUsable(l) {
			return false
		}
		if opts.DedupTitles {
			title := strings.ToLower(strings.TrimSpace(l.Title))
			if title != "" && seenTitles[title] {
				return false
			}
			seenTitles[title] = true
		}
		seenURLs[l.URL] = true
		return true
	})

	for _, l := range links {
		if !seenURLs[l.URL] && c.owners[l.URL] == v {
			delete(c.owners, l.URL)
		}
	}
	c.entries[v] = compacted
	return len(links) - len(compacted)
}

// keep returns a new slice holding the links for which pred is true.
func keep(links []wikimap.Link, pred func(wikimap.Link) bool) []wikimap.Link {
	out := make([]wikimap.Link, 0, len(links))
	for _, l := range links {
		if pred(l) {
			out = append(out, l)
		}
	}
	return out
}
