package crawl

import (
	"strings"
	"sync"

	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/bloom"
)

// Frontier sizing for one version crawl.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate of the seen set.
	frontierFalsePositiveRate = 0.01
)

// Frontier is a FIFO queue of links waiting to be fetched with Bloom filter
// deduplication. A false positive skips a URL that was never seen.
// It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []wikimap.Link
}

// NewFrontier creates a new Frontier sized for n expected URLs
// with the given false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{seen: bloom.NewFilter(n, fpRate)}
}

// Push appends a link to the queue.
// Returns false if the URL has already been seen.
// URL fragments are stripped before deduplication.
func (f *Frontier) Push(link wikimap.Link) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	link.URL = StripFragment(link.URL)
	if f.seen.TestAndAdd(link.URL) {
		return false
	}
	f.queue = append(f.queue, link)
	return true
}

// Revisit appends a link to the queue even if it has been seen before.
func (f *Frontier) Revisit(link wikimap.Link) {
	f.mu.Lock()
	defer f.mu.Unlock()

	link.URL = StripFragment(link.URL)
	f.seen.Add(link.URL)
	f.queue = append(f.queue, link)
}

// MarkSeen records url as seen without queuing it.
func (f *Frontier) MarkSeen(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen.Add(StripFragment(url))
}

// Pop returns the oldest queued link.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (wikimap.Link, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return wikimap.Link{}, false
	}
	link := f.queue[0]
	f.queue[0] = wikimap.Link{}
	f.queue = f.queue[1:]
	return link, true
}

// Len returns the number of links in the queue.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen returns true if the URL has been queued or processed.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(StripFragment(url))
}

// SeenCount returns the approximate number of distinct URLs seen.
func (f *Frontier) SeenCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.EstimatedCount()
}

// StripFragment removes the fragment from url.
func StripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
