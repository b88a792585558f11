package crawl

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/wikimap"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle state of one version crawl.
type State int

const (
	StateSeeded State = iota
	StateDiscovering
	StateSettled
	StateRateLimited
)

func (s State) String() string {
	switch s {
	case StateSeeded:
		return "seeded"
	case StateDiscovering:
		return "discovering"
	case StateSettled:
		return "settled"
	case StateRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// VersionResult holds the outcome of mapping one version.
type VersionResult struct {
	Version wikimap.VersionID
	State   State

	// Pages counts fetched pages; Failed counts fetches that still failed
	// after retries.
	Pages  int
	Failed int

	// Links is the number of links the cache holds for the version.
	Links int

	// Removed counts links dropped by the final compaction.
	Removed int

	// Seen approximates the distinct URLs the first walk considered.
	Seen uint

	// Err is set when the crawl stopped early because of rate limiting.
	Err error

	// Stats is the request accounting of the crawl's session.
	Stats    wikimap.SessionStats
	Duration time.Duration
}

// ProgressEvent reports progress during a mapping operation.
type ProgressEvent struct {
	Type    ProgressType
	Version wikimap.VersionID
	URL     string

	// Pages is the number of pages fetched so far; Found is the number of
	// links the version holds so far.
	Pages int
	Found int
	Error error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressRateLimited
	ProgressFinished
)

// ProgressFunc is a callback for reporting mapping progress.
// MapAll calls it from several goroutines at once.
type ProgressFunc func(event ProgressEvent)

// Mapper walks wiki versions breadth-first and records every usable page
// link in a shared Cache.
type Mapper struct {
	Cache *Cache

	// NewFetcher returns a fresh session for each version crawl so that
	// request counters and rate-limit flags are never shared.
	NewFetcher func() wikimap.Fetcher

	Links       wikimap.LinkExtractor
	RateLimiter wikimap.DomainLimiter
	Policy      FetchPolicy

	// MaxPages bounds the fetches of one version crawl.
	// Zero selects wikimap.DefaultMaxPages.
	MaxPages int

	// SubflowMarkers select cached pages that are walked again after the
	// crawl settles. Nil selects wikimap.DefaultSubflowMarkers.
	// The re-fetches count against MaxPages.
	SubflowMarkers []string

	// Concurrency caps the versions mapped at once by MapAll.
	// Zero maps every version concurrently.
	Concurrency int

	Compact CompactOptions
}

// MapAll maps every reachable record concurrently, one worker per version.
// A rate-limited version does not stop the others. The error is non-nil
// only when ctx is canceled; the partial results are returned with it.
func (m *Mapper) MapAll(ctx context.Context, recs []wikimap.VersionRecord, progress ProgressFunc) (map[wikimap.VersionID]*VersionResult, error) {
	var reachable []wikimap.VersionRecord
	for _, rec := range recs {
		if rec.Reachable {
			reachable = append(reachable, rec)
		}
	}

	var mu sync.Mutex
	results := make(map[wikimap.VersionID]*VersionResult, len(reachable))
	if len(reachable) == 0 {
		return results, nil
	}

	limit := m.Concurrency
	if limit <= 0 || limit > len(reachable) {
		limit = len(reachable)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, rec := range reachable {
		g.Go(func() error {
			res, err := m.MapVersion(gctx, rec, progress)
			if res != nil {
				mu.Lock()
				results[rec.ID] = res
				mu.Unlock()
			}
			return err
		})
	}
	err := g.Wait()
	return results, err
}

// MapVersion crawls one version from its homepage until the frontier is
// exhausted, the page budget is spent or the wiki keeps rate limiting.
// A rate-limited crawl ends in StateRateLimited with its partial results
// and no error.
func (m *Mapper) MapVersion(ctx context.Context, rec wikimap.VersionRecord, progress ProgressFunc) (*VersionResult, error) {
	if !rec.Reachable || rec.HomepageURL == "" {
		return nil, wikimap.Errorf(wikimap.EINVALID, "version %s has no reachable homepage", rec.ID)
	}

	start := time.Now()
	w := &walker{
		Mapper:   m,
		fetcher:  m.NewFetcher(),
		rec:      rec,
		fetched:  make(map[string]struct{}),
		progress: progress,
		result:   &VersionResult{Version: rec.ID, State: StateSeeded},
	}

	m.Cache.RecordIfNew(rec.ID, rec.HomepageURL, wikimap.HomeTitle)
	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(wikimap.Link{URL: rec.HomepageURL, Title: wikimap.HomeTitle})
	w.emit(ProgressEvent{Type: ProgressStarted, URL: rec.HomepageURL})

	w.result.State = StateDiscovering
	err := w.walk(ctx, frontier)
	w.result.Seen = frontier.SeenCount()
	if err == nil && w.result.State != StateRateLimited {
		err = w.walk(ctx, w.subflowFrontier())
	}

	if w.result.State != StateRateLimited {
		w.result.Removed = m.Cache.Compact(rec.ID, m.Compact)
		if err == nil {
			w.result.State = StateSettled
		}
	}
	w.result.Links = m.Cache.Len(rec.ID)
	w.result.Stats = w.fetcher.Stats()
	w.result.Duration = time.Since(start)
	w.emit(ProgressEvent{Type: ProgressFinished, Error: w.result.Err})
	return w.result, err
}

// walker holds the state of one version crawl.
type walker struct {
	*Mapper
	fetcher  wikimap.Fetcher
	rec      wikimap.VersionRecord
	progress ProgressFunc

	// fetched holds the URLs fetched at least once. Their cache entries
	// are verified and survive later failures.
	fetched map[string]struct{}
	result   *VersionResult
}

// walk drains frontier. It returns nil when the frontier is exhausted, the
// page budget is spent or the crawl is rate limited, and ctx's error when
// canceled.
func (w *walker) walk(ctx context.Context, frontier *Frontier) error {
	host := hostOf(w.rec.HomepageURL)
	for {
		if w.result.Pages+w.result.Failed >= w.maxPages() {
			return nil
		}
		link, ok := frontier.Pop()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.RateLimiter != nil {
			if err := w.RateLimiter.Wait(ctx, host); err != nil {
				return err
			}
		}

		page, err := FetchPage(ctx, w.fetcher, link.URL, w.Policy)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			var rle *RateLimitError
			if errors.As(err, &rle) {
				w.result.State = StateRateLimited
				w.result.Err = err
				w.emit(ProgressEvent{Type: ProgressRateLimited, URL: link.URL, Error: err})
				return nil
			}
			w.result.Failed++
			if w.pending(link.URL) {
				w.Cache.Remove(w.rec.ID, link.URL)
			}
			w.emit(ProgressEvent{Type: ProgressFailed, URL: link.URL, Error: err})
			continue
		}
		w.result.Pages++
		w.fetched[link.URL] = struct{}{}

		links, err := w.Links.ExtractLinks(page.Body, link.URL, w.rec.HomepageURL)
		if err != nil {
			w.emit(ProgressEvent{Type: ProgressFailed, URL: link.URL, Error: err})
			continue
		}
		for _, l := range links {
			w.consider(frontier, l)
		}
		w.emit(ProgressEvent{Type: ProgressCompleted, URL: link.URL})
	}
}

// pending reports whether url was recorded but never fetched. The seed is
// never pending.
func (w *walker) pending(url string) bool {
	if url == w.rec.HomepageURL {
		return false
	}
	_, ok := w.fetched[url]
	return !ok
}

// consider records a discovered link and queues it when it is a new page
// of the version being crawled.
func (w *walker) consider(frontier *Frontier, l wikimap.Link) {
	l.URL = StripFragment(strings.TrimSpace(l.URL))
	if l.URL == "" || frontier.Seen(l.URL) {
		return
	}
	if !wikimap.IsUsableURL(l.URL) || !w.inScope(l.URL) {
		frontier.MarkSeen(l.URL)
		return
	}
	if !wikimap.IsUsableTitle(l.Title) {
		return
	}
	if !w.Cache.Record(w.rec.ID, l) {
		frontier.MarkSeen(l.URL)
		return
	}
	if wikimap.IsMediaURL(l.URL) {
		frontier.MarkSeen(l.URL)
		return
	}
	frontier.Push(l)
}

// inScope reports whether u lives on the version's host and, when u names
// a version segment, on the version being crawled.
func (w *walker) inScope(u string) bool {
	if !wikimap.SameHost(u, w.rec.HomepageURL) {
		return false
	}
	if compact, ok := wikimap.VersionFromURL(u); ok {
		return compact == w.rec.ID.Compact()
	}
	return true
}

// subflowFrontier queues the cached pages matching a sub-flow marker, with
// every other cached URL already marked seen.
func (w *walker) subflowFrontier() *Frontier {
	markers := w.SubflowMarkers
	if markers == nil {
		markers = wikimap.DefaultSubflowMarkers
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	entries := w.Cache.Entries(w.rec.ID)
	for _, e := range entries {
		frontier.MarkSeen(e.URL)
	}
	for _, e := range entries {
		if e.URL != w.rec.HomepageURL && !wikimap.IsMediaURL(e.URL) && containsAny(e.URL, markers) {
			frontier.Revisit(e)
		}
	}
	return frontier
}

func (w *walker) maxPages() int {
	if w.MaxPages > 0 {
		return w.MaxPages
	}
	return wikimap.DefaultMaxPages
}

func (w *walker) emit(e ProgressEvent) {
	if w.progress == nil {
		return
	}
	e.Version = w.rec.ID
	e.Pages = w.result.Pages
	e.Found = w.Cache.Len(w.rec.ID)
	w.progress(e)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
