package crawl

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/wikimap"
)

var _ wikimap.VersionResolver = (*Resolver)(nil)

// Resolver discovers wiki versions from the software revision history and
// validates each version's homepage. Classifications are remembered for the
// lifetime of the Resolver: a version is probed at most once and is never
// both available and unavailable.
type Resolver struct {
	Fetcher wikimap.Fetcher
	Parser  wikimap.VersionParser

	// RevisionHistoryURL defaults to wikimap.DefaultRevisionHistoryURL.
	RevisionHistoryURL string

	// HomepageTemplate defaults to wikimap.DefaultHomepageTemplate.
	HomepageTemplate string

	Policy FetchPolicy

	mu          sync.Mutex
	available   map[wikimap.VersionID]string
	unavailable map[wikimap.VersionID]string
	records     []wikimap.VersionRecord
}

// Resolve fetches the revision history and classifies every announced
// version not classified before. Failing to fetch or parse the revision
// history returns an ERESOLUTION error. Probe failures mark the version
// unavailable and do not fail the resolution.
func (r *Resolver) Resolve(ctx context.Context) (*wikimap.Resolution, error) {
	historyURL := r.RevisionHistoryURL
	if historyURL == "" {
		historyURL = wikimap.DefaultRevisionHistoryURL
	}

	page, err := FetchPage(ctx, r.Fetcher, historyURL, r.Policy)
	if err != nil {
		return nil, wikimap.Errorf(wikimap.ERESOLUTION, "fetch revision history %s: %v", historyURL, err)
	}
	ids, err := r.Parser.ParseVersions(page.Body)
	if err != nil {
		return nil, wikimap.Errorf(wikimap.ERESOLUTION, "parse revision history: %v", err)
	}

	for _, id := range ids {
		if r.classified(id) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.classify(r.probe(ctx, id))
	}

	return r.resolution(), nil
}

// HomepageFor returns the homepage of an available version.
// Returns ENOTFOUND if the version is unknown or unavailable.
func (r *Resolver) HomepageFor(id wikimap.VersionID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if url, ok := r.available[id]; ok {
		return url, nil
	}
	if reason, ok := r.unavailable[id]; ok {
		return "", wikimap.Errorf(wikimap.ENOTFOUND, "version %s is unavailable: %s", id, reason)
	}
	return "", wikimap.Errorf(wikimap.ENOTFOUND, "version %s not found", id)
}

// Exists reports whether id has been resolved as available.
func (r *Resolver) Exists(id wikimap.VersionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.available[id]
	return ok
}

func (r *Resolver) probe(ctx context.Context, id wikimap.VersionID) wikimap.VersionRecord {
	template := r.HomepageTemplate
	if template == "" {
		template = wikimap.DefaultHomepageTemplate
	}
	rec := wikimap.VersionRecord{ID: id, HomepageURL: wikimap.HomepageURL(template, id)}

	result, err := r.Fetcher.Probe(ctx, rec.HomepageURL)
	if err == nil && result.RateLimited {
		result, err = r.reprobe(ctx, rec.HomepageURL)
	}
	switch {
	case err != nil:
		rec.Reason = err.Error()
	case !result.Reachable:
		rec.Reason = result.Reason
	default:
		rec.Reachable = true
	}
	return rec
}

// reprobe renews the session, waits the policy's RenewDelay and probes url
// once more.
func (r *Resolver) reprobe(ctx context.Context, url string) (*wikimap.ProbeResult, error) {
	if r.Policy.Logger != nil {
		r.Policy.Logger("probe of %s rate limited, renewing session", url)
	}
	r.Fetcher.Renew()
	if err := sleep(ctx, r.Policy.RenewDelay); err != nil {
		return nil, err
	}
	return r.Fetcher.Probe(ctx, url)
}

func (r *Resolver) classified(id wikimap.VersionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.available[id]
	if !ok {
		_, ok = r.unavailable[id]
	}
	return ok
}

func (r *Resolver) classify(rec wikimap.VersionRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.available == nil {
		r.available = make(map[wikimap.VersionID]string)
		r.unavailable = make(map[wikimap.VersionID]string)
	}
	if rec.Reachable {
		r.available[rec.ID] = rec.HomepageURL
	} else {
		r.unavailable[rec.ID] = fmt.Sprintf("%s - %s", rec.HomepageURL, rec.Reason)
	}
	r.records = append(r.records, rec)
}

// resolution returns a copy of everything classified so far.
func (r *Resolver) resolution() *wikimap.Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := &wikimap.Resolution{
		Available:   make(map[wikimap.VersionID]string, len(r.available)),
		Unavailable: make(map[wikimap.VersionID]string, len(r.unavailable)),
		Records:     append([]wikimap.VersionRecord(nil), r.records...),
	}
	for id, url := range r.available {
		res.Available[id] = url
	}
	for id, diag := range r.unavailable {
		res.Unavailable[id] = diag
	}
	return res
}
