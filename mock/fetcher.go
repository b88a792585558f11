package mock

import (
	"context"

	"github.com/fwojciec/wikimap"
)

var _ wikimap.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of wikimap.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*wikimap.FetchResult, error)
	ProbeFn func(ctx context.Context, url string) (*wikimap.ProbeResult, error)
	RenewFn func()
	StatsFn func() wikimap.SessionStats
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*wikimap.FetchResult, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Probe(ctx context.Context, url string) (*wikimap.ProbeResult, error) {
	return f.ProbeFn(ctx, url)
}

func (f *Fetcher) Renew() {
	f.RenewFn()
}

func (f *Fetcher) Stats() wikimap.SessionStats {
	return f.StatsFn()
}

var _ wikimap.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of wikimap.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
