package wikimap

import "context"

// FetchResult is the body of a successful (2xx) GET.
type FetchResult struct {
	URL        string
	StatusCode int
	Body       string

	// RateLimited is set when the body carries the soft rate-limit
	// sentinel. The wiki answers throttled requests with status 200, so
	// the caller decides whether to renew the session and retry.
	RateLimited bool
}

// ProbeResult is the outcome of checking whether a URL is reachable.
type ProbeResult struct {
	URL        string
	StatusCode int
	Reachable  bool

	// Reason explains an unreachable result (e.g. "HTTP 404", "Not Found").
	Reason string

	// RateLimited is set when the page check was throttled. The result is
	// then unreachable because the page could not be inspected.
	RateLimited bool
}

// SessionStats reports the request accounting of one session.
type SessionStats struct {
	// Requests counts successful fetches since the session was last renewed.
	Requests int

	// LimitReached is set once a response carried the rate-limit sentinel.
	LimitReached bool

	// LimitAt is the request count at which the limit was reached.
	LimitAt int

	// Renewals counts how many times the session has been replaced.
	Renewals int
}

// Fetcher retrieves wiki pages over a renewable HTTP session.
// A Fetcher holds per-crawl state and must not be shared between crawls.
type Fetcher interface {
	// Fetch retrieves url with a GET request. Non-2xx responses are
	// returned as EHTTP errors.
	Fetch(ctx context.Context, url string) (*FetchResult, error)

	// Probe checks whether url is reachable: status 200 and no soft-404
	// marker in the page body.
	Probe(ctx context.Context, url string) (*ProbeResult, error)

	// Renew discards the underlying client and cookies and starts a fresh
	// session, resetting the request counter and limit flag.
	Renew()

	// Stats returns the current request accounting.
	Stats() SessionStats
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
