// Package http provides an HTTP-based implementation of wikimap.Fetcher
// for the statically rendered wiki.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/wikimap"
	"golang.org/x/net/publicsuffix"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = wikimap.DefaultFetchTimeout

// RateLimitSentinel marks a throttled response. The wiki returns it inside
// a 200 body instead of answering 429.
const RateLimitSentinel = "too many requests"

// NotFoundMarker marks a soft-404 page served with status 200.
const NotFoundMarker = "Not Found"

// ProbeRateLimitedReason is the Reason of a throttled probe.
const ProbeRateLimitedReason = "rate limited"

// DefaultHeaders identify the session as a regular desktop browser.
// Accept-Encoding is left to the transport so responses are decompressed.
var DefaultHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Ensure Session implements wikimap.Fetcher at compile time.
var _ wikimap.Fetcher = (*Session)(nil)

// Session retrieves wiki pages with a fixed header set and a cookie jar.
// It tracks how many requests it has served so that callers can see when
// the wiki starts throttling. A Session is safe for concurrent use, but
// its accounting is meant to belong to a single crawl.
type Session struct {
	mu      sync.Mutex
	client  *http.Client
	timeout time.Duration
	headers map[string]string
	stats   wikimap.SessionStats

	// newTransport builds the transport of each fresh client.
	newTransport func() http.RoundTripper
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.timeout = d
	}
}

// WithHeaders replaces the default header set.
func WithHeaders(headers map[string]string) Option {
	return func(s *Session) {
		s.headers = headers
	}
}

// WithTransport sets the factory used to build the transport of every
// client the session creates, including after Renew.
func WithTransport(fn func() http.RoundTripper) Option {
	return func(s *Session) {
		s.newTransport = fn
	}
}

// NewSession creates a new HTTP session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		timeout: DefaultFetchTimeout,
		headers: DefaultHeaders,
		newTransport: func() http.RoundTripper {
			return http.DefaultTransport.(*http.Transport).Clone()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.client = s.newClient()
	return s
}

func (s *Session) newClient() *http.Client {
	// cookiejar.New only fails on a nil-safe options misuse; PSL is static.
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &http.Client{
		Timeout:   s.timeout,
		Jar:       jar,
		Transport: s.newTransport(),
	}
}

// current returns the active client.
func (s *Session) current() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// Fetch retrieves the body of url.
// The result is flagged RateLimited when the body carries the sentinel;
// otherwise the session's request counter is incremented.
func (s *Session) Fetch(ctx context.Context, url string) (*wikimap.FetchResult, error) {
	resp, err := s.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, wikimap.Errorf(wikimap.EHTTP, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}

	result := &wikimap.FetchResult{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if IsRateLimited(result.Body) {
		result.RateLimited = true
		if !s.stats.LimitReached {
			s.stats.LimitReached = true
			s.stats.LimitAt = s.stats.Requests
		}
		return result, nil
	}
	s.stats.Requests++
	return result, nil
}

// Probe checks that url answers a HEAD request with 200 and that the page
// is not a soft-404. A HEAD response has no body, so a 200 is followed by
// a GET whose body is inspected for NotFoundMarker. A throttled GET yields
// an unreachable result flagged RateLimited.
func (s *Session) Probe(ctx context.Context, url string) (*wikimap.ProbeResult, error) {
	resp, err := s.do(ctx, http.MethodHead, url)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	result := &wikimap.ProbeResult{URL: url, StatusCode: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		result.Reason = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return result, nil
	}

	page, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if page.RateLimited {
		result.RateLimited = true
		result.Reason = ProbeRateLimitedReason
		return result, nil
	}
	if strings.Contains(page.Body, NotFoundMarker) {
		result.Reason = NotFoundMarker
		return result, nil
	}
	result.Reachable = true
	return result, nil
}

// Renew discards the client and its cookies and starts a fresh session.
// The request counter and limit flag are reset.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.client
	s.client = s.newClient()
	renewals := s.stats.Renewals + 1
	s.stats = wikimap.SessionStats{Renewals: renewals}
	old.CloseIdleConnections()
}

// Stats returns the current request accounting.
func (s *Session) Stats() wikimap.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close releases idle connections.
func (s *Session) Close() error {
	s.current().CloseIdleConnections()
	return nil
}

func (s *Session) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, wikimap.Errorf(wikimap.EINVALID, "invalid request URL %q: %v", url, err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	return s.current().Do(req)
}

// IsRateLimited reports whether body carries the rate-limit sentinel.
func IsRateLimited(body string) bool {
	return strings.Contains(strings.ToLower(body), RateLimitSentinel)
}
