// Package slog provides logging decorators built on log/slog.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikimap"
)

// Ensure LoggingFetcher implements wikimap.Fetcher.
var _ wikimap.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   wikimap.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next wikimap.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (result *wikimap.FetchResult, err error) {
	defer func(begin time.Time) {
		var bytes int
		var limited bool
		if result != nil {
			bytes = len(result.Body)
			limited = result.RateLimited
		}
		f.logger.Debug("fetch",
			"url", url,
			"bytes", bytes,
			"rate_limited", limited,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Probe delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Probe(ctx context.Context, url string) (result *wikimap.ProbeResult, err error) {
	defer func(begin time.Time) {
		var reachable, limited bool
		var reason string
		if result != nil {
			reachable = result.Reachable
			limited = result.RateLimited
			reason = result.Reason
		}
		f.logger.Debug("probe",
			"url", url,
			"reachable", reachable,
			"rate_limited", limited,
			"reason", reason,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Probe(ctx, url)
}

// Renew delegates to the wrapped fetcher and logs the session accounting
// that is being discarded.
func (f *LoggingFetcher) Renew() {
	stats := f.next.Stats()
	f.logger.Info("session renewed",
		"requests", stats.Requests,
		"limit_reached", stats.LimitReached,
		"limit_at", stats.LimitAt,
		"renewals", stats.Renewals+1,
	)
	f.next.Renew()
}

// Stats delegates to the wrapped fetcher.
func (f *LoggingFetcher) Stats() wikimap.SessionStats {
	return f.next.Stats()
}
