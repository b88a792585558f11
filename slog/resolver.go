package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikimap"
)

// Ensure LoggingResolver implements wikimap.VersionResolver.
var _ wikimap.VersionResolver = (*LoggingResolver)(nil)

// LoggingResolver wraps a VersionResolver with logging.
type LoggingResolver struct {
	next   wikimap.VersionResolver
	logger *slog.Logger
}

// NewLoggingResolver creates a new LoggingResolver.
func NewLoggingResolver(next wikimap.VersionResolver, logger *slog.Logger) *LoggingResolver {
	return &LoggingResolver{next: next, logger: logger}
}

// Resolve delegates to the wrapped resolver and logs every unavailable
// version with its diagnostic.
func (r *LoggingResolver) Resolve(ctx context.Context) (res *wikimap.Resolution, err error) {
	defer func(begin time.Time) {
		var available, unavailable int
		if res != nil {
			available, unavailable = len(res.Available), len(res.Unavailable)
			for _, rec := range res.Records {
				if !rec.Reachable {
					r.logger.Warn("version unavailable", "version", rec.ID, "url", rec.HomepageURL, "reason", rec.Reason)
				}
			}
		}
		r.logger.Info("version resolution",
			"available", available,
			"unavailable", unavailable,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Resolve(ctx)
}
