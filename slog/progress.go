package slog

import (
	"log/slog"

	"github.com/fwojciec/wikimap/crawl"
)

// ProgressLogger returns a crawl.ProgressFunc that writes each event as a
// structured record. Page-level events are logged at debug level.
func ProgressLogger(logger *slog.Logger) crawl.ProgressFunc {
	return func(e crawl.ProgressEvent) {
		attrs := []any{"version", e.Version, "pages", e.Pages, "found", e.Found}
		switch e.Type {
		case crawl.ProgressStarted:
			logger.Info("mapping started", append(attrs, "url", e.URL)...)
		case crawl.ProgressCompleted:
			logger.Debug("page mapped", append(attrs, "url", e.URL)...)
		case crawl.ProgressFailed:
			logger.Warn("page dropped", append(attrs, "url", e.URL, "err", e.Error)...)
		case crawl.ProgressRateLimited:
			logger.Warn("rate limited, stopping early", append(attrs, "url", e.URL, "err", e.Error)...)
		case crawl.ProgressFinished:
			logger.Info("mapping finished", attrs...)
		}
	}
}
