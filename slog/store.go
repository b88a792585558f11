package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/wikimap"
)

// Ensure LoggingStore implements wikimap.MapStore.
var _ wikimap.MapStore = (*LoggingStore)(nil)

// LoggingStore wraps a MapStore with logging.
type LoggingStore struct {
	next   wikimap.MapStore
	logger *slog.Logger
	name   string
}

// NewLoggingStore creates a new LoggingStore. name identifies the sink in
// log records.
func NewLoggingStore(next wikimap.MapStore, name string, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, name: name, logger: logger}
}

// SaveMap delegates to the wrapped store and logs the operation.
func (s *LoggingStore) SaveMap(ctx context.Context, m wikimap.VersionMap) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save map",
			"store", s.name,
			"versions", len(m),
			"links", m.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveMap(ctx, m)
}

// LoadMap delegates to the wrapped store and logs the operation.
func (s *LoggingStore) LoadMap(ctx context.Context) (m wikimap.VersionMap, err error) {
	defer func(begin time.Time) {
		s.logger.Info("load map",
			"store", s.name,
			"versions", len(m),
			"links", m.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadMap(ctx)
}
