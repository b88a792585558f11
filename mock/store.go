package mock

import (
	"context"

	"github.com/fwojciec/wikimap"
)

var _ wikimap.MapStore = (*MapStore)(nil)

// MapStore is a mock implementation of wikimap.MapStore.
type MapStore struct {
	SaveMapFn func(ctx context.Context, m wikimap.VersionMap) error
	LoadMapFn func(ctx context.Context) (wikimap.VersionMap, error)
}

func (s *MapStore) SaveMap(ctx context.Context, m wikimap.VersionMap) error {
	return s.SaveMapFn(ctx, m)
}

func (s *MapStore) LoadMap(ctx context.Context) (wikimap.VersionMap, error) {
	return s.LoadMapFn(ctx)
}

var _ wikimap.PageReader = (*PageReader)(nil)

// PageReader is a mock implementation of wikimap.PageReader.
type PageReader struct {
	ReadFn func(ctx context.Context, url string) (*wikimap.PageContent, error)
}

func (r *PageReader) Read(ctx context.Context, url string) (*wikimap.PageContent, error) {
	return r.ReadFn(ctx, url)
}
