package mock

import (
	"context"

	"github.com/fwojciec/wikimap"
)

var _ wikimap.VersionParser = (*VersionParser)(nil)

// VersionParser is a mock implementation of wikimap.VersionParser.
type VersionParser struct {
	ParseVersionsFn func(html string) ([]wikimap.VersionID, error)
}

func (p *VersionParser) ParseVersions(html string) ([]wikimap.VersionID, error) {
	return p.ParseVersionsFn(html)
}

var _ wikimap.VersionResolver = (*VersionResolver)(nil)

// VersionResolver is a mock implementation of wikimap.VersionResolver.
type VersionResolver struct {
	ResolveFn func(ctx context.Context) (*wikimap.Resolution, error)
}

func (r *VersionResolver) Resolve(ctx context.Context) (*wikimap.Resolution, error) {
	return r.ResolveFn(ctx)
}
