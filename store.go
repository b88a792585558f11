package wikimap

import "context"

// MapStore persists a complete version map. Persistence is an optional
// sink; crawling never depends on it.
type MapStore interface {
	// SaveMap writes the map, replacing what was previously saved.
	SaveMap(ctx context.Context, m VersionMap) error

	// LoadMap returns the last saved map.
	// Returns ENOTFOUND if nothing has been saved.
	LoadMap(ctx context.Context) (VersionMap, error)
}
