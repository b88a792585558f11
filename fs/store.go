// Package fs provides file-based sinks for crawl results.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/wikimap"
)

// Ensure JSONStore implements wikimap.MapStore at compile time.
var _ wikimap.MapStore = (*JSONStore)(nil)

// JSONStore keeps the version map as a single indented JSON document
// keyed by version id.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSONStore backed by the file at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

// SaveMap writes m to a temporary file next to the target and renames it
// into place, so readers never observe a partial document.
func (s *JSONStore) SaveMap(ctx context.Context, m wikimap.VersionMap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil {
		m = wikimap.VersionMap{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// LoadMap reads the saved map.
// Returns ENOTFOUND if no map has been saved.
func (s *JSONStore) LoadMap(ctx context.Context) (wikimap.VersionMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, wikimap.Errorf(wikimap.ENOTFOUND, "no saved map at %s", s.path)
	}
	if err != nil {
		return nil, err
	}
	var m wikimap.VersionMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, wikimap.Errorf(wikimap.EINVALID, "decode map %s: %v", s.path, err)
	}
	return m, nil
}
