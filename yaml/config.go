// Package yaml loads wikimap configuration files.
package yaml

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/fwojciec/wikimap"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML file at path over wikimap.DefaultConfig and
// validates the result. Fields absent from the file keep their defaults.
// Returns ENOTFOUND if the file does not exist and EINVALID if it cannot
// be decoded or names an unknown field.
func LoadConfig(path string) (*wikimap.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wikimap.Errorf(wikimap.ENOTFOUND, "config file not found: %s", path)
		}
		return nil, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML data over wikimap.DefaultConfig.
func ParseConfig(data []byte) (*wikimap.Config, error) {
	cfg := wikimap.DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, wikimap.Errorf(wikimap.EINVALID, "decode config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
