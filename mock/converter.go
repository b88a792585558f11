package mock

import "github.com/fwojciec/wikimap"

var _ wikimap.Converter = (*Converter)(nil)

// Converter is a mock implementation of wikimap.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
