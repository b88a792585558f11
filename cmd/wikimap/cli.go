package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/crawl"
	"github.com/fwojciec/wikimap/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *wikimap.Config

	Resolver wikimap.VersionResolver
	Mapper   *crawl.Mapper
	Reader   wikimap.PageReader

	// Stores receive the finished map. The first one is also read back
	// when resuming.
	Stores []wikimap.MapStore

	// Pages writes page content to disk for "read --out".
	Pages *fs.Writer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" env:"WIKIMAP_CONFIG" type:"path" help:"YAML configuration file"`
	Verbose bool   `short:"v" help:"Log every fetch and mapped page"`

	Versions VersionsCmd `cmd:"" help:"Resolve wiki versions from the revision history"`
	Map      MapCmd      `cmd:"" help:"Map the pages of every available wiki version"`
	Read     ReadCmd     `cmd:"" help:"Extract the content and links of a single wiki page"`
}

// VersionsCmd is the "versions" subcommand.
type VersionsCmd struct {
	JSON   bool `help:"Print the resolution as JSON"`
	Latest bool `help:"Print only the latest available version"`
}

// MapCmd is the "map" subcommand.
type MapCmd struct {
	Version     string `short:"V" help:"Map a single version (e.g. 11.05)" xor:"selection"`
	Latest      bool   `short:"l" help:"Map only the latest available version" xor:"selection"`
	Out         string `short:"o" default:"wikimap.json" type:"path" help:"JSON output file (empty to skip)"`
	DB          string `env:"WIKIMAP_DB" type:"path" help:"SQLite database receiving the map"`
	Resume      bool   `help:"Seed the crawl with the previously saved map"`
	Concurrency int    `help:"Versions mapped at once (0 = all)"`
	MaxPages    int    `help:"Pages fetched per version (0 = configured default)"`
}

// ReadCmd is the "read" subcommand.
type ReadCmd struct {
	URL      string `arg:"" help:"Wiki page URL"`
	Markdown bool   `short:"m" help:"Include a markdown rendering of the page"`
	Map      string `type:"path" help:"Saved JSON map whose links are merged into the page's hyperlinks"`
	Out      string `short:"o" type:"path" help:"Directory to write the page to as markdown"`
}
