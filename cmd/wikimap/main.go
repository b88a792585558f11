package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/crawl"
	"github.com/fwojciec/wikimap/etree"
	"github.com/fwojciec/wikimap/fs"
	"github.com/fwojciec/wikimap/goquery"
	"github.com/fwojciec/wikimap/htmltomarkdown"
	wikihttp "github.com/fwojciec/wikimap/http"
	"github.com/fwojciec/wikimap/readability"
	wikislog "github.com/fwojciec/wikimap/slog"
	"github.com/fwojciec/wikimap/sqlite"
	"github.com/fwojciec/wikimap/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by the map store, when requested.
	DB *sqlite.DB

	// Transport, if set, builds the transport of every HTTP session.
	// Used for end-to-end testing.
	Transport func() http.RoundTripper
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("wikimap"),
		kong.Description("Map the versioned WICE wiki and extract page content"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'wikimap --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Set WIKIMAP_CONFIG or pass --config to use a different configuration file")
		return err
	}
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Config = cfg
	deps.Logger = logger

	policy := crawl.FetchPolicy{
		RetryDelays: cfg.RetryDelays,
		RenewDelay:  cfg.RenewDelay,
		Logger: func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		},
	}
	sessionOpts := []wikihttp.Option{wikihttp.WithTimeout(cfg.FetchTimeout)}
	if m.Transport != nil {
		sessionOpts = append(sessionOpts, wikihttp.WithTransport(m.Transport))
	}
	newFetcher := func() wikimap.Fetcher {
		return wikislog.NewLoggingFetcher(wikihttp.NewSession(sessionOpts...), logger)
	}
	links := goquery.NewLinkExtractor(goquery.WithXMLExtractor(etree.NewLinkExtractor()))

	switch kongCtx.Command() {
	case "versions", "map":
		deps.Resolver = wikislog.NewLoggingResolver(&crawl.Resolver{
			Fetcher:            newFetcher(),
			Parser:             goquery.NewVersionParser(),
			RevisionHistoryURL: cfg.RevisionHistoryURL,
			HomepageTemplate:   cfg.HomepageTemplate,
			Policy:             policy,
		}, logger)
	}

	if kongCtx.Command() == "map" {
		concurrency := cfg.Concurrency
		if cli.Map.Concurrency > 0 {
			concurrency = cli.Map.Concurrency
		}
		maxPages := cfg.MaxPages
		if cli.Map.MaxPages > 0 {
			maxPages = cli.Map.MaxPages
		}
		deps.Mapper = &crawl.Mapper{
			Cache:          crawl.NewCache(),
			NewFetcher:     newFetcher,
			Links:          links,
			RateLimiter:    crawl.NewDomainLimiter(cfg.RequestsPerSecond),
			Policy:         policy,
			MaxPages:       maxPages,
			SubflowMarkers: cfg.SubflowMarkers,
			Concurrency:    concurrency,
			Compact:        crawl.CompactOptions{DedupTitles: cfg.DedupTitles},
		}

		if cli.Map.Out != "" {
			deps.Stores = append(deps.Stores, wikislog.NewLoggingStore(fs.NewJSONStore(cli.Map.Out), "json", logger))
		}
		if cli.Map.DB != "" {
			m.DB = sqlite.NewDB(cli.Map.DB)
			if err := m.DB.Open(); err != nil {
				fmt.Fprintln(stderr, "Hint: Set WIKIMAP_DB to use a different database path")
				return fmt.Errorf("failed to open database at %q: %w", cli.Map.DB, err)
			}
			defer m.Close()
			deps.Stores = append(deps.Stores, wikislog.NewLoggingStore(sqlite.NewMapStore(m.DB), "sqlite", logger))
		}
	}

	if kongCtx.Command() == "read <url>" {
		cache := crawl.NewCache()
		if cli.Read.Map != "" {
			saved, err := fs.NewJSONStore(cli.Read.Map).LoadMap(ctx)
			if err != nil {
				return fmt.Errorf("failed to load map %q: %w", cli.Read.Map, err)
			}
			cache.Merge(saved)
		}
		reader := &crawl.Reader{
			Fetcher:          newFetcher(),
			Content:          goquery.NewContentExtractor(),
			Links:            links,
			Fallback:         readability.NewExtractor(),
			Cache:            cache,
			HomepageTemplate: cfg.HomepageTemplate,
			Policy:           policy,
		}
		if cli.Read.Markdown {
			reader.Converter = htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(origin(cli.Read.URL)))
		}
		deps.Reader = reader
		if cli.Read.Out != "" {
			deps.Pages = fs.NewWriter(cli.Read.Out)
		}
	}

	return kongCtx.Run(deps)
}

// loadConfig reads the configuration file at path, or returns the
// defaults when path is empty.
func loadConfig(path string) (*wikimap.Config, error) {
	if path == "" {
		return wikimap.DefaultConfig(), nil
	}
	return yaml.LoadConfig(path)
}
