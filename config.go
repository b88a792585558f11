package wikimap

import (
	"strings"
	"time"
)

// Default configuration values.
const (
	// DefaultFetchTimeout bounds every individual request.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultRenewDelay is the pause before retrying on a renewed session.
	DefaultRenewDelay = 3 * time.Second

	// DefaultRequestsPerSecond is the politeness limit per wiki host.
	DefaultRequestsPerSecond = 5.0

	// DefaultMaxPages limits the pages fetched per version crawl.
	DefaultMaxPages = 1000
)

// DefaultSubflowMarkers name the walk-through pages re-walked after a
// version's crawl settles.
var DefaultSubflowMarkers = []string{"/Quick_Start"}

// DefaultRetryDelays returns the backoff delays for network failures.
// Two delays allow three attempts in total.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second}
}

// Config holds the crawler configuration.
type Config struct {
	RevisionHistoryURL string `yaml:"revision_history_url"`
	HomepageTemplate   string `yaml:"homepage_template"`

	FetchTimeout time.Duration   `yaml:"fetch_timeout"`
	RetryDelays  []time.Duration `yaml:"retry_delays"`
	RenewDelay   time.Duration   `yaml:"renew_delay"`

	// RequestsPerSecond limits requests per host. Zero disables the limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Concurrency caps the number of versions crawled at once.
	// Zero means one worker per version.
	Concurrency int `yaml:"concurrency"`

	// MaxPages bounds the pages fetched per version. Zero selects
	// DefaultMaxPages.
	MaxPages       int      `yaml:"max_pages"`
	SubflowMarkers []string `yaml:"subflow_markers"`

	// DedupTitles also drops later links sharing an anchor title with an
	// earlier one. It reproduces an older output format and can discard
	// distinct pages, so it is off by default.
	DedupTitles bool `yaml:"dedup_titles"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		RevisionHistoryURL: DefaultRevisionHistoryURL,
		HomepageTemplate:   DefaultHomepageTemplate,
		FetchTimeout:       DefaultFetchTimeout,
		RetryDelays:        DefaultRetryDelays(),
		RenewDelay:         DefaultRenewDelay,
		RequestsPerSecond:  DefaultRequestsPerSecond,
		MaxPages:           DefaultMaxPages,
		SubflowMarkers:     append([]string(nil), DefaultSubflowMarkers...),
	}
}

// Validate returns an error if the configuration contains invalid fields.
func (c *Config) Validate() error {
	if c.RevisionHistoryURL == "" {
		return Errorf(EINVALID, "revision history URL required")
	}
	if !strings.Contains(c.HomepageTemplate, VersionPlaceholder) {
		return Errorf(EINVALID, "homepage template must contain %s", VersionPlaceholder)
	}
	if c.FetchTimeout <= 0 {
		return Errorf(EINVALID, "fetch timeout must be positive")
	}
	for _, d := range c.RetryDelays {
		if d < 0 {
			return Errorf(EINVALID, "retry delays must be non-negative")
		}
	}
	if c.RenewDelay < 0 {
		return Errorf(EINVALID, "renew delay must be non-negative")
	}
	if c.RequestsPerSecond < 0 {
		return Errorf(EINVALID, "requests per second must be non-negative")
	}
	if c.Concurrency < 0 {
		return Errorf(EINVALID, "concurrency must be non-negative")
	}
	if c.MaxPages < 0 {
		return Errorf(EINVALID, "max pages must be non-negative")
	}
	return nil
}
