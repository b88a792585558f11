package crawl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/crawl"
	"github.com/fwojciec/wikimap/goquery"
	"github.com/fwojciec/wikimap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const revisionHistory = `<html><body>
<pre>Version 11.05.2 (2024-03-01)
 - Improved logging</pre>
<pre>Version 11.04.7
 - Bug fixes</pre>
<pre>Version 11.05.1
 - Initial 11.05 release</pre>
<pre>Version 10.01</pre>
</body></html>`

// historyFetcher serves revision-history markup and answers probes from reachable.
func historyFetcher(history string, probes *[]string, reachable map[string]*wikimap.ProbeResult) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (*wikimap.FetchResult, error) {
			return page(url, history), nil
		},
		ProbeFn: func(_ context.Context, url string) (*wikimap.ProbeResult, error) {
			*probes = append(*probes, url)
			if res, ok := reachable[url]; ok {
				return res, nil
			}
			return &wikimap.ProbeResult{URL: url, StatusCode: 404, Reason: "HTTP 404"}, nil
		},
		StatsFn: func() wikimap.SessionStats { return wikimap.SessionStats{} },
		RenewFn: func() {},
	}
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	t.Run("maps reachable versions to their homepage", func(t *testing.T) {
		t.Parallel()

		var probes []string
		f := historyFetcher(revisionHistory, &probes, map[string]*wikimap.ProbeResult{
			home1105: {URL: home1105, StatusCode: 200, Reachable: true},
			home1104: {URL: home1104, StatusCode: 200, Reachable: true},
		})
		r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}

		res, err := r.Resolve(context.Background())
		require.NoError(t, err)

		assert.Equal(t, map[wikimap.VersionID]string{
			"11.05": home1105,
			"11.04": home1104,
		}, res.Available)
		assert.Equal(t, "https://wiki.alkit.se/wice1001/index.php/Main_Page - HTTP 404", res.Unavailable["10.01"])
		assert.Len(t, probes, 3, "duplicate announcements are probed once")

		latest, ok := res.Latest()
		require.True(t, ok)
		assert.Equal(t, wikimap.VersionID("11.05"), latest)
	})

	t.Run("rejects soft 404 homepages", func(t *testing.T) {
		t.Parallel()

		var probes []string
		f := historyFetcher(`<pre>Version 11.05</pre>`, &probes, map[string]*wikimap.ProbeResult{
			home1105: {URL: home1105, StatusCode: 200, Reason: "Not Found"},
		})
		r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}

		res, err := r.Resolve(context.Background())
		require.NoError(t, err)

		assert.Empty(t, res.Available)
		assert.Equal(t, home1105+" - Not Found", res.Unavailable["11.05"])
	})

	t.Run("marks probe errors unavailable", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*wikimap.FetchResult, error) {
				return page(url, `<pre>Version 11.05</pre>`), nil
			},
			ProbeFn: func(_ context.Context, _ string) (*wikimap.ProbeResult, error) {
				return nil, errors.New("dial tcp: no such host")
			},
		}
		r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}

		res, err := r.Resolve(context.Background())
		require.NoError(t, err)
		assert.Contains(t, res.Unavailable["11.05"], "no such host")
	})

	t.Run("renews session and probes again when throttled", func(t *testing.T) {
		t.Parallel()

		var probes, renewals int
		f := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*wikimap.FetchResult, error) {
				return page(url, `<pre>Version 11.05</pre>`), nil
			},
			ProbeFn: func(_ context.Context, url string) (*wikimap.ProbeResult, error) {
				probes++
				if renewals == 0 {
					return &wikimap.ProbeResult{URL: url, StatusCode: 200, Reason: "rate limited", RateLimited: true}, nil
				}
				return &wikimap.ProbeResult{URL: url, StatusCode: 200, Reachable: true}, nil
			},
			RenewFn: func() { renewals++ },
		}
		r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}

		res, err := r.Resolve(context.Background())
		require.NoError(t, err)

		assert.Equal(t, home1105, res.Available["11.05"])
		assert.Equal(t, 2, probes)
		assert.Equal(t, 1, renewals)
	})

	t.Run("marks version unavailable when still throttled after renewal", func(t *testing.T) {
		t.Parallel()

		var probes, renewals int
		f := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*wikimap.FetchResult, error) {
				return page(url, `<pre>Version 11.05</pre>`), nil
			},
			ProbeFn: func(_ context.Context, url string) (*wikimap.ProbeResult, error) {
				probes++
				return &wikimap.ProbeResult{URL: url, StatusCode: 200, Reason: "rate limited", RateLimited: true}, nil
			},
			RenewFn: func() { renewals++ },
		}
		r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}

		res, err := r.Resolve(context.Background())
		require.NoError(t, err)

		assert.Empty(t, res.Available)
		assert.Equal(t, home1105+" - rate limited", res.Unavailable["11.05"])
		assert.Equal(t, 2, probes, "one retry after renewal")
		assert.Equal(t, 1, renewals)
	})

	t.Run("never classifies a version twice", func(t *testing.T) {
		t.Parallel()

		var probes []string
		f := historyFetcher(revisionHistory, &probes, map[string]*wikimap.ProbeResult{
			home1105: {URL: home1105, StatusCode: 200, Reachable: true},
		})
		r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}

		_, err := r.Resolve(context.Background())
		require.NoError(t, err)
		res, err := r.Resolve(context.Background())
		require.NoError(t, err)

		assert.Len(t, probes, 3)
		assert.Len(t, res.Records, 3)
		for id := range res.Available {
			_, both := res.Unavailable[id]
			assert.False(t, both, "version %s is both available and unavailable", id)
		}
	})

	t.Run("returns resolution error when history cannot be fetched", func(t *testing.T) {
		t.Parallel()

		f := &mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (*wikimap.FetchResult, error) {
				return nil, errors.New("connection refused")
			},
		}
		r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}

		_, err := r.Resolve(context.Background())
		require.Error(t, err)
		assert.Equal(t, wikimap.ERESOLUTION, wikimap.ErrorCode(err))
		assert.Contains(t, wikimap.ErrorMessage(err), "connection refused")
	})

	t.Run("returns resolution error when history cannot be parsed", func(t *testing.T) {
		t.Parallel()

		var probes []string
		f := historyFetcher(revisionHistory, &probes, nil)
		parser := &mock.VersionParser{
			ParseVersionsFn: func(_ string) ([]wikimap.VersionID, error) {
				return nil, wikimap.Errorf(wikimap.EINVALID, "failed to parse HTML")
			},
		}
		r := &crawl.Resolver{Fetcher: f, Parser: parser, Policy: fastPolicy}

		_, err := r.Resolve(context.Background())
		assert.Equal(t, wikimap.ERESOLUTION, wikimap.ErrorCode(err))
		assert.Empty(t, probes)
	})

	t.Run("uses configured URLs", func(t *testing.T) {
		t.Parallel()

		var fetched string
		var probes []string
		f := historyFetcher(`<pre>Version 12.01</pre>`, &probes, nil)
		fetchFn := f.FetchFn
		f.FetchFn = func(ctx context.Context, url string) (*wikimap.FetchResult, error) {
			fetched = url
			return fetchFn(ctx, url)
		}
		r := &crawl.Resolver{
			Fetcher:            f,
			Parser:             goquery.NewVersionParser(),
			Policy:             fastPolicy,
			RevisionHistoryURL: "https://mirror.example.org/history",
			HomepageTemplate:   "https://mirror.example.org/<VERSION_NUMBER>/Main_Page",
		}

		_, err := r.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "https://mirror.example.org/history", fetched)
		assert.Equal(t, []string{"https://mirror.example.org/wice1201/Main_Page"}, probes)
	})
}

func TestResolver_HomepageFor(t *testing.T) {
	t.Parallel()

	var probes []string
	f := historyFetcher(revisionHistory, &probes, map[string]*wikimap.ProbeResult{
		home1105: {URL: home1105, StatusCode: 200, Reachable: true},
	})
	r := &crawl.Resolver{Fetcher: f, Parser: goquery.NewVersionParser(), Policy: fastPolicy}
	_, err := r.Resolve(context.Background())
	require.NoError(t, err)

	url, err := r.HomepageFor("11.05")
	require.NoError(t, err)
	assert.Equal(t, home1105, url)
	assert.True(t, r.Exists("11.05"))

	_, err = r.HomepageFor("11.04")
	assert.Equal(t, wikimap.ENOTFOUND, wikimap.ErrorCode(err))
	assert.False(t, r.Exists("11.04"))

	_, err = r.HomepageFor("99.99")
	assert.Equal(t, wikimap.ENOTFOUND, wikimap.ErrorCode(err))
}
