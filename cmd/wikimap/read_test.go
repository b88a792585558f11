package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/wikimap"
	main "github.com/fwojciec/wikimap/cmd/wikimap"
	"github.com/fwojciec/wikimap/fs"
	"github.com/fwojciec/wikimap/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticReader(page *wikimap.PageContent, err error) *mock.PageReader {
	return &mock.PageReader{
		ReadFn: func(_ context.Context, _ string) (*wikimap.PageContent, error) {
			return page, err
		},
	}
}

func TestReadCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints page content as JSON", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Reader: staticReader(&wikimap.PageContent{
				URL:         setup1105,
				Version:     "11.05",
				TextContent: "Setup\nMount the unit.",
				Hyperlinks:  []wikimap.Link{{URL: home1105, Title: wikimap.HomeTitle}},
			}, nil),
		}

		err := (&main.ReadCmd{URL: setup1105}).Run(deps)

		require.NoError(t, err)
		var got wikimap.PageContent
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		assert.Equal(t, wikimap.VersionID("11.05"), got.Version)
		assert.Equal(t, "Setup\nMount the unit.", got.TextContent)
		assert.Len(t, got.Hyperlinks, 1)
		assert.Contains(t, stderr.String(), "21 B of text, 1 links")
	})

	t.Run("warns about partial content when rate limited", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Reader: staticReader(&wikimap.PageContent{URL: setup1105, BotLimitReached: true, RequestBotLimit: 120}, nil),
		}

		err := (&main.ReadCmd{URL: setup1105}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "rate limit reached after 120 requests")
	})

	t.Run("names the failed stage", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		stageErr := &wikimap.StageError{Stage: wikimap.StageText, Err: wikimap.Errorf(wikimap.ENOTFOUND, "page has no text")}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Reader: staticReader(nil, stageErr),
		}

		err := (&main.ReadCmd{URL: setup1105}).Run(deps)

		assert.Equal(t, wikimap.ENOTFOUND, wikimap.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: text stage failed: page has no text")
	})

	t.Run("rejects namespace URLs without reading", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Reader: &mock.PageReader{
				ReadFn: func(_ context.Context, _ string) (*wikimap.PageContent, error) {
					t.Fatal("reader must not be called")
					return nil, nil
				},
			},
		}

		err := (&main.ReadCmd{URL: "https://wiki.alkit.se/wice1105/index.php/Special:Search"}).Run(deps)

		assert.Equal(t, wikimap.EINVALID, wikimap.ErrorCode(err))
	})

	t.Run("writes page to the output directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Reader: staticReader(&wikimap.PageContent{URL: setup1105, Markdown: "# Setup"}, nil),
			Pages:  fs.NewWriter(dir),
		}

		err := (&main.ReadCmd{URL: setup1105}).Run(deps)

		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "wice1105", "index.php", "Setup.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "# Setup")
		assert.Contains(t, stderr.String(), "Wrote ")
	})
}
