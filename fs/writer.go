package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/wikimap"
)

// URLToPath converts a wiki page URL to a relative file path.
// Example: https://wiki.alkit.se/wice1105/index.php/Setup → wice1105/index.php/Setup.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := u.Path

	if path == "" || path == "/" {
		return "index.md", nil
	}

	path = strings.TrimPrefix(path, "/")

	if strings.HasSuffix(path, "/") {
		return path + "index.md", nil
	}

	return path + ".md", nil
}

// FormatPage formats page content with YAML frontmatter. The body is the
// markdown rendering when present and the plain text otherwise.
func FormatPage(page *wikimap.PageContent, fetchedAt time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	if page.Version != "" {
		b.WriteString("\nversion: \"")
		b.WriteString(string(page.Version))
		b.WriteString("\"")
	}
	if page.ContentHash != "" {
		b.WriteString("\nhash: ")
		b.WriteString(page.ContentHash)
	}
	b.WriteString("\ncrawled: ")
	b.WriteString(fetchedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	if page.Markdown != "" {
		b.WriteString(page.Markdown)
	} else {
		b.WriteString(page.TextContent)
	}
	return b.String()
}

// Writer writes page content as markdown files under a directory.
type Writer struct {
	baseDir string

	// Now returns the crawl date written to frontmatter.
	Now func() time.Time
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir, Now: time.Now}
}

// WritePage writes page to disk and returns the file path.
func (w *Writer) WritePage(ctx context.Context, page *wikimap.PageContent) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page == nil || page.URL == "" {
		return "", wikimap.Errorf(wikimap.EINVALID, "page URL required")
	}

	relPath, err := URLToPath(page.URL)
	if err != nil {
		return "", wikimap.Errorf(wikimap.EINVALID, "invalid page URL %q: %v", page.URL, err)
	}

	fullPath := filepath.Join(w.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	content := FormatPage(page, w.Now())
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", err
	}
	return fullPath, nil
}
