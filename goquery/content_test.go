package goquery_test

import (
	"testing"

	"github.com/fwojciec/wikimap/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wikiPage = `<!DOCTYPE html>
<html>
<head><title>Installation</title><style>body { color: red; }</style></head>
<body>
<div id="mw-head"><a href="/login">Log in</a></div>
<div id="mw-panel"><a href="Main_Page">Main page</a></div>
<div id="content">
	<h1>Installation</h1>
	<div id="toc"><ul><li>1 Requirements</li></ul></div>
	<p>Install   the   WCU
	package first.</p>
	<script>var x = 1;</script>
</div>
<div id="footer">Privacy policy</div>
</body>
</html>`

func TestContentExtractor_ExtractText(t *testing.T) {
	t.Parallel()

	t.Run("strips chrome and normalizes whitespace", func(t *testing.T) {
		t.Parallel()

		text, err := goquery.NewContentExtractor().ExtractText(wikiPage)
		require.NoError(t, err)
		assert.Equal(t, "Installation\nInstallation\nInstall the WCU package first.", text)
	})

	t.Run("tolerates pages without chrome", func(t *testing.T) {
		t.Parallel()

		text, err := goquery.NewContentExtractor().ExtractText("<p>Hello <b>world</b></p>")
		require.NoError(t, err)
		assert.Equal(t, "Hello\nworld", text)
	})

	t.Run("returns empty text for empty markup", func(t *testing.T) {
		t.Parallel()

		text, err := goquery.NewContentExtractor().ExtractText("")
		require.NoError(t, err)
		assert.Empty(t, text)
	})
}

func TestStripChrome(t *testing.T) {
	t.Parallel()

	body, err := goquery.StripChrome(wikiPage)
	require.NoError(t, err)
	assert.Contains(t, body, "Install")
	assert.NotContains(t, body, "Privacy policy")
	assert.NotContains(t, body, "Log in")
	assert.NotContains(t, body, "var x")
}
