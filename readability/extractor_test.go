package readability_test

import (
	"testing"

	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	ext := readability.NewExtractor()
	_, err := ext.Extract("  \n ")

	require.Error(t, err)
	assert.Equal(t, wikimap.EINVALID, wikimap.ErrorCode(err))
}

func TestExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Quick Start - WICE Wiki</title></head>
<body><article><p>Connect the WCU to the vehicle and power it on before configuring the portal.</p></article></body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.Title, "Quick Start")
}

func TestExtractor_RemovesNavigation(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Installation</title></head>
<body>
<nav><a href="/wice1105/index.php/Main_Page">Main page nav link</a><a href="/wice1105/index.php/Help">Help nav link</a></nav>
<article>
<h2>Installation</h2>
<p>Mount the WCU in the vehicle and attach the antennas before powering the unit for the first time.</p>
<p>The unit registers itself with the portal once the modem has obtained a connection.</p>
</article>
<footer><p>Footer copyright text 2024</p></footer>
</body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.NotContains(t, result.ContentHTML, "Main page nav link")
	assert.NotContains(t, result.ContentHTML, "Footer copyright text")
	assert.Contains(t, result.ContentHTML, "attach the antennas")
	assert.Contains(t, result.ContentHTML, "registers itself with the portal")
}

func TestExtractor_NormalizesTextContent(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Setup</title></head>
<body>
<article>
<p>Open   the   portal and    select the vehicle you want to configure from the list of units.</p>

<p>Then   choose the software   version to deploy to the unit and confirm the update.</p>
</article>
</body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.TextContent, "Open the portal and select the vehicle")
	assert.Contains(t, result.TextContent, "choose the software version to deploy")
	assert.NotContains(t, result.TextContent, "  ")
	assert.NotContains(t, result.TextContent, "\n\n")
}

func TestExtractor_PreservesTables(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Signals</title></head>
<body>
<article>
<p>The following signals are logged by default on every unit in the fleet:</p>
<table>
<tr><th>Signal</th><th>Rate</th></tr>
<tr><td>VehicleSpeed</td><td>10 Hz</td></tr>
</table>
</article>
</body>
</html>`

	result, err := readability.NewExtractor().Extract(html)

	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "<table")
	assert.Contains(t, result.TextContent, "VehicleSpeed")
}
