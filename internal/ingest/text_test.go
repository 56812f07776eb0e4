package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	page := `<!doctype html>
<html>
<head><title> Go Memory Model </title><style>body{color:red}</style></head>
<body>
  <script>var tracking = true;</script>
  <h1>Happens   before</h1>
  <p>A read r is allowed to <b>observe</b> a write w.</p>
  <ul><li>one</li><li>two</li></ul>
  <noscript>enable js</noscript>
</body>
</html>`

	title, text, err := ExtractText(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Go Memory Model", title)
	assert.Equal(t, "Happens before\nA read r is allowed to observe a write w.\none\ntwo", text)
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color")
}

func TestExtractText_NoTitle(t *testing.T) {
	title, text, err := ExtractText(strings.NewReader("plain words only"))
	require.NoError(t, err)
	assert.Empty(t, title)
	assert.Equal(t, "plain words only", text)
}
