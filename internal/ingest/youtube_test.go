package ingest

import (
	"testing"

	mimirErrors "github.com/harunnryd/mimir/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVideoID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":        "dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s":      "dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ":          "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ":                       "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc":                "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":          "dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ": "dQw4w9WgXcQ",
		"  https://www.youtube.com/watch?v=dQw4w9WgXcQ  ":    "dQw4w9WgXcQ",
	}
	for in, want := range cases {
		got, err := ParseVideoID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseVideoID_Rejects(t *testing.T) {
	for _, in := range []string{
		"",
		"not a url",
		"https://vimeo.com/12345",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/watch?v=short",
		"https://www.youtube.com/channel/UC123",
	} {
		_, err := ParseVideoID(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, mimirErrors.ErrInvalidInput, in)
	}
}

func TestParseTimedText(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2">Never gonna</text>
<text start="2.5" dur="2">give you up &amp;amp; let   you down</text>
<text start="5" dur="1">   </text>
</transcript>`)

	text, err := parseTimedText(body)
	require.NoError(t, err)
	assert.Equal(t, "Never gonna give you up & let you down", text)
}

func TestParseTimedText_Empty(t *testing.T) {
	_, err := parseTimedText([]byte(""))
	assert.ErrorIs(t, err, mimirErrors.ErrNotFound)

	_, err = parseTimedText([]byte(`<transcript></transcript>`))
	assert.ErrorIs(t, err, mimirErrors.ErrNotFound)
}
