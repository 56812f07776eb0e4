package ingest

import (
	"strings"
	"unicode"
)

// Chunk splits text into pieces of at most size runes, each overlapping the
// previous by overlap runes. Cuts prefer whitespace in the last fifth of a window.
func Chunk(text string, size, overlap int) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 {
		return []string{string(runes)}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else if cut := lastSpace(runes[start:end], size/5); cut > 0 {
			end = start + cut
		}

		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(runes) {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// lastSpace returns the index of the last whitespace within the final window
// runes of r, or 0 when there is none.
func lastSpace(r []rune, window int) int {
	for i := len(r) - 1; i > 0 && i >= len(r)-window; i-- {
		if unicode.IsSpace(r[i]) {
			return i
		}
	}
	return 0
}
