package textchunk

import "strings"

const (
	DefaultMaxLen  = 2000
	DefaultOverlap = 200

	// lookback bounds how far a cut may move back to land on a sentence end.
	lookback = 200
)

// Span is a half-open rune range [Start, End) of the source text.
type Span struct {
	Start int
	End   int
}

// Split cuts text into overlapping chunks of at most maxLen runes, preferring
// to end a chunk right after a sentence terminator followed by a space.
// Chunks that are empty after trimming are dropped.
func Split(text string, maxLen, overlap int) []string {
	runes := []rune(text)
	spans := Spans(runes, maxLen, overlap)

	chunks := make([]string, 0, len(spans))
	for _, sp := range spans {
		chunk := strings.TrimSpace(string(runes[sp.Start:sp.End]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Spans returns the raw cut positions Split uses, before trimming.
func Spans(runes []rune, maxLen, overlap int) []Span {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	if overlap < 0 {
		overlap = 0
	}

	n := len(runes)
	var spans []Span
	for cursor := 0; cursor < n; {
		end := cursor + maxLen
		if end < n {
			lo := cursor + maxLen - lookback
			if lo < cursor {
				lo = cursor
			}
			for i := end; i > lo; i-- {
				if i+1 < n && isTerminator(runes[i]) && runes[i+1] == ' ' {
					end = i + 1
					break
				}
			}
		}
		// The final cut may run past the text; only the span is clamped so the
		// cursor still jumps past n instead of emitting tail-only chunks.
		spans = append(spans, Span{Start: cursor, End: min(end, n)})

		next := end - overlap
		if next <= cursor {
			// overlap >= chunk length would never advance
			next = end
		}
		cursor = next
	}
	return spans
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
