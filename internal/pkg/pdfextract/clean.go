package pdfextract

import (
	"regexp"
	"strings"
)

var (
	// Unicode-aware whitespace, matching what the extracted text may contain.
	whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{85}\x{1c}-\x{1f}]+`)
	disallowed    = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\p{Z}\x{85}\x{1c}-\x{1f}.,!?;:\-()\[\]{}"'$%@#&*+=/\\]`)
	periodRun     = regexp.MustCompile(`\.{2,}`)
	newlineRun    = regexp.MustCompile(`\n{3,}`)
)

// Clean normalises extracted text. Whitespace is collapsed first, so the
// newline rule never finds a run to shorten.
func Clean(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = disallowed.ReplaceAllString(text, "")
	text = periodRun.ReplaceAllString(text, ".")
	text = newlineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
