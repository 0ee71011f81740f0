package pdfextract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DefaultMinContentChars is the smallest amount of non-whitespace text a
// document may carry and still be answerable.
const DefaultMinContentChars = 10

const pageSeparator = "\n\n"

// Outcome classifies an extraction that decoded without error.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeContentTooShort
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeContentTooShort:
		return "content_too_short"
	default:
		return "unknown"
	}
}

// ExtractionError reports a PDF that could not be decoded.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from PDF: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// Metadata carries the document information dictionary fields we surface.
type Metadata struct {
	Pages  int    `json:"pages"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
}

// Result is the cleaned text of a PDF plus how usable it is.
type Result struct {
	Text     string
	Outcome  Outcome
	Metadata Metadata
}

// Extractor turns raw PDF bytes into cleaned text.
type Extractor struct {
	minContentChars int
}

func New(minContentChars int) *Extractor {
	if minContentChars <= 0 {
		minContentChars = DefaultMinContentChars
	}
	return &Extractor{minContentChars: minContentChars}
}

// Extract decodes every page in order, joins them with a blank line and
// cleans the result. Decode failures are returned as *ExtractionError.
func (e *Extractor) Extract(data []byte) (result *Result, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ExtractionError{Cause: fmt.Errorf("malformed pdf: %v", r)}
		}
	}()

	if len(data) == 0 {
		return nil, &ExtractionError{Cause: errors.New("empty file")}
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Cause: err}
	}

	raw, err := pageText(reader)
	if err != nil {
		return nil, &ExtractionError{Cause: err}
	}

	text := Clean(raw)
	outcome := OutcomeOK
	if !HasMeaningfulContent(text, e.minContentChars) {
		outcome = OutcomeContentTooShort
	}

	return &Result{
		Text:     text,
		Outcome:  outcome,
		Metadata: metadata(reader),
	}, nil
}

func pageText(reader *pdf.Reader) (string, error) {
	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString(pageSeparator)
	}
	return sb.String(), nil
}

// metadata never fails: a PDF without an Info dictionary just yields zero values.
func metadata(reader *pdf.Reader) (meta Metadata) {
	defer func() {
		if recover() != nil {
			meta = Metadata{Pages: meta.Pages}
		}
	}()
	meta.Pages = reader.NumPage()
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	meta.Title = strings.TrimSpace(info.Key("Title").Text())
	meta.Author = strings.TrimSpace(info.Key("Author").Text())
	return meta
}

// HasMeaningfulContent reports whether text holds at least min characters
// once surrounding whitespace is trimmed.
func HasMeaningfulContent(text string, min int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= min
}
