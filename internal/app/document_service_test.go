package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/pkg/pdfextract"
)

func newTestDocumentService(t *testing.T, extractor TextExtractor, recorder UploadRecorder) (*DocumentService, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewDocumentService(extractor, newTestStore(), recorder, DocumentServiceConfig{
		UploadDir:   dir,
		MaxFileSize: 1024,
	}, testLogger())
	return svc, dir
}

func okExtractor(text string) fakeExtractor {
	return fakeExtractor{result: &pdfextract.Result{
		Text:     text,
		Outcome:  pdfextract.OutcomeOK,
		Metadata: pdfextract.Metadata{Pages: 2, Title: "Plan", Author: "Ops"},
	}}
}

func TestUpload_Success(t *testing.T) {
	recorder := &fakeRecorder{}
	svc, dir := newTestDocumentService(t, okExtractor("The budget is $5000. Review next week."), recorder)
	ctx := context.Background()

	res, err := svc.Upload(ctx, UploadInput{Filename: "Project Plan.pdf", Data: []byte("%PDF-fake")})
	require.NoError(t, err)

	assert.Equal(t, "Project_Plan.pdf", res.SessionID)
	assert.Equal(t, "Project_Plan.pdf", res.Filename)
	assert.Equal(t, "File uploaded successfully", res.Message)
	assert.Equal(t, len("The budget is $5000. Review next week."), res.ContentLength)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "Plan", res.Title)
	assert.Equal(t, 1, res.Chunks)
	assert.FileExists(t, filepath.Join(dir, "Project_Plan.pdf"))

	doc, err := svc.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, []string{"The budget is $5000. Review next week."}, doc.Chunks)

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Project_Plan.pdf"}, ids)

	require.Len(t, recorder.records, 1)
	assert.Equal(t, "Project_Plan.pdf", recorder.records[0].SessionID)
}

func TestUpload_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input UploadInput
		want  error
	}{
		{"empty filename", UploadInput{Filename: "", Data: []byte("x")}, ErrNoFile},
		{"wrong extension", UploadInput{Filename: "notes.txt", Data: []byte("x")}, ErrUnsupportedFile},
		{"no extension", UploadInput{Filename: "pdf", Data: []byte("x")}, ErrUnsupportedFile},
		{"too large", UploadInput{Filename: "big.pdf", Data: make([]byte, 1025)}, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, dir := newTestDocumentService(t, okExtractor("plenty of text here"), nil)
			_, err := svc.Upload(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)

			entries, _ := os.ReadDir(dir)
			assert.Empty(t, entries)
		})
	}
}

func TestUpload_UppercaseExtensionAccepted(t *testing.T) {
	svc, _ := newTestDocumentService(t, okExtractor("plenty of text here"), nil)
	res, err := svc.Upload(context.Background(), UploadInput{Filename: "REPORT.PDF", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, "REPORT.PDF", res.SessionID)
}

func TestUpload_InsufficientContentRemovesFile(t *testing.T) {
	extractor := fakeExtractor{result: &pdfextract.Result{Text: "Hi", Outcome: pdfextract.OutcomeContentTooShort}}
	svc, dir := newTestDocumentService(t, extractor, nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Filename: "short.pdf", Data: []byte("x")})
	assert.ErrorIs(t, err, ErrInsufficientContent)
	assert.NoFileExists(t, filepath.Join(dir, "short.pdf"))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpload_ExtractionErrorRemovesFile(t *testing.T) {
	extractor := fakeExtractor{err: &pdfextract.ExtractionError{Cause: errors.New("malformed xref")}}
	svc, dir := newTestDocumentService(t, extractor, nil)

	_, err := svc.Upload(context.Background(), UploadInput{Filename: "broken.pdf", Data: []byte("x")})
	var extractErr *pdfextract.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Contains(t, extractErr.Error(), "malformed xref")
	assert.NoFileExists(t, filepath.Join(dir, "broken.pdf"))
}

type sequenceExtractor struct {
	results []fakeExtractor
	calls   int
}

func (e *sequenceExtractor) Extract(data []byte) (*pdfextract.Result, error) {
	next := e.results[e.calls]
	e.calls++
	return next.Extract(data)
}

func TestUpload_FailedReuploadKeepsLiveFile(t *testing.T) {
	tooShort := fakeExtractor{result: &pdfextract.Result{Text: "Hi", Outcome: pdfextract.OutcomeContentTooShort}}
	broken := fakeExtractor{err: &pdfextract.ExtractionError{Cause: errors.New("malformed xref")}}
	extractor := &sequenceExtractor{results: []fakeExtractor{okExtractor("plenty of text here"), tooShort, broken}}
	svc, dir := newTestDocumentService(t, extractor, nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Filename: "a.pdf", Data: []byte("first")})
	require.NoError(t, err)

	_, err = svc.Upload(ctx, UploadInput{Filename: "a.pdf", Data: []byte("second")})
	assert.ErrorIs(t, err, ErrInsufficientContent)
	_, err = svc.Upload(ctx, UploadInput{Filename: "a.pdf", Data: []byte("third")})
	assert.Error(t, err)

	doc, err := svc.Get(ctx, "a.pdf")
	require.NoError(t, err)
	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.pdf", entries[0].Name())
}

func TestUpload_ReuploadReplacesFile(t *testing.T) {
	svc, dir := newTestDocumentService(t, okExtractor("plenty of text here"), nil)
	ctx := context.Background()

	for _, body := range []string{"first", "second"} {
		_, err := svc.Upload(ctx, UploadInput{Filename: "a.pdf", Data: []byte(body)})
		require.NoError(t, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUpload_RecorderFailureIsSoft(t *testing.T) {
	recorder := &fakeRecorder{err: errors.New("db down")}
	svc, _ := newTestDocumentService(t, okExtractor("plenty of text here"), recorder)

	_, err := svc.Upload(context.Background(), UploadInput{Filename: "a.pdf", Data: []byte("x")})
	assert.NoError(t, err)
}

func TestUpload_LongDocumentIsChunked(t *testing.T) {
	text := strings.Repeat("The quarterly review covered every open item in detail. ", 100)
	text = strings.TrimSpace(text)
	svc, _ := newTestDocumentService(t, okExtractor(text), nil)

	res, err := svc.Upload(context.Background(), UploadInput{Filename: "long.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Greater(t, res.Chunks, 1)
}

func TestClear(t *testing.T) {
	svc, dir := newTestDocumentService(t, okExtractor("plenty of text here"), nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadInput{Filename: "a.pdf", Data: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "a.pdf"))
	assert.NoFileExists(t, filepath.Join(dir, "a.pdf"))
	assert.ErrorIs(t, svc.Clear(ctx, "a.pdf"), ErrDocumentNotFound)

	_, err = svc.Get(ctx, "a.pdf")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestClearAll(t *testing.T) {
	svc, dir := newTestDocumentService(t, okExtractor("plenty of text here"), nil)
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := svc.Upload(ctx, UploadInput{Filename: name, Data: []byte("x")})
		require.NoError(t, err)
	}
	// A file already gone must not stop the sweep.
	require.NoError(t, os.Remove(filepath.Join(dir, "b.pdf")))

	require.NoError(t, svc.ClearAll(ctx))
	ids, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
