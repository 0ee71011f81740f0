package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"docqa/internal/model"
	"docqa/internal/pkg/filename"
	"docqa/internal/pkg/pdfextract"
	"docqa/internal/pkg/textchunk"
)

const defaultMaxFileSize = 16 << 20

// TextExtractor decodes raw PDF bytes into cleaned text.
type TextExtractor interface {
	Extract(data []byte) (*pdfextract.Result, error)
}

// DocumentStore holds extracted documents keyed by session id.
type DocumentStore interface {
	Get(ctx context.Context, sessionID string) (*model.Document, bool, error)
	Put(ctx context.Context, doc *model.Document) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

type UploadRecorder interface {
	Create(record *model.UploadRecord) error
}

type DocumentServiceConfig struct {
	UploadDir         string
	MaxFileSize       int64
	AllowedExtensions []string
	ChunkSize         int
	ChunkOverlap      int
}

type DocumentService struct {
	extractor TextExtractor
	store     DocumentStore
	recorder  UploadRecorder
	cfg       DocumentServiceConfig
	logger    *slog.Logger
}

// NewDocumentService wires the upload pipeline. recorder may be nil.
func NewDocumentService(
	extractor TextExtractor,
	store DocumentStore,
	recorder UploadRecorder,
	cfg DocumentServiceConfig,
	logger *slog.Logger,
) *DocumentService {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{"pdf"}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = textchunk.DefaultMaxLen
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = textchunk.DefaultOverlap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{
		extractor: extractor,
		store:     store,
		recorder:  recorder,
		cfg:       cfg,
		logger:    logger,
	}
}

type UploadInput struct {
	Filename string
	Data     []byte
}

type UploadResult struct {
	Message       string `json:"message"`
	SessionID     string `json:"session_id"`
	Filename      string `json:"filename"`
	ContentLength int    `json:"content_length"`
	Pages         int    `json:"pages"`
	Title         string `json:"title,omitempty"`
	Author        string `json:"author,omitempty"`
	Chunks        int    `json:"chunks"`
}

// Upload validates and stores the PDF, extracts and chunks its text and
// registers the document under the sanitised filename. The bytes are staged
// in a temporary file and only replace the named upload once extraction
// succeeds, so a failed re-upload leaves the live session's file intact.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if strings.TrimSpace(input.Filename) == "" {
		return nil, ErrNoFile
	}
	if !filename.HasExtension(input.Filename, s.cfg.AllowedExtensions) {
		return nil, ErrUnsupportedFile
	}
	if int64(len(input.Data)) > s.cfg.MaxFileSize {
		return nil, ErrFileTooLarge
	}

	name := filename.Secure(input.Filename)
	if name == "" {
		return nil, ErrInvalidInput
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir failed: %w", err)
	}
	staged, err := s.stage(input.Data)
	if err != nil {
		return nil, err
	}

	result, err := s.extractor.Extract(input.Data)
	if err != nil {
		s.removeFile(staged)
		return nil, err
	}
	if result.Outcome == pdfextract.OutcomeContentTooShort {
		s.removeFile(staged)
		return nil, ErrInsufficientContent
	}

	_, existed, err := s.store.Get(ctx, name)
	if err != nil {
		s.removeFile(staged)
		return nil, err
	}
	path := filepath.Join(s.cfg.UploadDir, name)
	if err := os.Rename(staged, path); err != nil {
		s.removeFile(staged)
		return nil, fmt.Errorf("store upload failed: %w", err)
	}

	doc := &model.Document{
		SessionID:  name,
		Filename:   name,
		Path:       path,
		Content:    result.Text,
		Chunks:     textchunk.Split(result.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap),
		Pages:      result.Metadata.Pages,
		Title:      result.Metadata.Title,
		Author:     result.Metadata.Author,
		UploadedAt: time.Now(),
	}
	if err := s.store.Put(ctx, doc); err != nil {
		if !existed {
			s.removeFile(path)
		}
		return nil, err
	}

	contentLength := utf8.RuneCountInString(doc.Content)
	s.logger.Info("document uploaded",
		"session_id", doc.SessionID,
		"pages", doc.Pages,
		"content_length", contentLength,
		"chunks", len(doc.Chunks),
	)
	s.record(doc, contentLength)

	return &UploadResult{
		Message:       "File uploaded successfully",
		SessionID:     doc.SessionID,
		Filename:      doc.Filename,
		ContentLength: contentLength,
		Pages:         doc.Pages,
		Title:         doc.Title,
		Author:        doc.Author,
		Chunks:        len(doc.Chunks),
	}, nil
}

func (s *DocumentService) Get(ctx context.Context, sessionID string) (*model.Document, error) {
	doc, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Clear deletes the session and its uploaded file.
func (s *DocumentService) Clear(ctx context.Context, sessionID string) error {
	doc, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	s.removeFile(doc.Path)
	return s.store.Delete(ctx, sessionID)
}

func (s *DocumentService) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// ClearAll drops every session, used on shutdown. It keeps going past
// individual failures and returns them joined.
func (s *DocumentService) ClearAll(ctx context.Context) error {
	ids, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if err := s.Clear(ctx, id); err != nil && !errors.Is(err, ErrDocumentNotFound) {
			errs = append(errs, fmt.Errorf("clear %s: %w", id, err))
		}
	}
	s.logger.Info("sessions cleared", "count", len(ids))
	return errors.Join(errs...)
}

func (s *DocumentService) record(doc *model.Document, contentLength int) {
	if s.recorder == nil {
		return
	}
	rec := &model.UploadRecord{
		SessionID:     doc.SessionID,
		Filename:      doc.Filename,
		Pages:         doc.Pages,
		Title:         doc.Title,
		Author:        doc.Author,
		ContentLength: contentLength,
		ChunkCount:    len(doc.Chunks),
	}
	if err := s.recorder.Create(rec); err != nil {
		s.logger.Error("record upload failed", "session_id", doc.SessionID, "error", err)
	}
}

func (s *DocumentService) stage(data []byte) (string, error) {
	f, err := os.CreateTemp(s.cfg.UploadDir, ".upload-*.pdf")
	if err != nil {
		return "", fmt.Errorf("write upload failed: %w", err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		s.removeFile(f.Name())
		return "", fmt.Errorf("write upload failed: %w", err)
	}
	return f.Name(), nil
}

func (s *DocumentService) removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove upload failed", "path", path, "error", err)
	}
}
