package app

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"docqa/internal/model"
	"docqa/internal/pkg/relevance"
)

const defaultChunkThreshold = 10000

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

type HistoryReader interface {
	ListBySessionID(sessionID string, limit int) ([]model.Message, error)
}

type ChatServiceConfig struct {
	// ChunkThreshold is the document length, in characters, above which
	// questions are answered from ranked chunks instead of the full text.
	ChunkThreshold int
	TopK           int
}

type ChatService struct {
	store     DocumentStore
	composer  *AnswerComposer
	publisher AsyncMessagePublisher
	history   HistoryReader
	cfg       ChatServiceConfig
	logger    *slog.Logger
}

// NewChatService builds the question path. publisher and history are nil
// when Q&A history is disabled.
func NewChatService(
	store DocumentStore,
	composer *AnswerComposer,
	publisher AsyncMessagePublisher,
	history HistoryReader,
	cfg ChatServiceConfig,
	logger *slog.Logger,
) *ChatService {
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = defaultChunkThreshold
	}
	if cfg.TopK <= 0 {
		cfg.TopK = relevance.DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		store:     store,
		composer:  composer,
		publisher: publisher,
		history:   history,
		cfg:       cfg,
		logger:    logger,
	}
}

type AskInput struct {
	SessionID string
	Question  string
}

type AskResult struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Mode      string `json:"-"`
}

// Ask answers a question about a stored document. Long documents are
// answered from their best-matching chunks; when no chunk matches, or the
// document is short, the whole text is sent. The question is ranked and
// prompted exactly as asked; only the history copy is trimmed.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := input.Question
	if strings.TrimSpace(question) == "" {
		return nil, ErrMessageEmpty
	}
	doc, err := s.document(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	var (
		answer string
		mode   = ModeFullDocument
	)
	if utf8.RuneCountInString(doc.Content) > s.cfg.ChunkThreshold {
		if chunks := relevance.Rank(doc.Chunks, question, s.cfg.TopK); len(chunks) > 0 {
			mode = ModeChunks
			answer = s.composer.AnswerFromChunks(ctx, question, chunks)
		}
	}
	if mode == ModeFullDocument {
		answer, err = s.composer.AnswerFromDocument(ctx, question, doc.Content)
		if err != nil {
			return nil, err
		}
	}
	s.logger.Debug("question answered", "session_id", doc.SessionID, "mode", mode)

	s.publish(ctx, doc.SessionID, strings.TrimSpace(question), answer, mode)
	return &AskResult{Response: answer, SessionID: doc.SessionID, Mode: mode}, nil
}

func (s *ChatService) Summarize(ctx context.Context, sessionID string) (string, error) {
	doc, err := s.document(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return s.composer.Summarize(ctx, doc.Content), nil
}

func (s *ChatService) History(sessionID string, limit int) ([]model.Message, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}
	return s.history.ListBySessionID(sessionID, limit)
}

func (s *ChatService) document(ctx context.Context, sessionID string) (*model.Document, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrDocumentNotFound
	}
	doc, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// publish hands both sides of the exchange to the history queue. A queue
// failure never fails the answer.
func (s *ChatService) publish(ctx context.Context, sessionID, question, answer, mode string) {
	if s.publisher == nil {
		return
	}
	now := time.Now()
	messages := []model.Message{
		{SessionID: sessionID, Role: model.RoleUser, Content: question, CreatedAt: now},
		{SessionID: sessionID, Role: model.RoleAssistant, Content: answer, Mode: mode, CreatedAt: now},
	}
	for _, msg := range messages {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.logger.Error("publish history message failed", "session_id", sessionID, "role", msg.Role, "error", err)
			return
		}
	}
}
