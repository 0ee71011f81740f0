package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docqa/internal/app"
	"docqa/internal/model"
	"docqa/internal/transport/http/middleware"
	"docqa/internal/transport/http/response"
)

const genericChatError = "An error occurred while processing your question. Please try again."

type ChatService interface {
	Ask(ctx context.Context, input app.AskInput) (*app.AskResult, error)
	Summarize(ctx context.Context, sessionID string) (string, error)
	History(sessionID string, limit int) ([]model.Message, error)
}

type ChatHandler struct {
	chat   ChatService
	logger *slog.Logger
}

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

type SummarizeRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

func NewChatHandler(chat ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chat.Ask(c.Request.Context(), app.AskInput{
		SessionID: req.SessionID,
		Question:  req.Message,
	})
	if err != nil {
		h.writeError(c, req.SessionID, err)
		return
	}
	response.OK(c, result)
}

func (h *ChatHandler) Summarize(c *gin.Context) {
	var req SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	summary, err := h.chat.Summarize(c.Request.Context(), req.SessionID)
	if err != nil {
		h.writeError(c, req.SessionID, err)
		return
	}
	response.OK(c, gin.H{"summary": summary, "session_id": req.SessionID})
}

func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("session_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	messages, err := h.chat.History(sessionID, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrHistoryDisabled):
			response.Error(c, http.StatusNotImplemented, response.CodeHistoryDisabled, "history is disabled")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		default:
			requestLogger(c, h.logger).Error("load history failed", "session_id", sessionID, "error", err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load history failed")
		}
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	response.OK(c, gin.H{"session_id": sessionID, "messages": messages})
}

func (h *ChatHandler) writeError(c *gin.Context, sessionID string, err error) {
	switch {
	case errors.Is(err, app.ErrMessageEmpty):
		response.Error(c, http.StatusBadRequest, response.CodeEmptyMessage, "Message cannot be empty")
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "Document not found. Please upload a document first.")
	case errors.Is(err, app.ErrAnswerFailure):
		requestLogger(c, h.logger).Error("answer failed", "session_id", sessionID, "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeAnswerFailed, genericChatError)
	default:
		requestLogger(c, h.logger).Error("chat request failed", "session_id", sessionID, "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, genericChatError)
	}
}

// requestLogger tags handler logs with the id RequestLog assigned.
func requestLogger(c *gin.Context, logger *slog.Logger) *slog.Logger {
	if id := middleware.RequestID(c); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}
