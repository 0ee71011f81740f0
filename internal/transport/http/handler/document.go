package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa/internal/app"
	"docqa/internal/pkg/pdfextract"
	"docqa/internal/transport/http/response"
)

type DocumentService interface {
	Upload(ctx context.Context, input app.UploadInput) (*app.UploadResult, error)
	Clear(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

type DocumentHandler struct {
	documents   DocumentService
	maxFileSize int64
	logger      *slog.Logger
}

func NewDocumentHandler(documents DocumentService, maxFileSize int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{documents: documents, maxFileSize: maxFileSize, logger: logger}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		response.Error(c, http.StatusBadRequest, response.CodeNoFile, "No file selected")
		return
	}

	data, err := h.readUpload(fileHeader)
	if err != nil {
		requestLogger(c, h.logger).Error("read upload failed", "filename", fileHeader.Filename, "error", err)
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "could not read uploaded file")
		return
	}

	result, err := h.documents.Upload(c.Request.Context(), app.UploadInput{
		Filename: fileHeader.Filename,
		Data:     data,
	})
	if err != nil {
		var extractErr *pdfextract.ExtractionError
		switch {
		case errors.Is(err, app.ErrNoFile):
			response.Error(c, http.StatusBadRequest, response.CodeNoFile, "No file selected")
		case errors.Is(err, app.ErrUnsupportedFile):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFile, "Only PDF files are allowed")
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge,
				fmt.Sprintf("File size exceeds maximum limit of %gMB", float64(h.maxFileSize)/(1<<20)))
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid file name")
		case errors.As(err, &extractErr):
			response.Error(c, http.StatusBadRequest, response.CodeExtractionFailed,
				fmt.Sprintf("Could not extract text from PDF: %v", extractErr.Cause))
		case errors.Is(err, app.ErrInsufficientContent):
			response.Error(c, http.StatusBadRequest, response.CodeInsufficientContent,
				"Could not extract meaningful text from PDF. The file may be scanned or corrupted.")
		default:
			requestLogger(c, h.logger).Error("upload failed", "filename", fileHeader.Filename, "error", err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, result)
}

// readUpload reads at most one byte past the limit so the service can tell
// an oversized file from one exactly at the limit.
func (h *DocumentHandler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
}

func (h *DocumentHandler) Clear(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.documents.Clear(c.Request.Context(), sessionID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "Session not found")
		default:
			requestLogger(c, h.logger).Error("clear session failed", "session_id", sessionID, "error", err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear session failed")
		}
		return
	}
	response.OK(c, gin.H{"message": "Session cleared successfully", "session_id": sessionID})
}

func (h *DocumentHandler) List(c *gin.Context) {
	sessions, err := h.documents.List(c.Request.Context())
	if err != nil {
		requestLogger(c, h.logger).Error("list sessions failed", "error", err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}
	if sessions == nil {
		sessions = []string{}
	}
	response.OK(c, gin.H{"sessions": sessions, "count": len(sessions)})
}
