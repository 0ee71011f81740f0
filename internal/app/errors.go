package app

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoFile              = errors.New("no file selected")
	ErrUnsupportedFile     = errors.New("only PDF files are allowed")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInsufficientContent = errors.New("PDF appears to be empty or contains insufficient text")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrMessageEmpty        = errors.New("message content is empty")
	ErrAnswerFailure       = errors.New("answer generation failed")
	ErrHistoryDisabled     = errors.New("history is disabled")
)
