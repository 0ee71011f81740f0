package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"docqa/internal/ai"
)

const (
	ModeFullDocument = "full_document"
	ModeChunks       = "chunks"
)

const (
	FallbackNoResponse  = "I apologize, but I couldn't generate a response. Please try rephrasing your question."
	FallbackChunkError  = "An error occurred while processing your question. Please try again."
	FallbackNoSummary   = "Could not generate summary."
	FallbackSummaryFail = "An error occurred while generating the summary."

	credentialProbePrompt = "Hello"
)

var (
	answerParams = ai.GenerationConfig{
		Temperature:     0.2,
		TopP:            0.8,
		TopK:            40,
		MaxOutputTokens: 1024,
	}
	summaryParams = ai.GenerationConfig{
		Temperature:     0.3,
		TopP:            0.9,
		MaxOutputTokens: 1500,
	}
)

// AnswerComposer turns a question plus document context into a grounded
// prompt and returns the model's answer.
type AnswerComposer struct {
	generator ai.Generator
	retry     ai.RetryPolicy
	logger    *slog.Logger
}

func NewAnswerComposer(generator ai.Generator, retry ai.RetryPolicy, logger *slog.Logger) *AnswerComposer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerComposer{
		generator: generator,
		retry:     retry,
		logger:    logger,
	}
}

// AnswerFromDocument sends the whole document. Model failures are retried by
// the composer's policy and surface as ErrAnswerFailure once exhausted.
func (c *AnswerComposer) AnswerFromDocument(ctx context.Context, question, document string) (string, error) {
	prompt := buildDocumentPrompt(question, document)

	var text string
	err := c.retry.Do("answer from document", func(int) error {
		out, err := c.generator.Generate(ctx, prompt, answerParams)
		if err != nil {
			return err
		}
		text = out
		return nil
	})
	if err != nil {
		c.logger.Error("answer generation failed", "mode", ModeFullDocument, "error", err)
		return "", errors.Join(ErrAnswerFailure, err)
	}
	return orFallback(text, FallbackNoResponse), nil
}

// AnswerFromChunks sends only the selected chunks. It makes a single model
// call and never returns an error: failures become a fallback answer.
func (c *AnswerComposer) AnswerFromChunks(ctx context.Context, question string, chunks []string) string {
	prompt := buildChunkPrompt(question, chunks)

	text, err := c.generator.Generate(ctx, prompt, answerParams)
	if err != nil {
		c.logger.Error("answer generation failed", "mode", ModeChunks, "chunks", len(chunks), "error", err)
		return FallbackChunkError
	}
	return orFallback(text, FallbackNoResponse)
}

func (c *AnswerComposer) Summarize(ctx context.Context, document string) string {
	text, err := c.generator.Generate(ctx, buildSummaryPrompt(document), summaryParams)
	if err != nil {
		c.logger.Error("summary generation failed", "error", err)
		return FallbackSummaryFail
	}
	return orFallback(text, FallbackNoSummary)
}

// ValidateCredentials reports whether the model answers a trivial prompt.
func (c *AnswerComposer) ValidateCredentials(ctx context.Context) bool {
	if _, err := c.generator.Generate(ctx, credentialProbePrompt, ai.GenerationConfig{}); err != nil {
		c.logger.Warn("model credential check failed", "error", err)
		return false
	}
	return true
}

func orFallback(text, fallback string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}
	return text
}
