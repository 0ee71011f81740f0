package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	ProviderCompatible = "compatible"
	ProviderOpenAI     = "openai"
)

// GenerationConfig carries sampling parameters for one model call. Zero
// values are left out of the request so the provider default applies.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	TopK            int
	MaxOutputTokens int
}

// Generator is the single call the answer pipeline makes to a language model.
type Generator interface {
	Generate(ctx context.Context, prompt string, params GenerationConfig) (string, error)
}

type ChatConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration

	// RequestsPerSecond throttles outgoing calls; zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// NewGenerator builds the configured provider client, throttled when asked.
func NewGenerator(cfg ChatConfig, logger *slog.Logger) (Generator, error) {
	var gen Generator
	switch cfg.Provider {
	case ProviderCompatible, "":
		gen = NewOpenAICompatibleClient(cfg)
	case ProviderOpenAI:
		gen = NewOpenAISDKClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if cfg.RequestsPerSecond > 0 {
		logger.Info("model calls throttled", "rps", cfg.RequestsPerSecond, "burst", cfg.Burst)
		gen = NewRateLimited(gen, cfg.RequestsPerSecond, cfg.Burst)
	}
	return gen, nil
}
