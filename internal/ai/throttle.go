package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited spaces out calls to the wrapped generator with a token bucket.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

func NewRateLimited(next Generator, rps float64, burst int) *RateLimited {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimited) Generate(ctx context.Context, prompt string, params GenerationConfig) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("wait for llm rate limit failed: %w", err)
	}
	return r.next.Generate(ctx, prompt, params)
}
