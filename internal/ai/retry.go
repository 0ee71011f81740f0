package ai

import (
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

// RetryPolicy retries an operation a fixed number of times with a constant
// pause in between. There is no backoff and no cancellation: once started,
// the loop runs until success or until attempts are exhausted.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Logger      *slog.Logger

	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

func DefaultRetryPolicy(logger *slog.Logger) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultRetryDelay,
		Logger:      logger,
	}
}

// Do runs fn until it returns nil. The last error is wrapped when every
// attempt fails.
func (p RetryPolicy) Do(op string, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if attempt < attempts {
			if p.Logger != nil {
				p.Logger.Warn("retrying after failure", "op", op, "attempt", attempt, "delay", p.Delay, "error", lastErr)
			}
			sleep(p.Delay)
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
