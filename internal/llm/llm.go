// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides text-generation clients for configured LLM providers.
// Callers depend only on the Client interface; each backend (Anthropic,
// OpenAI-compatible, Gemini) implements it per the Strategy pattern.
package llm

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Request is a single text-generation request.
type Request struct {
	// System is an optional system prompt.
	System string

	// Prompt is the user prompt.
	Prompt string

	// MaxTokens is the generation budget. Zero uses the default (4096).
	MaxTokens int

	// Temperature is the sampling temperature. Zero uses the provider default.
	Temperature float64
}

const defaultMaxTokens = 4096

// Client can generate text given a prompt.
type Client interface {
	// Name returns the provider identifier (e.g. "anthropic").
	Name() string

	// Model returns the model identifier the client sends.
	Model() string

	// Generate sends the request and returns the generated text. Failures
	// are one of AuthError, RateLimitError, NetworkError, or ProviderError.
	Generate(ctx context.Context, req Request) (string, error)
}

// backoffBase controls the base duration for exponential backoff between
// retries. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// GenerateWithRetry calls client.Generate, retrying rate-limit and network
// failures with exponential backoff. Auth and provider errors are not
// retried; they will not succeed on a second attempt.
func GenerateWithRetry(ctx context.Context, client Client, req Request, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := client.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		if !Retryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
