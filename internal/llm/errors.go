// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// AuthError indicates a missing or rejected API key.
type AuthError struct {
	Provider string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed (missing or invalid API key)", e.Provider)
}

// RateLimitError indicates a 429-equivalent response. Callers may back off.
type RateLimitError struct {
	Provider string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// NetworkError indicates a connection or timeout failure before any
// provider response was received.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProviderError indicates a non-2xx response with a provider-supplied message.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: API returned %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Retryable reports whether err is transient enough to retry.
func Retryable(err error) bool {
	var rate *RateLimitError
	var network *NetworkError
	return errors.As(err, &rate) || errors.As(err, &network)
}

// classifyStatus maps an HTTP status from a provider API to the error taxonomy.
func classifyStatus(provider string, status int, message string) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: provider}
	case http.StatusTooManyRequests:
		return &RateLimitError{Provider: provider}
	default:
		return &ProviderError{Provider: provider, Status: status, Message: message}
	}
}
