package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput signals a malformed request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrRateLimited signals a rate limit hit on the model gateway.
	ErrRateLimited = errors.New("rate limited")
	// ErrGatewayError signals a model gateway failure.
	ErrGatewayError = errors.New("model gateway error")
	// ErrProviderError signals a search provider failure.
	ErrProviderError = errors.New("search provider error")
	// ErrTranscriptUnavailable signals that no transcript could be fetched for a video.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")
	// ErrHopLimitExceeded signals that the router kept transitioning without producing an answer.
	ErrHopLimitExceeded = errors.New("state transition limit exceeded")
	// ErrEmptyDocument signals a document with no extractable text.
	ErrEmptyDocument = errors.New("empty document")
	// ErrQuotaExceeded signals that the embedding token budget is spent.
	ErrQuotaExceeded = errors.New("embedding token budget exceeded")
)

// ProviderError wraps ErrProviderError with the failing provider and HTTP status.
type ProviderError struct {
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", ErrProviderError.Error(), e.Provider, e.StatusCode)
}

func (e *ProviderError) Unwrap() error { return ErrProviderError }

// NewProviderError creates a provider error.
func NewProviderError(provider string, statusCode int) error {
	return &ProviderError{Provider: provider, StatusCode: statusCode}
}

// UnexpectedTokenError reports a classifier reply outside its allowed vocabulary.
// It is recorded, not returned: the caller falls back to the default branch.
type UnexpectedTokenError struct {
	Classifier string
	Token      string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("classifier %s returned unexpected token %q", e.Classifier, e.Token)
}
