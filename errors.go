package chatdesk

import (
	"errors"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidInput          = domain.ErrInvalidInput
	ErrRateLimited           = domain.ErrRateLimited
	ErrGatewayError          = domain.ErrGatewayError
	ErrProviderError         = domain.ErrProviderError
	ErrTranscriptUnavailable = domain.ErrTranscriptUnavailable
	ErrHopLimitExceeded      = domain.ErrHopLimitExceeded
	ErrEmptyDocument         = domain.ErrEmptyDocument
	ErrQuotaExceeded         = domain.ErrQuotaExceeded
)

// ErrNotConfigured is returned by an assistant whose backends were not set up.
var ErrNotConfigured = errors.New("chatdesk: not configured")
