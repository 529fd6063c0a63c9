package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
)

// ErrorCode is the machine-readable error class of an ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest          ErrorCode = "bad_request"
	ErrorCodeUnauthorized        ErrorCode = "unauthorized"
	ErrorCodeNotFound            ErrorCode = "not_found"
	ErrorCodeRateLimited         ErrorCode = "rate_limited"
	ErrorCodeQuotaExceeded       ErrorCode = "quota_exceeded"
	ErrorCodeGatewayError        ErrorCode = "gateway_error"
	ErrorCodeProviderError       ErrorCode = "provider_error"
	ErrorCodeTranscriptMissing   ErrorCode = "transcript_unavailable"
	ErrorCodeHopLimit            ErrorCode = "hop_limit_exceeded"
	ErrorCodeNotConfigured       ErrorCode = "not_configured"
	ErrorCodeInternalError       ErrorCode = "internal_error"
	ErrorCodePayloadTooLarge     ErrorCode = "payload_too_large"
	ErrorCodeUnsupportedDocument ErrorCode = "unsupported_document"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// apiError is a classified domain error.
type apiError struct {
	status int
	code   ErrorCode
	msg    string
}

// errorHandler classifies err, reporting false when it does not apply.
type errorHandler func(err error) (apiError, bool)

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(err error) (apiError, bool) {
		if !errors.Is(err, sentinel) {
			return apiError{}, false
		}
		return apiError{status: status, code: code, msg: sentinel.Error()}, true
	}
}

// providerHandler names the failing provider in the message.
func providerHandler(err error) (apiError, bool) {
	var pe *domain.ProviderError
	if !errors.As(err, &pe) {
		return apiError{}, false
	}
	return apiError{status: http.StatusBadGateway, code: ErrorCodeProviderError, msg: pe.Error()}, true
}

// Order matters: ErrHopLimitExceeded can wrap a gateway failure.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrHopLimitExceeded, http.StatusLoopDetected, ErrorCodeHopLimit),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrQuotaExceeded, http.StatusTooManyRequests, ErrorCodeQuotaExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrTranscriptUnavailable, http.StatusUnprocessableEntity, ErrorCodeTranscriptMissing),
		providerHandler,
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, ErrorCodeProviderError),
		sentinelHandler(domain.ErrGatewayError, http.StatusBadGateway, ErrorCodeGatewayError),
	}
}

// classify maps err onto an apiError, falling back to 500.
func (s *Server) classify(err error) apiError {
	for _, h := range s.errorHandlers {
		if ae, ok := h(err); ok {
			s.logger.Warn("domain error", zap.Error(err), zap.Int("status", ae.status))
			return ae
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	return apiError{status: http.StatusInternalServerError, code: ErrorCodeInternalError, msg: "internal error"}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	ae := s.classify(err)
	writeError(w, ae.status, ae.code, ae.msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
