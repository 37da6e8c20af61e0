package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInvalidInput          = "INVALID_INPUT"
	CodeCredentialMissing     = "CREDENTIAL_MISSING"
	CodeProviderUnavailable   = "PROVIDER_UNAVAILABLE"
	CodeGenerationUnavailable = "GENERATION_UNAVAILABLE"
	CodeMalformedResponse     = "MALFORMED_RESPONSE"
	CodeAPIError              = "API_ERROR"
	CodeCache                 = "CACHE_ERROR"
	CodePersistence           = "PERSISTENCE_ERROR"
	CodeInternal              = "INTERNAL_ERROR"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrorCode lets callers read the code through any embedding wrapper.
func (e *AppError) ErrorCode() string {
	return e.Code
}

func (e *AppError) HTTPStatus() int {
	return e.StatusCode
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// APIError is a non-2xx answer from an upstream provider or relay.
type APIError struct {
	*AppError
	Channel string
}

func NewAPIError(message, channel string, statusCode int, context map[string]any) *APIError {
	if context == nil {
		context = map[string]any{}
	}
	context["channel"] = channel
	return &APIError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
		Channel: channel,
	}
}

// Retryable reports whether the upstream status is a transient 5xx.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeInvalidInput,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// CredentialError means no channel holds a usable credential for an
// operation. It is a configuration problem, not a transient outage.
type CredentialError struct {
	*AppError
	Operation string
}

func NewCredentialError(message, operation string) *CredentialError {
	return &CredentialError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCredentialMissing,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
			},
		},
		Operation: operation,
	}
}

type ProviderUnavailableError struct {
	*AppError
	Operation string
	Attempts  []string
}

// NewProviderUnavailableError builds the terminal error of a gateway run.
// Generation failures carry GENERATION_UNAVAILABLE.
func NewProviderUnavailableError(operation string, generation bool, attempts []string, cause error) *ProviderUnavailableError {
	code := CodeProviderUnavailable
	message := fmt.Sprintf("%s: every channel failed", operation)
	if generation {
		code = CodeGenerationUnavailable
		message = "generation unavailable: every channel failed"
	}
	return &ProviderUnavailableError{
		AppError: &AppError{
			Message:    message,
			Code:       code,
			StatusCode: http.StatusServiceUnavailable,
			Context: map[string]any{
				"operation": operation,
				"attempts":  attempts,
			},
			Cause: cause,
		},
		Operation: operation,
		Attempts:  attempts,
	}
}

type MalformedResponseError struct {
	*AppError
	Channel string
	Preview string
}

func NewMalformedResponseError(message, channel, preview string) *MalformedResponseError {
	return &MalformedResponseError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeMalformedResponse,
			StatusCode: http.StatusBadGateway,
			Context: map[string]any{
				"channel": channel,
				"preview": preview,
			},
		},
		Channel: channel,
		Preview: preview,
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

// PersistenceError wraps failures of the external record store so callers
// can tell them apart from pipeline failures.
type PersistenceError struct {
	*AppError
	Store string
}

func NewPersistenceError(message, store string, cause error) *PersistenceError {
	return &PersistenceError{
		AppError: &AppError{
			Message:    message,
			Code:       CodePersistence,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"store": store,
			},
			Cause: cause,
		},
		Store: store,
	}
}

type coded interface {
	ErrorCode() string
}

type statused interface {
	HTTPStatus() int
}

// CodeOf returns the first error code found in err's chain.
func CodeOf(err error) string {
	var c coded
	if stderrors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// HTTPStatus returns the status attached to err's chain, or 500.
func HTTPStatus(err error) int {
	var s statused
	if stderrors.As(err, &s) && s.HTTPStatus() > 0 {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func IsCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
