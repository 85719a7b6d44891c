package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a machine-readable error class for JSON error output.
type ErrorCode string

const (
	ErrBadRequest   ErrorCode = "bad_request"
	ErrUnauthorized ErrorCode = "unauthorized"
	ErrForbidden    ErrorCode = "forbidden"
	ErrNotFound     ErrorCode = "not_found"
	ErrConflict     ErrorCode = "conflict"
	ErrValidation   ErrorCode = "validation_failed"
	ErrRateLimited  ErrorCode = "rate_limited"
	ErrServerError  ErrorCode = "server_error"
	// ErrNetwork: no HTTP response was received.
	ErrNetwork ErrorCode = "network_error"
	ErrUnknown ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed when the
// caller tries again. The client itself never retries.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrNetwork:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'sf auth login' to authenticate"
	case ErrForbidden:
		return "Check the permissions of the logged-in user"
	case ErrNotFound:
		return "Verify the resource ID exists"
	case ErrRateLimited:
		return "Wait a moment and retry"
	case ErrValidation:
		return "Check the input values"
	case ErrBadRequest:
		return "Check the request format and parameters"
	case ErrConflict:
		return "The resource state may have changed; refresh and retry"
	case ErrServerError:
		return "The server encountered an error; try again later"
	case ErrNetwork:
		return "Check the base URL and that the API is reachable"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode. Status 0
// is a transport failure.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 0:
		return ErrNetwork
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError provides machine-readable error information.
type StructuredError struct {
	Code          ErrorCode           `json:"code"`
	Message       string              `json:"message"`
	Retryable     bool                `json:"retryable"`
	Suggestion    string              `json:"suggestion,omitempty"`
	Context       map[string]any      `json:"context,omitempty"`
	Fields        map[string][]string `json:"fields,omitempty"`
	AllowedValues []string            `json:"allowed_values,omitempty"`
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewStructuredError creates a StructuredError from an ErrorCode and message.
func NewStructuredError(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// NewValidationError creates a StructuredError for input validation
// failures, including the list of allowed values.
func NewValidationError(field string, got string, allowed []string) *StructuredError {
	return &StructuredError{
		Code:          ErrValidation,
		Message:       fmt.Sprintf("invalid %s %q: must be one of %s", field, got, strings.Join(allowed, ", ")),
		Suggestion:    fmt.Sprintf("Use one of: %s", strings.Join(allowed, ", ")),
		AllowedValues: allowed,
		Context:       map[string]any{"field": field, "got": got},
	}
}

// StructuredErrorFromAPIError converts an APIError to a StructuredError.
func StructuredErrorFromAPIError(apiErr *APIError) *StructuredError {
	code := ErrorCodeFromStatus(apiErr.Status)
	ctx := map[string]any{"status": apiErr.Status}
	if apiErr.RequestID != "" {
		ctx["request_id"] = apiErr.RequestID
	}
	return &StructuredError{
		Code:       code,
		Message:    apiErr.Message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
		Context:    ctx,
		Fields:     apiErr.Errors,
	}
}

// StructuredErrorFromError converts any error to a StructuredError.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return StructuredErrorFromAPIError(apiErr)
	}

	return &StructuredError{
		Code:    ErrUnknown,
		Message: err.Error(),
	}
}
