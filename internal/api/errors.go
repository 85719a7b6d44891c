package api

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	msgCannotConnect    = "Cannot connect to server. Check that the API is running and reachable from this machine."
	msgUnknownError     = "Unknown error occurred"
	msgEmptyResponse    = "Empty response from server"
	msgUnexpectedFormat = "Unexpected response format from server (expected JSON)"
)

// APIError is the only error type the request executor returns.
//
// Status 0 means no HTTP response was obtained (network failure, refused
// connection, request that could not be built). Any other status is the
// HTTP status code the server answered with.
type APIError struct {
	Message   string
	Status    int
	Errors    map[string][]string
	RequestID string
	Err       error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		if e.Err != nil && e.Message == msgCannotConnect {
			return fmt.Sprintf("%s (%v)", e.Message, e.Err)
		}
		return e.Message
	}
	msg := fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
	if details := e.FieldErrors(); details != "" {
		msg += "\nValidation errors:\n" + details
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// FieldErrors formats the field-level validation errors, one per line, sorted.
func (e *APIError) FieldErrors() string {
	if len(e.Errors) == 0 {
		return ""
	}
	var lines []string
	for field, msgs := range e.Errors {
		for _, m := range msgs {
			lines = append(lines, fmt.Sprintf("  %s: %s", field, m))
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// IsTransportError reports whether err is an APIError raised before any
// HTTP response was received.
func IsTransportError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound
	}
	return false
}

// IsAuthError checks if the server rejected the credential.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// newHTTPError builds the application error for a non-2xx response from
// its (possibly unparseable) body.
func newHTTPError(status int, header http.Header, body any) *APIError {
	obj, _ := asObject(body)

	message := ""
	if s, ok := obj["message"].(string); ok && strings.TrimSpace(s) != "" {
		message = s
	} else if s, ok := obj["error"].(string); ok && strings.TrimSpace(s) != "" {
		message = s
	} else {
		message = fmt.Sprintf("HTTP error! status: %d", status)
	}

	return &APIError{
		Message:   message,
		Status:    status,
		Errors:    fieldErrors(obj["errors"]),
		RequestID: requestIDFromHeader(header),
	}
}

// fieldErrors accepts both {"field": "msg"} and {"field": ["msg", ...]}.
func fieldErrors(v any) map[string][]string {
	obj, ok := asObject(v)
	if !ok || len(obj) == 0 {
		return nil
	}
	out := make(map[string][]string, len(obj))
	for field, value := range obj {
		switch val := value.(type) {
		case string:
			out[field] = append(out[field], val)
		case []any:
			for _, item := range val {
				if s, ok := item.(string); ok {
					out[field] = append(out[field], s)
				}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	if id := header.Get("X-Request-Id"); id != "" {
		return id
	}
	return header.Get("X-Correlation-Id")
}
