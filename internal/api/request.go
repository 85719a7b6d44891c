package api

import (
	"net/http"
	"net/url"
)

// RequestSpec describes one call. Path is relative to the configured base URL.
type RequestSpec struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// RawBody is sent as-is and takes precedence over Body. Callers set the
	// matching Content-Type through Header.
	RawBody []byte
	// Header entries are applied last and win over the defaults. An entry
	// with an empty value removes that header.
	Header http.Header
}

// RawResult is the decoded body of a successful response. Header is only
// populated by ExecuteWithHeaders.
type RawResult struct {
	Body       any
	Header     http.Header
	StatusCode int
}

// TokenGetter supplies the bearer credential for a request. An empty return
// means no credential is available from this source.
type TokenGetter func() string

// TokenStore is the persisted credential fallback. The client only reads it.
type TokenStore interface {
	Token() (string, error)
}

// StaticToken is a TokenGetter that always returns the same token.
func StaticToken(token string) TokenGetter {
	return func() string { return token }
}
