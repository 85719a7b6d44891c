package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/storefront/storefront-cli/internal/debug"
)

// Config is the process-wide client configuration. It is built once at
// startup and never mutated afterwards.
type Config struct {
	// BaseURL is the API root, e.g. https://shop.example.com.
	BaseURL string
	// TokenGetter is consulted first for the bearer credential.
	TokenGetter TokenGetter
	// TokenStore is read when TokenGetter is nil or returns nothing.
	TokenStore TokenStore
	// HTTP is the transport. When nil a client without a timeout is used.
	HTTP      *http.Client
	UserAgent string
}

// Client executes requests against the commerce API and classifies the
// outcome into a decoded JSON payload or an *APIError.
//
// A Client holds no per-call state and is safe for concurrent use. It does
// not retry, cache, or deduplicate requests.
type Client struct {
	BaseURL     string
	HTTP        *http.Client
	UserAgent   string
	tokenGetter TokenGetter
	tokenStore  TokenStore
}

// Compile-time interface implementation check
var _ Requester = (*Client)(nil)

// New creates a client from cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Transport: defaultTransport()}
	}
	return &Client{
		BaseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		HTTP:        httpClient,
		UserAgent:   cfg.UserAgent,
		tokenGetter: cfg.TokenGetter,
		tokenStore:  cfg.TokenStore,
	}
}

func defaultTransport() *http.Transport {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	return transport
}

// buildURL joins the base URL with a relative path and optional query.
func (c *Client) buildURL(path string, query url.Values) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	u := c.BaseURL + path
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + query.Encode()
	}
	return u
}

// resolveToken reads the credential once per request. A missing credential
// is not an error; the request proceeds unauthenticated.
func (c *Client) resolveToken(ctx context.Context) string {
	if c.tokenGetter != nil {
		if token := strings.TrimSpace(c.tokenGetter()); token != "" {
			return token
		}
	}
	if c.tokenStore == nil {
		return ""
	}
	token, err := c.tokenStore.Token()
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("token store unavailable, continuing unauthenticated", "error", err)
		}
		return ""
	}
	return strings.TrimSpace(token)
}

// Execute performs the request and returns the decoded body. Responses that
// are not labelled as JSON are still accepted when their text parses as JSON.
func (c *Client) Execute(ctx context.Context, spec RequestSpec) (*RawResult, error) {
	resp, data, err := c.send(ctx, spec)
	if err != nil {
		return nil, err
	}
	body, err := decodeResponse(resp, data, true)
	if err != nil {
		return nil, err
	}
	return &RawResult{Body: body, StatusCode: resp.StatusCode}, nil
}

// ExecuteWithHeaders is Execute for list endpoints that report pagination in
// response headers. The body is always treated as JSON.
func (c *Client) ExecuteWithHeaders(ctx context.Context, spec RequestSpec) (*RawResult, error) {
	resp, data, err := c.send(ctx, spec)
	if err != nil {
		return nil, err
	}
	body, err := decodeResponse(resp, data, false)
	if err != nil {
		return nil, err
	}
	return &RawResult{Body: body, Header: resp.Header.Clone(), StatusCode: resp.StatusCode}, nil
}

// send issues the HTTP request and reads the full response body.
func (c *Client) send(ctx context.Context, spec RequestSpec) (*http.Response, []byte, error) {
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	switch {
	case spec.RawBody != nil:
		bodyReader = bytes.NewReader(spec.RawBody)
	case spec.Body != nil:
		payload, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, nil, otherError(fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	reqURL := c.buildURL(spec.Path, spec.Query)
	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, nil, otherError(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if token := c.resolveToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range spec.Header {
		if len(values) == 0 || (len(values) == 1 && values[0] == "") {
			req.Header.Del(key)
			continue
		}
		req.Header[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", reqURL, "error", err)
		}
		if ctx.Err() != nil {
			return nil, nil, otherError(err)
		}
		return nil, nil, &APIError{Status: 0, Message: msgCannotConnect, Err: err}
	}
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, nil, otherError(fmt.Errorf("failed to read response: %w", err))
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", reqURL, "status", resp.StatusCode, "duration", time.Since(start))
	}
	return resp, data, nil
}

// decodeResponse classifies a received response. When sniff is set the
// Content-Type decides between the JSON path and the text fallback.
func decodeResponse(resp *http.Response, data []byte, sniff bool) (any, error) {
	status := resp.StatusCode
	success := status >= 200 && status < 300

	if sniff && !isJSONContentType(resp.Header.Get("Content-Type")) {
		if strings.TrimSpace(string(data)) == "" {
			return nil, &APIError{Status: status, Message: msgEmptyResponse, RequestID: requestIDFromHeader(resp.Header)}
		}
		body, err := DecodeJSON(data)
		if err != nil {
			return nil, &APIError{Status: status, Message: msgUnexpectedFormat, RequestID: requestIDFromHeader(resp.Header), Err: err}
		}
		if !success {
			return nil, newHTTPError(status, resp.Header, body)
		}
		return body, nil
	}

	if !success {
		body, err := DecodeJSON(data)
		if err != nil {
			body = map[string]any{}
		}
		return nil, newHTTPError(status, resp.Header, body)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	body, err := DecodeJSON(data)
	if err != nil {
		// A JSON-labelled success that fails to parse is a client-side
		// failure, not an HTTP one.
		return nil, otherError(fmt.Errorf("invalid JSON response: %w", err))
	}
	return body, nil
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func otherError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	msg := msgUnknownError
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		msg = err.Error()
	}
	return &APIError{Status: 0, Message: msg, Err: err}
}

// isEmptySuccess reports an "Empty response from server" error raised for a
// 2xx status, which endpoints without a response body produce.
func isEmptySuccess(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Message == msgEmptyResponse && apiErr.Status >= 200 && apiErr.Status < 300
}
