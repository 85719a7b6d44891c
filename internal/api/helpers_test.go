package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(baseURL, token string) *Client {
	return New(Config{BaseURL: baseURL, TokenGetter: StaticToken(token)})
}

// newJSONServer serves body with the given status as application/json and
// records the last request.
func newJSONServer(t *testing.T, status int, body string, last **http.Request) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if last != nil {
			*last = r.Clone(context.Background())
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

type staticStore struct {
	token string
	err   error
}

func (s staticStore) Token() (string, error) { return s.token, s.err }

var errStoreLocked = errors.New("keyring locked")

// fakeRequester answers every call with the same result.
type fakeRequester struct {
	body   any
	header http.Header
	err    error
	specs  []RequestSpec
}

func (f *fakeRequester) Execute(_ context.Context, spec RequestSpec) (*RawResult, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return nil, f.err
	}
	return &RawResult{Body: f.body, StatusCode: http.StatusOK}, nil
}

func (f *fakeRequester) ExecuteWithHeaders(_ context.Context, spec RequestSpec) (*RawResult, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return nil, f.err
	}
	return &RawResult{Body: f.body, Header: f.header, StatusCode: http.StatusOK}, nil
}

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	v, err := DecodeJSON([]byte(s))
	if err != nil {
		t.Fatalf("DecodeJSON(%s): %v", s, err)
	}
	return v
}

func asAPIError(t *testing.T, err error) *APIError {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	return apiErr
}
