package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const loginPath = "/api/auth/login"

// Login exchanges credentials for a bearer token. The login request is sent
// without any stored credential.
func (s AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	spec := RequestSpec{
		Method: http.MethodPost,
		Path:   loginPath,
		Body:   map[string]any{"email": email, "password": password},
		Header: http.Header{"Authorization": []string{""}},
	}
	resp, err := getEntity[LoginResponse](ctx, s, spec, "token")
	if err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "login response did not include a token"}
	}
	return resp, nil
}
