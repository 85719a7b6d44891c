package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storefront/storefront-cli/internal/config"
)

func TestAuthLogin_EmailPassword(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/auth/login", jsonResponse(200, `{"data":{"token":"tok-abc-123456","user":{"id":1,"email":"admin@example.com"}}}`))
	setupTestEnvWithHandler(t, handler)
	useMemoryKeyring(t)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--email", "admin@example.com", "--password", "hunter22"})
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
	})
	if !strings.Contains(output, "Logged in.") {
		t.Errorf("output = %q", output)
	}

	req := handler.last(t, "POST", "/api/auth/login")
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("login must not send a token, got Authorization %q", got)
	}
	var body map[string]string
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("login body: %v", err)
	}
	if body["email"] != "admin@example.com" || body["password"] != "hunter22" {
		t.Errorf("login body = %v", body)
	}

	account, err := config.LoadProfile("default")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if account.Token != "tok-abc-123456" || account.Email != "admin@example.com" {
		t.Errorf("account = %+v", account)
	}
}

func TestAuthLogin_InvalidCredentials(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/auth/login", jsonResponse(401, `{"message":"Invalid credentials"}`))
	setupTestEnvWithHandler(t, handler)
	useMemoryKeyring(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"auth", "login", "--email", "admin@example.com", "--password", "wrong"})
	})
	if err == nil || !strings.Contains(err.Error(), "invalid email or password") {
		t.Fatalf("err = %v", err)
	}
	if _, err := config.LoadProfile("default"); err == nil {
		t.Error("failed login must not store a profile")
	}
}

func TestAuthLogin_TokenVerified(t *testing.T) {
	var gotAuth string
	handler := newRouteHandler().
		On("GET", "/api/users/me", func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			jsonResponse(200, `{"id":"u1","email":"staff@example.com"}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)
	useMemoryKeyring(t)

	captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--token", "tok-staging-9999", "--profile", "staging"})
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
	})
	if gotAuth != "Bearer tok-staging-9999" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	account, err := config.LoadProfile("staging")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if account.Email != "staff@example.com" {
		t.Errorf("email = %q", account.Email)
	}
	if current, _ := config.CurrentProfile(); current != "staging" {
		t.Errorf("current profile = %q", current)
	}
}

func TestAuthLogin_NoVerifySkipsRequest(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)
	useMemoryKeyring(t)

	captureStdout(t, func() {
		err := Execute(context.Background(), []string{"auth", "login", "--token", "tok-offline-0000", "--no-verify"})
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
	})
	if handler.count("GET", "/api/users/me") != 0 {
		t.Error("--no-verify must not call the API")
	}
}

func TestAuthLogin_EnvFile(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/auth/login", jsonResponse(200, `{"token":"tok-from-envfile"}`))
	env := setupTestEnvWithHandler(t, handler)
	useMemoryKeyring(t)
	t.Setenv("STOREFRONT_BASE_URL", "")

	path := filepath.Join(t.TempDir(), ".env")
	content := "STOREFRONT_BASE_URL=" + env.server.URL + "\nSTOREFRONT_EMAIL=ops@example.com\nSTOREFRONT_PASSWORD=s3cretpass\nSTOREFRONT_PROFILE=ops\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"auth", "login", "--env-file", path}); err != nil {
			t.Fatalf("login failed: %v", err)
		}
	})
	account, err := config.LoadProfile("ops")
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if account.BaseURL != env.server.URL || account.Token != "tok-from-envfile" || account.Email != "ops@example.com" {
		t.Errorf("account = %+v", account)
	}
}

func TestAuthLogin_RequiresEmailOrToken(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())
	useMemoryKeyring(t)

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"auth", "login"})
	})
	if err == nil || !strings.Contains(err.Error(), "--email or --token is required") {
		t.Errorf("err = %v", err)
	}
	if ExitCode(err) != exitUsage {
		t.Errorf("exit code = %d, want %d", ExitCode(err), exitUsage)
	}
}

func TestAuthStatus(t *testing.T) {
	env := setupTestEnvWithHandler(t, newRouteHandler())
	useMemoryKeyring(t)

	t.Run("env token", func(t *testing.T) {
		output := captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"auth", "status", "-o", "json"}); err != nil {
				t.Fatalf("status failed: %v", err)
			}
		})
		status := decodeObject(t, output)
		if status["source"] != "env" || status["authenticated"] != true {
			t.Errorf("status = %v", status)
		}
		if status["token"] == "test-token" {
			t.Error("token must be masked")
		}
	})

	t.Run("keychain token", func(t *testing.T) {
		t.Setenv("STOREFRONT_TOKEN", "")
		if err := config.SaveProfile("default", config.Account{BaseURL: env.server.URL, Token: "tok-keychain-7777", Email: "a@example.com"}); err != nil {
			t.Fatal(err)
		}
		output := captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"auth", "status"}); err != nil {
				t.Fatalf("status failed: %v", err)
			}
		})
		for _, want := range []string{"Authenticated", "Source: keychain", "tok-", "a@example.com"} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
		if strings.Contains(output, "keychain-7777") {
			t.Error("token must be masked")
		}
	})

	t.Run("not authenticated", func(t *testing.T) {
		t.Setenv("STOREFRONT_TOKEN", "")
		t.Setenv("STOREFRONT_PROFILE", "nobody")
		output := captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"auth", "status"}); err != nil {
				t.Fatalf("status failed: %v", err)
			}
		})
		if !strings.Contains(output, "Not authenticated.") {
			t.Errorf("output = %q", output)
		}
	})
}

func TestAuthLogout(t *testing.T) {
	env := setupTestEnvWithHandler(t, newRouteHandler())
	useMemoryKeyring(t)

	if err := config.SaveProfile("default", config.Account{BaseURL: env.server.URL, Token: "tok"}); err != nil {
		t.Fatal(err)
	}

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"auth", "logout"}); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
	})
	if !strings.Contains(output, "Profile default removed.") {
		t.Errorf("output = %q", output)
	}
	if _, err := config.LoadProfile("default"); err == nil {
		t.Error("profile still stored after logout")
	}

	output = captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"auth", "logout"}); err != nil {
			t.Fatalf("second logout failed: %v", err)
		}
	})
	if !strings.Contains(output, "No credentials found.") {
		t.Errorf("output = %q", output)
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"":             "",
		"short":        "*****",
		"abcdefgh":     "abcdefgh",
		"abcd12345xyz": "abcd****5xyz",
	}
	for in, want := range tests {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFirstSet(t *testing.T) {
	if got := firstSet("", "  ", "b", "c"); got != "b" {
		t.Errorf("firstSet = %q", got)
	}
	if got := firstSet(); got != "" {
		t.Errorf("firstSet() = %q", got)
	}
}
