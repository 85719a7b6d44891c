package cmd

import (
	"context"
	"strings"
	"testing"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"orders", "orders", 0},
		{"ordrs", "orders", 1},
		{"prodcuts", "products", 2},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []string{"products", "orders", "users", "categories", "cart", "tags"}
	tests := map[string]string{
		"prodcts":    "products",
		"ORDERS":     "orders",
		"crat":       "cart",
		"catgories":  "categories",
		"xyzzyplugh": "",
		"":           "",
	}
	for input, want := range tests {
		if got := suggestCommand(input, commands); got != want {
			t.Errorf("suggestCommand(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagNames := []string{"--status", "--customer", "--from", "--to"}
	if got := suggestFlag("--stauts", flagNames); got != "--status" {
		t.Errorf("suggestFlag = %q, want --status", got)
	}
	if got := suggestFlag("-custmer", flagNames); got != "--customer" {
		t.Errorf("suggestFlag = %q, want --customer", got)
	}
	if got := suggestFlag("--completely-different", flagNames); got != "" {
		t.Errorf("suggestFlag = %q, want none", got)
	}
}

func TestExecute_UnknownCommandSuggestion(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"prodcts", "list"})
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(stderr, `Did you mean "products"?`) {
		t.Errorf("stderr = %q", stderr)
	}
	if ExitCode(err) != exitUsage {
		t.Errorf("exit code = %d, want %d", ExitCode(err), exitUsage)
	}
}

func TestExecute_UnknownFlagSuggestion(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"orders", "list", "--stauts", "pending"})
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(stderr, `Did you mean "--status"?`) {
		t.Errorf("stderr = %q", stderr)
	}
	if !strings.Contains(stderr, "sf orders list --help") {
		t.Errorf("stderr missing help hint: %q", stderr)
	}
}

func TestExtractHelpers(t *testing.T) {
	if got := extractQuoted(`unknown command "prodcts" for "sf"`); got != "prodcts" {
		t.Errorf("extractQuoted = %q", got)
	}
	if got := extractFlag("unknown flag: --stauts"); got != "--stauts" {
		t.Errorf("extractFlag = %q", got)
	}
	if got := extractFlag("unknown shorthand flag: 'z' in -z"); got != "-z" {
		t.Errorf("extractFlag shorthand = %q", got)
	}
	if got := extractQuoted("no quotes"); got != "" {
		t.Errorf("extractQuoted = %q", got)
	}
}
