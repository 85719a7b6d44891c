package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const twoTags = `[{"id":1,"name":"sale","slug":"sale"},{"id":2,"name":"new","slug":"new-in"}]`

func tagsHandler() *routeHandler {
	return newRouteHandler().On("GET", "/api/tags", jsonResponse(200, twoTags))
}

func TestGetJQQuery_Precedence(t *testing.T) {
	t.Cleanup(func() { flags = rootFlags{Output: "text"} })

	tests := []struct {
		name  string
		jq    string
		query string
		want  string
	}{
		{"jq wins", ".id", ".name", ".id"},
		{"query fallback", "", ".name", ".name"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags = rootFlags{JQ: tt.jq, Query: tt.query}
			if got := getJQQuery(); got != tt.want {
				t.Errorf("getJQQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuery_ImpliesJSON(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"tags", "list", "--jq", ".items | map(.slug)"}); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(output, `"new-in"`) || strings.Contains(output, "SLUG") {
		t.Errorf("expected JSON slugs, got %q", output)
	}
}

func TestQuery_ExplicitTextIsRejected(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"tags", "list", "-o", "text", "--query", ".items"})
	})
	if err == nil || !strings.Contains(err.Error(), "require --output json") {
		t.Errorf("err = %v", err)
	}
}

func TestQueryFile(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())
	path := filepath.Join(t.TempDir(), "count.jq")
	if err := os.WriteFile(path, []byte(".items | length\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"tags", "list", "--query-file", path}); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if strings.TrimSpace(output) != "2" {
		t.Errorf("output = %q", output)
	}
}

func TestQueryFile_Errors(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())
	empty := filepath.Join(t.TempDir(), "empty.jq")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"with query", []string{"tags", "list", "--query-file", empty, "--query", ".items"}, "cannot be used with --query"},
		{"empty file", []string{"tags", "list", "--query-file", empty}, "is empty"},
		{"missing file", []string{"tags", "list", "--query-file", filepath.Join(t.TempDir(), "nope.jq")}, "failed to read --query-file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			captureStderr(t, func() {
				err = Execute(context.Background(), tt.args)
			})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFields_SelectsFromItems(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"tags", "list", "--fields", "id,name", "--compact-json"}); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	want := `{"items":[{"id":"1","name":"sale"},{"id":"2","name":"new"}]}`
	if strings.TrimSpace(output) != want {
		t.Errorf("output = %q, want %q", output, want)
	}
}

func TestFields_ConflictsWithQuery(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())

	var err error
	captureStderr(t, func() {
		err = Execute(context.Background(), []string{"tags", "list", "--fields", "id", "--query", ".items"})
	})
	if err == nil || !strings.Contains(err.Error(), "--fields and --query/--jq cannot be used together") {
		t.Errorf("err = %v", err)
	}
}

func TestItemsOnly(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"tags", "list", "--items-only", "-o", "json", "--compact-json"}); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.HasPrefix(strings.TrimSpace(output), "[") {
		t.Errorf("expected a bare array, got %q", output)
	}
}

func TestTemplate_RendersFilteredValue(t *testing.T) {
	setupTestEnvWithHandler(t, tagsHandler())

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"tags", "list", "--fields", "name", "--template", "{{range .items}}{{.name}};{{end}}"})
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if output != "sale;new;" {
		t.Errorf("output = %q", output)
	}
}
