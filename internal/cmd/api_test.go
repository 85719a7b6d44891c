package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/storefront/storefront-cli/internal/api"
)

func TestAPICommand_ArrayHintUnwrapsData(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/categories", jsonResponse(200, `{"data":[{"id":1,"name":"Shoes"},{"id":2,"name":"Hats"}]}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"api", "/api/categories", "-o", "json"}); err != nil {
			t.Fatalf("api failed: %v", err)
		}
	})

	resp := decodeObject(t, output)
	if resp["shape"] != "data-wrapped" || resp["outcome"] != "unwrapped" {
		t.Errorf("shape/outcome = %v/%v", resp["shape"], resp["outcome"])
	}
	if resp["degraded"] == true {
		t.Error("expected degraded to be false")
	}
	value, ok := resp["value"].([]any)
	if !ok || len(value) != 2 {
		t.Fatalf("value = %#v, want 2 items", resp["value"])
	}
	if resp["status"] != float64(200) {
		t.Errorf("status = %v", resp["status"])
	}
}

func TestAPICommand_PathWithoutLeadingSlash(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/tags", jsonResponse(200, `[{"id":1,"name":"sale"}]`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"api", "api/tags", "-o", "json"}); err != nil {
			t.Fatalf("api failed: %v", err)
		}
	})
	if resp := decodeObject(t, output); resp["shape"] != "bare-array" || resp["outcome"] != "direct" {
		t.Errorf("shape/outcome = %v/%v", resp["shape"], resp["outcome"])
	}
}

func TestAPICommand_PaginatedHintReconcilesHeader(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/products", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Pagination", `{"currentPage":2,"totalPages":4,"itemsPerPage":50,"totalItems":180}`)
			_, _ = w.Write([]byte(`{"data":{"items":[{"id":51},{"id":52}],"pageIndex":7,"totalPages":99}}`))
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"api", "/api/products", "--hint", "paginated", "--page", "2", "--page-size", "50", "-o", "json"})
		if err != nil {
			t.Fatalf("api failed: %v", err)
		}
	})

	var resp struct {
		Hint     string           `json:"hint"`
		Shape    string           `json:"shape"`
		Value    []map[string]any `json:"value"`
		MetaData api.PageMetaData `json:"metaData"`
	}
	if err := json.Unmarshal([]byte(output), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, output)
	}
	if resp.Hint != "paginated" || resp.Shape != "data-wrapped" {
		t.Errorf("hint/shape = %s/%s", resp.Hint, resp.Shape)
	}
	if len(resp.Value) != 2 {
		t.Errorf("value has %d items, want 2", len(resp.Value))
	}
	want := api.PageMetaData{CurrentPage: 2, TotalPages: 4, ItemsPerPage: 50, TotalItems: 180}
	if resp.MetaData != want {
		t.Errorf("metaData = %+v, want %+v", resp.MetaData, want)
	}

	q, _ := url.ParseQuery(handler.last(t, "GET", "/api/products").Query)
	if q.Get("pageIndex") != "2" || q.Get("pageSize") != "50" {
		t.Errorf("query = %v", q)
	}
}

func TestAPICommand_EntityHintWithKeys(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/pages/about-us", jsonResponse(200, `{"value":{"slug":"about-us","title":"About"}}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"api", "/api/pages/about-us", "--hint", "entity", "--keys", "slug", "-o", "json"})
		if err != nil {
			t.Fatalf("api failed: %v", err)
		}
	})
	resp := decodeObject(t, output)
	if resp["shape"] != "value-wrapped" || resp["outcome"] != "unwrapped" {
		t.Errorf("shape/outcome = %v/%v", resp["shape"], resp["outcome"])
	}
	value, _ := resp["value"].(map[string]any)
	if value["title"] != "About" {
		t.Errorf("value = %#v", resp["value"])
	}
}

func TestAPICommand_DegradedOutcomeInText(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/provinces", jsonResponse(200, `{"message":"maintenance"}`))
	setupTestEnvWithHandler(t, handler)

	var stdout string
	stderr := captureStderr(t, func() {
		stdout = captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"api", "/api/provinces"}); err != nil {
				t.Fatalf("api failed: %v", err)
			}
		})
	})
	if !strings.Contains(stderr, "outcome: default (degraded)") {
		t.Errorf("stderr = %q", stderr)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("stdout = %q, want empty array", stdout)
	}
}

func TestAPICommand_RawSkipsNormalization(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/cart", jsonResponse(200, `{"data":{"id":"c1","items":[]}}`))
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"api", "/api/cart", "--raw", "-o", "json"}); err != nil {
			t.Fatalf("api failed: %v", err)
		}
	})
	resp := decodeObject(t, output)
	if _, ok := resp["shape"]; ok {
		t.Error("raw output should not report a shape")
	}
	value, _ := resp["value"].(map[string]any)
	if _, ok := value["data"]; !ok {
		t.Errorf("raw value lost its envelope: %#v", resp["value"])
	}
}

func TestAPICommand_PostFields(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/tags", jsonResponse(201, `{"data":{"id":7,"name":"Summer"}}`))
	setupTestEnvWithHandler(t, handler)

	captureStdout(t, func() {
		err := Execute(context.Background(), []string{"api", "POST", "/api/tags", "-f", "name=Summer", "-F", "sort=3", "--hint", "entity", "-o", "json"})
		if err != nil {
			t.Fatalf("api failed: %v", err)
		}
	})

	var body map[string]any
	if err := json.Unmarshal(handler.last(t, "POST", "/api/tags").Body, &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if body["name"] != "Summer" || body["sort"] != float64(3) {
		t.Errorf("body = %#v", body)
	}
}

func TestAPICommand_DryRunSkipsRequest(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		err := Execute(context.Background(), []string{"api", "DELETE", "/api/products/9", "--dry-run"})
		if err != nil {
			t.Fatalf("api failed: %v", err)
		}
	})
	if handler.count("DELETE", "/api/products/9") != 0 {
		t.Error("dry run must not send the request")
	}
	if !strings.Contains(output, "/api/products/9") {
		t.Errorf("preview missing path: %q", output)
	}
}

func TestAPICommand_ErrorStatus(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/orders/404", jsonResponse(404, `{"message":"Order not found"}`))
	setupTestEnvWithHandler(t, handler)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"api", "/api/orders/404"})
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if ExitCode(err) != exitNotFound {
		t.Errorf("exit code = %d, want %d", ExitCode(err), exitNotFound)
	}
	if !strings.Contains(stderr, "Order not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestAPICommand_Validation(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad method", []string{"api", "TRACE", "/api/x"}, "invalid HTTP method"},
		{"method twice", []string{"api", "POST", "/api/x", "-X", "PUT"}, "method given twice"},
		{"bad hint", []string{"api", "/api/x", "--hint", "tree"}, "invalid hint"},
		{"body and input", []string{"api", "POST", "/api/x", "-d", "{}", "-i", "file.json"}, "cannot use both"},
		{"bad field", []string{"api", "POST", "/api/x", "-f", "novalue"}, "must be key=value"},
		{"bad raw field", []string{"api", "POST", "/api/x", "-F", "a={"}, "invalid JSON in raw field"},
		{"bad page", []string{"api", "/api/x", "--hint", "paginated", "--page", "0"}, "--page must be >= 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			captureStderr(t, func() {
				err = Execute(context.Background(), tt.args)
			})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestBuildRequestBody(t *testing.T) {
	body, err := buildRequestBody([]string{"name=Red", "name=Blue"}, []string{`values=["S","M"]`}, "", `{"name":"Green","id":3}`)
	if err != nil {
		t.Fatalf("buildRequestBody: %v", err)
	}
	if body["name"] != "Blue" {
		t.Errorf("later fields should win, got %v", body["name"])
	}
	if body["id"] != float64(3) {
		t.Errorf("id = %v", body["id"])
	}
	if values, ok := body["values"].([]any); !ok || len(values) != 2 {
		t.Errorf("values = %#v", body["values"])
	}

	empty, err := buildRequestBody(nil, nil, "", "")
	if err != nil || empty != nil {
		t.Errorf("empty body = %v, %v", empty, err)
	}
}

func TestBuildQuery(t *testing.T) {
	q, err := buildQuery([]string{"status=pending", "tag=a", "tag=b"})
	if err != nil {
		t.Fatalf("buildQuery: %v", err)
	}
	if q.Get("status") != "pending" || len(q["tag"]) != 2 {
		t.Errorf("query = %v", q)
	}
	if _, err := buildQuery([]string{"=x"}); err == nil {
		t.Error("expected error for empty key")
	}
}
