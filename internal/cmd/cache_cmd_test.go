package cmd

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/storefront/storefront-cli/internal/cache"
	"github.com/storefront/storefront-cli/internal/resolve"
)

func TestCachePathAndClear(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())
	t.Setenv("STOREFRONT_NO_CACHE", "")

	dir := resolveCacheDir()
	if dir == "" {
		t.Fatal("no cache dir")
	}
	store := cache.NewStore(dir, "categories", "https://shop.example.com")
	store.Put(context.Background(), []resolve.Named{{ID: "1", Name: "Shoes"}})

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"cache", "path"}); err != nil {
			t.Fatalf("cache path failed: %v", err)
		}
	})
	if !strings.HasPrefix(output, dir) {
		t.Errorf("output should start with %s:\n%s", dir, output)
	}
	if !strings.Contains(output, ".json (") {
		t.Errorf("cache entry not listed:\n%s", output)
	}

	output = captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"cache", "clear"}); err != nil {
			t.Fatalf("cache clear failed: %v", err)
		}
	})
	if !strings.Contains(output, "Cache cleared") {
		t.Errorf("output = %q", output)
	}
	var items []resolve.Named
	if store.Get(context.Background(), &items) {
		t.Error("entry survived cache clear")
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			t.Errorf("leftover cache file %s", e.Name())
		}
	}
}

func TestCacheClear_Redis(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())
	t.Setenv("STOREFRONT_NO_CACHE", "")

	mr := miniredis.RunT(t)
	t.Setenv(cache.RedisURLEnv, "redis://"+mr.Addr())

	client, err := cache.NewRedisClient("redis://" + mr.Addr())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = client.Close() }()
	cache.NewRedisStore(client, "tags", "https://shop.example.com").Put(context.Background(), []resolve.Named{{ID: "3", Name: "sale"}})
	if len(mr.Keys()) == 0 {
		t.Fatal("redis entry not written")
	}

	output := captureStdout(t, func() {
		if err := Execute(context.Background(), []string{"cache", "clear"}); err != nil {
			t.Fatalf("cache clear failed: %v", err)
		}
	})
	if !strings.Contains(output, "Redis cache cleared") {
		t.Errorf("output = %q", output)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("redis keys left: %v", keys)
	}
}

func TestResolveCategoryID_UsesCache(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/api/categories", jsonResponse(200, `[{"id":1,"name":"Shoes"},{"id":2,"name":"Hats"}]`)).
		On("GET", "/api/products", jsonResponse(200, `{"items":[],"currentPage":1}`))
	setupTestEnvWithHandler(t, handler)
	t.Setenv("STOREFRONT_NO_CACHE", "")

	for range 2 {
		captureStdout(t, func() {
			if err := Execute(context.Background(), []string{"products", "list", "--category", "hats"}); err != nil {
				t.Fatalf("products list failed: %v", err)
			}
		})
	}
	if n := handler.count("GET", "/api/categories"); n != 1 {
		t.Errorf("categories fetched %d times, want 1", n)
	}
	if q := handler.last(t, "GET", "/api/products").Query; !strings.Contains(q, "categoryId=2") {
		t.Errorf("products query = %q", q)
	}
}
