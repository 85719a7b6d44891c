package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/cache"
	"github.com/storefront/storefront-cli/internal/debug"
	"github.com/storefront/storefront-cli/internal/resolve"
)

// resolveCacheDir returns the cache directory, or "" when it cannot be determined.
func resolveCacheDir() string {
	dir, err := cache.DefaultDir()
	if err != nil {
		return ""
	}
	return dir
}

// namedLookup loads the id/name list for key from the cache, or through
// fetch on a miss.
func namedLookup(ctx context.Context, client *api.Client, key string, fetch func(context.Context) ([]resolve.Named, error)) ([]resolve.Named, error) {
	var store cache.Cache
	if !cache.Disabled() {
		if dir := resolveCacheDir(); dir != "" {
			s, err := cache.Open(dir, key, client.BaseURL)
			if err != nil {
				if debug.IsEnabled(ctx) {
					slog.Debug("cache unavailable", "key", key, "error", err)
				}
			} else {
				store = s
			}
		}
	}

	var items []resolve.Named
	if store != nil && store.Get(ctx, &items) {
		return items, nil
	}
	items, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if store != nil {
		store.Put(ctx, items)
	}
	return items, nil
}

// resolveCategoryID accepts a category ID or name.
func resolveCategoryID(ctx context.Context, client *api.Client, identifier string) (string, error) {
	items, err := namedLookup(ctx, client, "categories", func(ctx context.Context) ([]resolve.Named, error) {
		categories, err := client.Categories().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		named := make([]resolve.Named, 0, len(categories))
		for _, c := range categories {
			named = append(named, resolve.Named{ID: c.ID.String(), Name: c.Name})
		}
		return named, nil
	})
	if err != nil {
		return "", err
	}
	id, err := resolve.IDOrName(identifier, items)
	if err != nil {
		return "", fmt.Errorf("category %q: %w", identifier, err)
	}
	return id, nil
}

// resolveTagName accepts a tag ID or name and returns the tag's name, which
// is what product filters expect.
func resolveTagName(ctx context.Context, client *api.Client, identifier string) (string, error) {
	items, err := namedLookup(ctx, client, "tags", func(ctx context.Context) ([]resolve.Named, error) {
		tags, err := client.Tags().List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tags: %w", err)
		}
		named := make([]resolve.Named, 0, len(tags))
		for _, t := range tags {
			named = append(named, resolve.Named{ID: t.ID.String(), Name: t.Name})
		}
		return named, nil
	})
	if err != nil {
		return "", err
	}
	id, err := resolve.IDOrName(identifier, items)
	if err != nil {
		return "", fmt.Errorf("tag %q: %w", identifier, err)
	}
	for _, item := range items {
		if item.ID == id {
			return item.Name, nil
		}
	}
	return identifier, nil
}

// invalidateNamedCache drops a cached lookup list after a mutation.
func invalidateNamedCache(ctx context.Context, client *api.Client, key string) {
	if cache.Disabled() {
		return
	}
	dir := resolveCacheDir()
	if dir == "" {
		return
	}
	if store, err := cache.Open(dir, key, client.BaseURL); err == nil {
		store.Clear(ctx)
	}
}
