// Package urlparse extracts resource references from storefront URLs.
package urlparse

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// ParsedURL is a storefront URL reduced to the resource it points at.
type ParsedURL struct {
	BaseURL      string
	ResourceType string // singular form: product, order, page, ...
	ResourceID   string // empty for collection URLs
}

// resourceTypes maps the plural path segment to the singular resource name.
var resourceTypes = map[string]string{
	"products":   "product",
	"orders":     "order",
	"users":      "user",
	"media":      "media",
	"categories": "category",
	"pages":      "page",
	"tags":       "tag",
	"attributes": "attribute",
}

// urlPattern matches /{resource}[/{id}] with an optional /admin or /api
// prefix. Anything after the ID is ignored.
var urlPattern = regexp.MustCompile(`^(?:/admin|/api)?/([a-z]+)(?:/([A-Za-z0-9_-]+))?(?:/.*)?$`)

// Parse extracts the resource type and ID from a URL such as
// https://shop.example.com/admin/products/42 or
// https://shop.example.com/api/pages/about-us.
func Parse(rawURL string) (*ParsedURL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, fmt.Errorf("invalid URL: missing scheme (expected https://...)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q: expected http or https", parsed.Scheme)
	}

	matches := urlPattern.FindStringSubmatch(strings.TrimRight(parsed.Path, "/"))
	if matches == nil {
		return nil, fmt.Errorf("unrecognized storefront URL path %q: expected [/admin|/api]/{resource}[/{id}]", parsed.Path)
	}

	resourceType, ok := resourceTypes[matches[1]]
	if !ok {
		valid := make([]string, 0, len(resourceTypes))
		for k := range resourceTypes {
			valid = append(valid, k)
		}
		sort.Strings(valid)
		return nil, fmt.Errorf("unsupported resource type %q: expected one of %s", matches[1], strings.Join(valid, ", "))
	}

	return &ParsedURL{
		BaseURL:      fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host),
		ResourceType: resourceType,
		ResourceID:   matches[2],
	}, nil
}

// HasResourceID reports whether the URL names a single resource.
func (p *ParsedURL) HasResourceID() bool {
	return p.ResourceID != ""
}

// IsURL reports whether s looks like an http(s) URL rather than a bare ID.
func IsURL(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
