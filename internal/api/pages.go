package api

import (
	"context"
	"net/http"
)

const pagesPath = "/api/pages"

var pageKeys = []string{"id", "slug"}

// PageInput is the writable part of a CMS page.
type PageInput struct {
	Slug    string `json:"slug,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// List retrieves one page of CMS pages.
func (s PagesService) List(ctx context.Context, opts ListOptions) (*PaginatedResult[Page], error) {
	return listPage[Page](ctx, s, pagesPath, opts)
}

// Get retrieves a CMS page by ID or slug.
func (s PagesService) Get(ctx context.Context, idOrSlug string) (*Page, error) {
	return getEntity[Page](ctx, s, RequestSpec{Method: http.MethodGet, Path: resourcePath(pagesPath, idOrSlug)}, pageKeys...)
}

// Create creates a CMS page as a draft.
func (s PagesService) Create(ctx context.Context, input PageInput) (*Page, error) {
	return getEntity[Page](ctx, s, RequestSpec{Method: http.MethodPost, Path: pagesPath, Body: input}, pageKeys...)
}

// Update updates a CMS page.
func (s PagesService) Update(ctx context.Context, id string, input PageInput) (*Page, error) {
	return getEntity[Page](ctx, s, RequestSpec{Method: http.MethodPut, Path: resourcePath(pagesPath, id), Body: input}, pageKeys...)
}

// Publish publishes or unpublishes a CMS page.
func (s PagesService) Publish(ctx context.Context, id string, published bool) (*Page, error) {
	spec := RequestSpec{
		Method: http.MethodPatch,
		Path:   resourcePath(pagesPath, id) + "/publish",
		Body:   map[string]any{"isPublished": published},
	}
	return getEntity[Page](ctx, s, spec, pageKeys...)
}

// Delete deletes a CMS page.
func (s PagesService) Delete(ctx context.Context, id string) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: resourcePath(pagesPath, id)})
}
