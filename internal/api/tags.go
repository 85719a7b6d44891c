package api

import (
	"context"
	"net/http"
)

const tagsPath = "/api/tags"

var tagKeys = []string{"id", "name"}

// List retrieves all tags.
func (s TagsService) List(ctx context.Context) ([]Tag, error) {
	return listAll[Tag](ctx, s, tagsPath, nil)
}

// Create creates a tag.
func (s TagsService) Create(ctx context.Context, name, slug string) (*Tag, error) {
	body := map[string]any{"name": name}
	if slug != "" {
		body["slug"] = slug
	}
	return getEntity[Tag](ctx, s, RequestSpec{Method: http.MethodPost, Path: tagsPath, Body: body}, tagKeys...)
}

// Delete deletes a tag.
func (s TagsService) Delete(ctx context.Context, id string) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: resourcePath(tagsPath, id)})
}
