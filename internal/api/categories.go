package api

import (
	"context"
	"net/http"
)

const categoriesPath = "/api/categories"

var categoryKeys = []string{"id", "name"}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name        string `json:"name,omitempty"`
	Slug        string `json:"slug,omitempty"`
	ParentID    string `json:"parentId,omitempty"`
	Description string `json:"description,omitempty"`
}

// List retrieves all categories.
func (s CategoriesService) List(ctx context.Context) ([]Category, error) {
	return listCategories(ctx, s)
}

func listCategories(ctx context.Context, r Requester) ([]Category, error) {
	return listAll[Category](ctx, r, categoriesPath, nil)
}

// Get retrieves a category by ID.
func (s CategoriesService) Get(ctx context.Context, id string) (*Category, error) {
	return getEntity[Category](ctx, s, RequestSpec{Method: http.MethodGet, Path: resourcePath(categoriesPath, id)}, categoryKeys...)
}

// Create creates a category.
func (s CategoriesService) Create(ctx context.Context, input CategoryInput) (*Category, error) {
	return getEntity[Category](ctx, s, RequestSpec{Method: http.MethodPost, Path: categoriesPath, Body: input}, categoryKeys...)
}

// Update updates a category.
func (s CategoriesService) Update(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	return getEntity[Category](ctx, s, RequestSpec{Method: http.MethodPut, Path: resourcePath(categoriesPath, id), Body: input}, categoryKeys...)
}

// Delete deletes a category.
func (s CategoriesService) Delete(ctx context.Context, id string) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: resourcePath(categoriesPath, id)})
}
