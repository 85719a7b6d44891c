package api

import (
	"context"
	"net/http"
)

const attributesPath = "/api/attributes"

var attributeKeys = []string{"id", "name"}

// AttributeInput is the writable part of an attribute.
type AttributeInput struct {
	Name   string   `json:"name,omitempty"`
	Values []string `json:"values,omitempty"`
}

// List retrieves all attributes.
func (s AttributesService) List(ctx context.Context) ([]Attribute, error) {
	return listAll[Attribute](ctx, s, attributesPath, nil)
}

// Get retrieves an attribute by ID.
func (s AttributesService) Get(ctx context.Context, id string) (*Attribute, error) {
	return getEntity[Attribute](ctx, s, RequestSpec{Method: http.MethodGet, Path: resourcePath(attributesPath, id)}, attributeKeys...)
}

// Create creates an attribute.
func (s AttributesService) Create(ctx context.Context, input AttributeInput) (*Attribute, error) {
	return getEntity[Attribute](ctx, s, RequestSpec{Method: http.MethodPost, Path: attributesPath, Body: input}, attributeKeys...)
}

// Update updates an attribute.
func (s AttributesService) Update(ctx context.Context, id string, input AttributeInput) (*Attribute, error) {
	return getEntity[Attribute](ctx, s, RequestSpec{Method: http.MethodPut, Path: resourcePath(attributesPath, id), Body: input}, attributeKeys...)
}

// Delete deletes an attribute.
func (s AttributesService) Delete(ctx context.Context, id string) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: resourcePath(attributesPath, id)})
}
