package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const productsPath = "/api/products"

var productKeys = []string{"id", "name"}

// ProductListOptions filters the product list.
type ProductListOptions struct {
	ListOptions
	Search     string
	CategoryID string
	Tag        string
	MinPrice   float64
	MaxPrice   float64
}

func (o ProductListOptions) listOptions() ListOptions {
	opts := o.ListOptions
	filters := url.Values{}
	for key, values := range o.Filters {
		filters[key] = values
	}
	filters.Set("search", o.Search)
	filters.Set("categoryId", o.CategoryID)
	filters.Set("tag", o.Tag)
	if o.MinPrice > 0 {
		filters.Set("minPrice", strconv.FormatFloat(o.MinPrice, 'f', -1, 64))
	}
	if o.MaxPrice > 0 {
		filters.Set("maxPrice", strconv.FormatFloat(o.MaxPrice, 'f', -1, 64))
	}
	opts.Filters = filters
	return opts
}

// ProductInput is the writable part of a product. Zero fields are omitted.
type ProductInput struct {
	Name        string   `json:"name,omitempty"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	SalePrice   *float64 `json:"salePrice,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	CategoryID  string   `json:"categoryId,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Images      []string `json:"images,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// List retrieves one page of products.
func (s ProductsService) List(ctx context.Context, opts ProductListOptions) (*PaginatedResult[Product], error) {
	return listProducts(ctx, s, opts)
}

func listProducts(ctx context.Context, r Requester, opts ProductListOptions) (*PaginatedResult[Product], error) {
	return listPage[Product](ctx, r, productsPath, opts.listOptions())
}

// Get retrieves a product by ID.
func (s ProductsService) Get(ctx context.Context, id string) (*Product, error) {
	return getProduct(ctx, s, id)
}

func getProduct(ctx context.Context, r Requester, id string) (*Product, error) {
	return getEntity[Product](ctx, r, RequestSpec{Method: http.MethodGet, Path: resourcePath(productsPath, id)}, productKeys...)
}

// Create creates a product.
func (s ProductsService) Create(ctx context.Context, input ProductInput) (*Product, error) {
	return getEntity[Product](ctx, s, RequestSpec{Method: http.MethodPost, Path: productsPath, Body: input}, productKeys...)
}

// Update updates a product.
func (s ProductsService) Update(ctx context.Context, id string, input ProductInput) (*Product, error) {
	return getEntity[Product](ctx, s, RequestSpec{Method: http.MethodPut, Path: resourcePath(productsPath, id), Body: input}, productKeys...)
}

// Delete deletes a product.
func (s ProductsService) Delete(ctx context.Context, id string) error {
	return deleteProduct(ctx, s, id)
}

func deleteProduct(ctx context.Context, r Requester, id string) error {
	return sendNoContent(ctx, r, RequestSpec{Method: http.MethodDelete, Path: resourcePath(productsPath, id)})
}
