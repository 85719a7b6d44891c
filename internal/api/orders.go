package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const ordersPath = "/api/orders"

var orderKeys = []string{"id", "status"}

// OrderListOptions filters the order list.
type OrderListOptions struct {
	ListOptions
	Status     string
	CustomerID string
	From       string
	To         string
}

func (o OrderListOptions) listOptions() ListOptions {
	opts := o.ListOptions
	filters := url.Values{}
	for key, values := range o.Filters {
		filters[key] = values
	}
	filters.Set("status", o.Status)
	filters.Set("customerId", o.CustomerID)
	filters.Set("from", o.From)
	filters.Set("to", o.To)
	opts.Filters = filters
	return opts
}

// ValidateOrderStatus reports whether status is a known order status.
func ValidateOrderStatus(status string) error {
	if slices.Contains(OrderStatuses, status) {
		return nil
	}
	return NewValidationError("status", status, OrderStatuses)
}

// List retrieves one page of orders.
func (s OrdersService) List(ctx context.Context, opts OrderListOptions) (*PaginatedResult[Order], error) {
	return listOrders(ctx, s, opts)
}

func listOrders(ctx context.Context, r Requester, opts OrderListOptions) (*PaginatedResult[Order], error) {
	return listPage[Order](ctx, r, ordersPath, opts.listOptions())
}

// Get retrieves an order by ID.
func (s OrdersService) Get(ctx context.Context, id string) (*Order, error) {
	return getEntity[Order](ctx, s, RequestSpec{Method: http.MethodGet, Path: resourcePath(ordersPath, id)}, orderKeys...)
}

// UpdateStatus moves an order to a new status.
func (s OrdersService) UpdateStatus(ctx context.Context, id, status string) (*Order, error) {
	return updateOrderStatus(ctx, s, id, status)
}

func updateOrderStatus(ctx context.Context, r Requester, id, status string) (*Order, error) {
	if err := ValidateOrderStatus(status); err != nil {
		return nil, err
	}
	spec := RequestSpec{
		Method: http.MethodPatch,
		Path:   resourcePath(ordersPath, id) + "/status",
		Body:   map[string]any{"status": status},
	}
	return getEntity[Order](ctx, r, spec, orderKeys...)
}

// Cancel cancels an order. reason is optional.
func (s OrdersService) Cancel(ctx context.Context, id, reason string) (*Order, error) {
	body := map[string]any{}
	if reason != "" {
		body["reason"] = reason
	}
	spec := RequestSpec{Method: http.MethodPost, Path: resourcePath(ordersPath, id) + "/cancel", Body: body}
	return getEntity[Order](ctx, s, spec, orderKeys...)
}

// Checkout places an order from the current cart.
func (s OrdersService) Checkout(ctx context.Context, req CheckoutRequest) (*Order, error) {
	if strings.TrimSpace(req.ShippingAddress.FullName) == "" || strings.TrimSpace(req.ShippingAddress.Street) == "" {
		return nil, fmt.Errorf("shipping address requires a full name and street")
	}
	spec := RequestSpec{Method: http.MethodPost, Path: ordersPath + "/checkout", Body: req}
	return getEntity[Order](ctx, s, spec, orderKeys...)
}
