package api

import (
	"context"
	"fmt"
	"net/http"
)

const (
	cartPath      = "/api/cart"
	cartItemsPath = "/api/cart/items"
)

var (
	cartKeys     = []string{"id", "items"}
	cartItemKeys = []string{"id", "productId"}
)

// Get retrieves the current cart.
func (s CartService) Get(ctx context.Context) (*Cart, error) {
	return getCart(ctx, s)
}

func getCart(ctx context.Context, r Requester) (*Cart, error) {
	cart, err := getEntity[Cart](ctx, r, RequestSpec{Method: http.MethodGet, Path: cartPath}, cartKeys...)
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	return cart, nil
}

// AddItem adds quantity units of a product and returns the updated cart.
func (s CartService) AddItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	body := map[string]any{"productId": productID, "quantity": quantity}
	return mutateCart(ctx, s, RequestSpec{Method: http.MethodPost, Path: cartItemsPath, Body: body})
}

// UpdateItem sets the quantity of a cart line and returns the updated cart.
func (s CartService) UpdateItem(ctx context.Context, itemID string, quantity int) (*Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1 (use remove to drop an item)")
	}
	body := map[string]any{"quantity": quantity}
	return mutateCart(ctx, s, RequestSpec{Method: http.MethodPut, Path: resourcePath(cartItemsPath, itemID), Body: body})
}

// mutateCart executes a cart item change. Some servers answer with the whole
// cart and others with only the changed line; a line or an empty body is
// followed by a fresh cart read.
func mutateCart(ctx context.Context, r Requester, spec RequestSpec) (*Cart, error) {
	res, err := r.Execute(ctx, spec)
	if err != nil {
		if isEmptySuccess(err) {
			return getCart(ctx, r)
		}
		return nil, err
	}
	if res.Body == nil {
		return getCart(ctx, r)
	}
	n := UnwrapEntity(res.Body, cartKeys...)
	if n.Degraded() {
		if line := UnwrapEntity(res.Body, cartItemKeys...); !line.Degraded() {
			return getCart(ctx, r)
		}
		logDegraded(ctx, spec.Path, HintEntity, n)
	}
	var cart Cart
	if err := decodeInto(n.Value, &cart); err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	return &cart, nil
}

// RemoveItem removes a cart line.
func (s CartService) RemoveItem(ctx context.Context, itemID string) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: resourcePath(cartItemsPath, itemID)})
}

// Clear empties the cart.
func (s CartService) Clear(ctx context.Context) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: cartPath})
}
