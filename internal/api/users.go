package api

import (
	"context"
	"net/http"
	"net/url"
)

const usersPath = "/api/users"

var userKeys = []string{"id", "email"}

// UserInput is the writable part of a user. Zero fields are omitted.
type UserInput struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	FullName string `json:"fullName,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	Active   *bool  `json:"isActive,omitempty"`
}

// List retrieves one page of users. search matches email and name.
func (s UsersService) List(ctx context.Context, opts ListOptions, search string) (*PaginatedResult[User], error) {
	if search != "" {
		filters := url.Values{}
		for key, values := range opts.Filters {
			filters[key] = values
		}
		filters.Set("search", search)
		opts.Filters = filters
	}
	return listPage[User](ctx, s, usersPath, opts)
}

// Get retrieves a user by ID.
func (s UsersService) Get(ctx context.Context, id string) (*User, error) {
	return getEntity[User](ctx, s, RequestSpec{Method: http.MethodGet, Path: resourcePath(usersPath, id)}, userKeys...)
}

// Me retrieves the user the current credential belongs to.
func (s UsersService) Me(ctx context.Context) (*User, error) {
	return getCurrentUser(ctx, s)
}

func getCurrentUser(ctx context.Context, r Requester) (*User, error) {
	return getEntity[User](ctx, r, RequestSpec{Method: http.MethodGet, Path: usersPath + "/me"}, userKeys...)
}

// Create creates a user.
func (s UsersService) Create(ctx context.Context, input UserInput) (*User, error) {
	return getEntity[User](ctx, s, RequestSpec{Method: http.MethodPost, Path: usersPath, Body: input}, userKeys...)
}

// Update updates a user.
func (s UsersService) Update(ctx context.Context, id string, input UserInput) (*User, error) {
	return getEntity[User](ctx, s, RequestSpec{Method: http.MethodPut, Path: resourcePath(usersPath, id), Body: input}, userKeys...)
}

// Delete deletes a user.
func (s UsersService) Delete(ctx context.Context, id string) error {
	return sendNoContent(ctx, s, RequestSpec{Method: http.MethodDelete, Path: resourcePath(usersPath, id)})
}
