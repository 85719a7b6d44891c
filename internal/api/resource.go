package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/storefront/storefront-cli/internal/debug"
)

// DefaultPageSize is used when a list call does not set PageSize.
const DefaultPageSize = 20

// ListOptions selects one page of a paginated list. Filters are sent as
// extra query parameters.
type ListOptions struct {
	Page     int
	PageSize int
	Filters  url.Values
}

func (o ListOptions) page() int {
	if o.Page < 1 {
		return 1
	}
	return o.Page
}

func (o ListOptions) pageSize() int {
	if o.PageSize < 1 {
		return DefaultPageSize
	}
	return o.PageSize
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	for key, values := range o.Filters {
		for _, v := range values {
			if v != "" {
				q.Add(key, v)
			}
		}
	}
	q.Set("pageIndex", strconv.Itoa(o.page()))
	q.Set("pageSize", strconv.Itoa(o.pageSize()))
	return q
}

// listAll fetches an unpaginated collection.
func listAll[T any](ctx context.Context, r Requester, path string, query url.Values) ([]T, error) {
	res, err := r.Execute(ctx, RequestSpec{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, err
	}
	n := UnwrapArray(res.Body)
	logDegraded(ctx, path, HintArray, n)

	var items []T
	if err := decodeInto(n.Value, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// listPage fetches one page of a paginated collection and reconciles its
// metadata from the response header and body.
func listPage[T any](ctx context.Context, r Requester, path string, opts ListOptions) (*PaginatedResult[T], error) {
	res, err := r.ExecuteWithHeaders(ctx, RequestSpec{Method: http.MethodGet, Path: path, Query: opts.query()})
	if err != nil {
		return nil, err
	}
	n := UnwrapPaginated(res.Body)
	logDegraded(ctx, path, HintPaginated, n)

	items := []T{}
	if err := decodeInto(PageItems(n), &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &PaginatedResult[T]{
		Items:    items,
		MetaData: Reconcile(n.Value, res.Header, opts.page(), opts.pageSize()),
	}, nil
}

// getEntity executes spec and decodes the single entity in the response.
func getEntity[T any](ctx context.Context, r Requester, spec RequestSpec, discriminators ...string) (*T, error) {
	res, err := r.Execute(ctx, spec)
	if err != nil {
		return nil, err
	}
	if res.Body == nil {
		return nil, &APIError{Status: res.StatusCode, Message: msgEmptyResponse}
	}
	n := UnwrapEntity(res.Body, discriminators...)
	logDegraded(ctx, spec.Path, HintEntity, n)

	var result T
	if err := decodeInto(n.Value, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// sendNoContent executes spec and discards the response. A 2xx response
// without a body is success.
func sendNoContent(ctx context.Context, r Requester, spec RequestSpec) error {
	if _, err := r.Execute(ctx, spec); err != nil && !isEmptySuccess(err) {
		return err
	}
	return nil
}

func logDegraded(ctx context.Context, path string, hint Hint, n Normalized) {
	if !n.Degraded() || !debug.IsEnabled(ctx) {
		return
	}
	slog.Debug("response envelope not recognized",
		"path", path,
		"hint", hint.String(),
		"shape", n.Shape.String(),
		"outcome", n.Outcome.String())
}

func resourcePath(base string, id string) string {
	return base + "/" + url.PathEscape(id)
}
