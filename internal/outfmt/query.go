package outfmt

import (
	"context"
	"io"

	"github.com/goccy/go-json"

	"github.com/storefront/storefront-cli/internal/filter"
)

type queryKey struct{}

// WithQuery adds a jq query to the context
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery retrieves the jq query from context
func GetQuery(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// WriteJSONFiltered writes JSON with optional jq filtering.
// Uses pretty-printed output by default; pass compact=true for single-line output.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	result, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}

// ApplyQuery applies a jq query to structured data and returns the filtered value.
func ApplyQuery(v any, query string) (any, error) {
	v = normalizeJSONOutput(v)
	if query == "" {
		return v, nil
	}

	// Marshal first so the filter sees plain JSON values, not Go structs.
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return filter.ApplyFromJSON(data, query)
}
