// Package dryrun lets mutating commands describe the request they would send
// instead of sending it.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview is the request a mutation would perform.
type Preview struct {
	Operation string         `json:"operation"`
	Resource  string         `json:"resource"`
	Method    string         `json:"method"`
	Path      string         `json:"path"`
	Body      any            `json:"body,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// Write prints the preview for humans. Details are sorted by key.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s %s\n", p.Operation, p.Resource)
	if p.Method != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", p.Method, p.Path)
	}

	keys := make([]string, 0, len(p.Details))
	for k := range p.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %s: %v\n", k, p.Details[k])
	}

	if p.Body != nil {
		if data, err := json.MarshalIndent(p.Body, "  ", "  "); err == nil {
			_, _ = fmt.Fprintf(w, "  body: %s\n", data)
		}
	}
	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
	}
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}

// WriteJSON prints the preview as a single JSON object wrapped in
// {"dryRun": true, ...}.
func (p *Preview) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		DryRun bool `json:"dryRun"`
		*Preview
	}{DryRun: true, Preview: p})
}
