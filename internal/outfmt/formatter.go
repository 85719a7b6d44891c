package outfmt

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
)

// Formatter handles output formatting for commands.
type Formatter struct {
	ctx       context.Context
	out       io.Writer
	errOut    io.Writer
	tabWriter *tabwriter.Writer
}

// NewFormatter creates a new Formatter
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{
		ctx:       ctx,
		out:       out,
		errOut:    errOut,
		tabWriter: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0),
	}
}

// Output writes data in the structured mode set on the context. It is a
// no-op in text mode.
func (f *Formatter) Output(data any) error {
	if !IsJSON(f.ctx) {
		return nil
	}
	filtered, err := ApplyQuery(data, GetQuery(f.ctx))
	if err != nil {
		return err
	}
	if tmpl := GetTemplate(f.ctx); tmpl != "" {
		return WriteTemplate(f.out, filtered, tmpl)
	}
	if IsYAML(f.ctx) {
		return WriteYAML(f.out, filtered)
	}
	if IsJSONL(f.ctx) {
		return writeLines(f.out, filtered)
	}
	return WriteJSONMaybeCompact(f.out, filtered, IsCompact(f.ctx))
}

// writeLines writes one compact JSON document per list item. Anything that
// is not a list is written as a single line.
func writeLines(w io.Writer, v any) error {
	items, ok := listItems(v)
	if !ok {
		return WriteJSONMaybeCompact(w, v, true)
	}
	for _, item := range items {
		if err := WriteJSONMaybeCompact(w, item, true); err != nil {
			return err
		}
	}
	return nil
}

// StartTable writes table headers. Returns true if in text mode.
func (f *Formatter) StartTable(headers []string) bool {
	if IsJSON(f.ctx) {
		return false
	}

	for i, h := range headers {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, h)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
	return true
}

// Row writes a single row to the table.
func (f *Formatter) Row(columns ...string) {
	for i, col := range columns {
		if i > 0 {
			_, _ = fmt.Fprint(f.tabWriter, "\t")
		}
		_, _ = fmt.Fprint(f.tabWriter, col)
	}
	_, _ = fmt.Fprintln(f.tabWriter)
}

// EndTable flushes the table output.
func (f *Formatter) EndTable() error {
	return f.tabWriter.Flush()
}

// Empty writes a message to stderr indicating no results.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}
