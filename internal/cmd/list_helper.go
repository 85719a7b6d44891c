package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/iocontext"
	"github.com/storefront/storefront-cli/internal/outfmt"
)

// ListConfig defines how a list command behaves
type ListConfig[T any] struct {
	Use     string
	Short   string
	Long    string
	Example string
	// Fetch returns one page. Unpaginated endpoints return every item with
	// DisablePagination set.
	Fetch        func(ctx context.Context, client *api.Client, opts api.ListOptions) (*api.PaginatedResult[T], error)
	Headers      []string
	RowFunc      func(T) []string
	EmptyMessage string
	// DisablePagination drops --page/--limit/--all and the metaData output.
	DisablePagination bool
	// DefaultMaxPages overrides the default --max-pages value (100).
	DefaultMaxPages int
}

// listPayload is the structured output of a list command.
type listPayload[T any] struct {
	Items    []T               `json:"items"`
	MetaData *api.PageMetaData `json:"metaData,omitempty"`
}

func writeJSONLItem(w io.Writer, item any, query, tmpl string) error {
	if query != "" {
		filtered, err := outfmt.ApplyQuery(item, query)
		if err != nil {
			return err
		}
		item = filtered
	}
	if tmpl != "" {
		if err := outfmt.WriteTemplate(w, item, tmpl); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// NewListCommand creates a cobra command from ListConfig
func NewListCommand[T any](cfg ListConfig[T]) *cobra.Command {
	var page int
	var pageSize int
	var all bool
	var maxPages int

	defaultMaxPages := cfg.DefaultMaxPages
	if defaultMaxPages == 0 {
		defaultMaxPages = 100
	}

	cmd := &cobra.Command{
		Use:     cfg.Use,
		Aliases: []string{"ls"},
		Short:   cfg.Short,
		Long:    cfg.Long,
		Example: cfg.Example,
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if !cfg.DisablePagination {
				if page < 1 {
					return fmt.Errorf("--page must be >= 1")
				}
				if pageSize < 0 {
					return fmt.Errorf("--limit must be >= 1")
				}
				if all && maxPages < 1 {
					return fmt.Errorf("--max-pages must be >= 1")
				}
			}

			ctx := cmd.Context()
			client, resolved, err := getClientWithConfig()
			if err != nil {
				return err
			}
			if pageSize == 0 {
				pageSize = resolved.PageSize
			}

			items, meta, err := fetchPages(ctx, cmd, cfg, client, page, pageSize, all, maxPages)
			if err != nil {
				return err
			}
			if items == nil {
				items = []T{}
			}

			ioStreams := iocontext.GetIO(ctx)
			mode := outfmt.ModeFromContext(ctx)

			if mode == outfmt.JSONL {
				query, tmpl := outfmt.GetQuery(ctx), outfmt.GetTemplate(ctx)
				for _, item := range items {
					if err := writeJSONLItem(ioStreams.Out, item, query, tmpl); err != nil {
						return err
					}
				}
				return nil
			}

			if outfmt.IsJSON(ctx) {
				payload := listPayload[T]{Items: items}
				if !cfg.DisablePagination {
					payload.MetaData = &meta
				}
				return printJSON(cmd, payload)
			}

			f := outfmt.NewFormatter(ctx, ioStreams.Out, ioStreams.ErrOut)
			if len(items) == 0 {
				if cfg.EmptyMessage != "" {
					f.Empty(cfg.EmptyMessage)
				}
				return nil
			}
			f.StartTable(cfg.Headers)
			for _, item := range items {
				f.Row(cfg.RowFunc(item)...)
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if !cfg.DisablePagination && !all && meta.HasNext() && !flags.Quiet && !flags.Silent {
				_, _ = fmt.Fprintf(ioStreams.ErrOut, "Page %d of %d (%d items). Use --page %d or --all for more.\n",
					meta.CurrentPage, meta.TotalPages, meta.TotalItems, meta.CurrentPage+1)
			}
			return nil
		}),
	}

	if !cfg.DisablePagination {
		cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
		cmd.Flags().IntVarP(&pageSize, "limit", "l", 0, "Items per page (default from settings page_size)")
		cmd.Flags().BoolVarP(&all, "all", "a", false, "Fetch all pages")
		cmd.Flags().IntVarP(&maxPages, "max-pages", "M", defaultMaxPages, "Maximum number of pages to fetch when using --all")
		flagAlias(cmd.Flags(), "max-pages", "mp")
		flagAlias(cmd.Flags(), "limit", "page-size")
	}
	return cmd
}

// fetchPages returns one page, or with all set every page from page onward
// until the reconciled metadata reports no next page. The returned metadata
// describes the last page fetched.
func fetchPages[T any](ctx context.Context, cmd *cobra.Command, cfg ListConfig[T], client *api.Client, page, pageSize int, all bool, maxPages int) ([]T, api.PageMetaData, error) {
	if cfg.DisablePagination || !all {
		result, err := cfg.Fetch(ctx, client, api.ListOptions{Page: page, PageSize: pageSize})
		if err != nil {
			return nil, api.PageMetaData{}, err
		}
		return result.Items, result.MetaData, nil
	}

	errOut := iocontext.GetIO(ctx).ErrOut
	var items []T
	var meta api.PageMetaData
	for current, fetched := page, 0; ; current, fetched = current+1, fetched+1 {
		if fetched >= maxPages {
			return nil, meta, fmt.Errorf("safety limit reached: fetched %d pages (%d items). Use --max-pages to increase the limit", maxPages, len(items))
		}
		if current > page && !flags.Quiet && !flags.Silent && !isJSON(cmd) {
			_, _ = fmt.Fprintf(errOut, "Fetching page %d...\n", current)
		}
		result, err := cfg.Fetch(ctx, client, api.ListOptions{Page: current, PageSize: pageSize})
		if err != nil {
			return nil, meta, err
		}
		items = append(items, result.Items...)
		meta = result.MetaData
		if len(result.Items) == 0 || !meta.HasNext() {
			break
		}
	}
	return items, meta, nil
}

// arrayResult adapts an unpaginated list to the list helper.
func arrayResult[T any](items []T, err error) (*api.PaginatedResult[T], error) {
	if err != nil {
		return nil, err
	}
	return &api.PaginatedResult[T]{
		Items:    items,
		MetaData: api.PageMetaData{CurrentPage: 1, TotalPages: 1, ItemsPerPage: max(len(items), 1), TotalItems: len(items)},
	}, nil
}
