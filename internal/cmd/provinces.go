package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/api"
)

func newProvincesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "provinces",
		Aliases: []string{"province"},
		Short:   "Look up provinces for shipping addresses",
	}

	cmd.AddCommand(NewListCommand(ListConfig[api.Province]{
		Use:               "list",
		Short:             "List provinces",
		DisablePagination: true,
		EmptyMessage:      "No provinces found",
		Headers:           []string{"CODE", "NAME"},
		RowFunc: func(p api.Province) []string {
			return []string{p.Code.String(), p.Name}
		},
		Fetch: func(ctx context.Context, client *api.Client, _ api.ListOptions) (*api.PaginatedResult[api.Province], error) {
			provinces, err := client.Provinces().List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list provinces: %w", err)
			}
			return arrayResult(provinces, nil)
		},
	}))
	return cmd
}

func newWardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wards",
		Aliases: []string{"ward"},
		Short:   "Look up wards of a province",
	}

	var province string
	list := NewListCommand(ListConfig[api.Ward]{
		Use:               "list <province-code>",
		Short:             "List wards of a province",
		DisablePagination: true,
		EmptyMessage:      "No wards found",
		Example: strings.TrimSpace(`
  sf wards list 01
`),
		Headers: []string{"CODE", "NAME"},
		RowFunc: func(w api.Ward) []string {
			return []string{w.Code.String(), w.Name}
		},
		Fetch: func(ctx context.Context, client *api.Client, _ api.ListOptions) (*api.PaginatedResult[api.Ward], error) {
			wards, err := client.Provinces().Wards(ctx, province)
			if err != nil {
				return nil, fmt.Errorf("failed to list wards of province %s: %w", province, err)
			}
			return arrayResult(wards, nil)
		},
	})
	list.Args = cobra.ExactArgs(1)
	list.PreRunE = func(_ *cobra.Command, args []string) error {
		code, err := requireID("province", args[0])
		if err != nil {
			return err
		}
		province = code
		return nil
	}
	cmd.AddCommand(list)
	return cmd
}
