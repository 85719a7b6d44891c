package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/validation"
)

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tags",
		Aliases: []string{"tag", "t"},
		Short:   "Manage product tags",
	}

	cmd.AddCommand(NewListCommand(ListConfig[api.Tag]{
		Use:               "list",
		Short:             "List all tags",
		DisablePagination: true,
		EmptyMessage:      "No tags found",
		Headers:           []string{"ID", "NAME", "SLUG"},
		RowFunc: func(t api.Tag) []string {
			return []string{t.ID.String(), t.Name, orDash(t.Slug)}
		},
		Fetch: func(ctx context.Context, client *api.Client, _ api.ListOptions) (*api.PaginatedResult[api.Tag], error) {
			tags, err := client.Tags().List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list tags: %w", err)
			}
			return arrayResult(tags, nil)
		},
	}))
	cmd.AddCommand(newTagsCreateCmd())
	cmd.AddCommand(newDeleteCommand(deleteConfig{
		Resource: "tag",
		Path:     "/api/tags",
		Delete: func(ctx context.Context, client *api.Client, id string) error {
			return client.Tags().Delete(ctx, id)
		},
		After: func(ctx context.Context, client *api.Client) {
			invalidateNamedCache(ctx, client, "tags")
		},
	}))

	return cmd
}

func newTagsCreateCmd() *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:     "create <name>",
		Aliases: []string{"mk"},
		Short:   "Create a tag",
		Example: strings.TrimSpace(`
  sf tags create "Summer sale" --slug summer-sale
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := validation.ValidateRequired(name, "tag name"); err != nil {
				return err
			}
			if err := validation.ValidateName(name); err != nil {
				return err
			}
			if slug != "" {
				if err := validation.ValidateSlug(slug); err != nil {
					return err
				}
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "tag",
				Method:    http.MethodPost,
				Path:      "/api/tags",
				Details:   map[string]any{"name": name, "slug": slug},
			}); ok {
				return err
			}

			tag, err := client.Tags().Create(cmd.Context(), name, slug)
			if err != nil {
				return fmt.Errorf("failed to create tag: %w", err)
			}
			invalidateNamedCache(cmd.Context(), client, "tags")

			if isJSON(cmd) {
				return printJSON(cmd, tag)
			}
			printAction(cmd, "Created", "tag", tag.ID, tag.Name)
			return nil
		}),
	}

	cmd.Flags().StringVar(&slug, "slug", "", "URL slug")
	return cmd
}
