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

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage product categories",
	}

	cmd.AddCommand(NewListCommand(ListConfig[api.Category]{
		Use:               "list",
		Short:             "List all categories",
		DisablePagination: true,
		EmptyMessage:      "No categories found",
		Headers:           []string{"ID", "NAME", "SLUG", "PARENT"},
		RowFunc: func(c api.Category) []string {
			return []string{c.ID.String(), c.Name, orDash(c.Slug), orDash(c.ParentID.String())}
		},
		Fetch: func(ctx context.Context, client *api.Client, _ api.ListOptions) (*api.PaginatedResult[api.Category], error) {
			categories, err := client.Categories().List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list categories: %w", err)
			}
			return arrayResult(categories, nil)
		},
	}))
	cmd.AddCommand(newCategoriesGetCmd())
	cmd.AddCommand(newCategoryWriteCmd(false))
	cmd.AddCommand(newCategoryWriteCmd(true))
	cmd.AddCommand(newDeleteCommand(deleteConfig{
		Resource: "category",
		Path:     "/api/categories",
		Delete: func(ctx context.Context, client *api.Client, id string) error {
			return client.Categories().Delete(ctx, id)
		},
		After: func(ctx context.Context, client *api.Client) {
			invalidateNamedCache(ctx, client, "categories")
		},
	}))

	return cmd
}

func newCategoriesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id|name>",
		Aliases: []string{"g", "show"},
		Short:   "Get category details",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			id, err := resolveCategoryID(cmd.Context(), client, args[0])
			if err != nil {
				return err
			}
			category, err := client.Categories().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get category %s: %w", id, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, category)
			}
			d := newDetailWriter(cmd, fmt.Sprintf("Category #%s", category.ID))
			d.field("Name", category.Name)
			d.field("Slug", category.Slug)
			d.field("Parent", category.ParentID.String())
			d.field("Description", category.Description)
			return nil
		}),
	}
}

// newCategoryWriteCmd builds "create" or, with update set, "update <id>".
func newCategoryWriteCmd(update bool) *cobra.Command {
	var name, slug, parent, description string

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"mk"},
		Short:   "Create a category",
		Example: strings.TrimSpace(`
  sf categories create --name Shirts --parent Apparel
`),
		Args: cobra.NoArgs,
	}
	if update {
		cmd.Use = "update <id|name>"
		cmd.Aliases = []string{"up", "edit"}
		cmd.Short = "Update a category"
		cmd.Example = "  sf categories update Shirts --slug shirts"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = RunE(func(cmd *cobra.Command, args []string) error {
		if !update {
			if err := validation.ValidateRequired(name, "--name"); err != nil {
				return err
			}
		} else if !anyLocalFlagChanged(cmd) {
			return fmt.Errorf("at least one field flag is required")
		}
		if err := validation.ValidateName(name); err != nil {
			return err
		}
		if slug != "" {
			if err := validation.ValidateSlug(slug); err != nil {
				return err
			}
		}
		if err := validation.ValidateDescription(description); err != nil {
			return err
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		in := api.CategoryInput{Name: strings.TrimSpace(name), Slug: slug, Description: description}
		if parent != "" {
			if in.ParentID, err = resolveCategoryID(ctx, client, parent); err != nil {
				return err
			}
		}

		var id string
		method, path := http.MethodPost, "/api/categories"
		if update {
			if id, err = resolveCategoryID(ctx, client, args[0]); err != nil {
				return err
			}
			if id == in.ParentID {
				return fmt.Errorf("a category cannot be its own parent")
			}
			method, path = http.MethodPut, path+"/"+id
		}

		if ok, err := maybeDryRun(cmd, &dryrun.Preview{
			Operation: strings.Fields(cmd.Use)[0],
			Resource:  "category",
			Method:    method,
			Path:      path,
			Body:      in,
		}); ok {
			return err
		}

		var category *api.Category
		if update {
			category, err = client.Categories().Update(ctx, id, in)
		} else {
			category, err = client.Categories().Create(ctx, in)
		}
		if err != nil {
			return fmt.Errorf("failed to %s category: %w", strings.Fields(cmd.Use)[0], err)
		}
		invalidateNamedCache(ctx, client, "categories")

		if isJSON(cmd) {
			return printJSON(cmd, category)
		}
		verb := "Created"
		if update {
			verb = "Updated"
		}
		printAction(cmd, verb, "category", category.ID, category.Name)
		return nil
	})

	cmd.Flags().StringVar(&name, "name", "", "Category name")
	cmd.Flags().StringVar(&slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent category ID or name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	flagAlias(cmd.Flags(), "description", "desc")
	return cmd
}
