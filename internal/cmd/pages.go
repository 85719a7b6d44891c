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

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pages",
		Aliases: []string{"page", "cms"},
		Short:   "Manage CMS pages",
	}

	cmd.AddCommand(NewListCommand(ListConfig[api.Page]{
		Use:          "list",
		Short:        "List CMS pages",
		EmptyMessage: "No pages found",
		Headers:      []string{"ID", "SLUG", "TITLE", "PUBLISHED"},
		RowFunc: func(p api.Page) []string {
			published := "no"
			if p.Published {
				published = formatTime(p.PublishedAt)
				if published == "-" {
					published = "yes"
				}
			}
			return []string{p.ID.String(), p.Slug, truncate(p.Title, 50), published}
		},
		Fetch: func(ctx context.Context, client *api.Client, opts api.ListOptions) (*api.PaginatedResult[api.Page], error) {
			result, err := client.Pages().List(ctx, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to list pages: %w", err)
			}
			return result, nil
		},
	}))
	cmd.AddCommand(newPagesGetCmd())
	cmd.AddCommand(newPageWriteCmd(false))
	cmd.AddCommand(newPageWriteCmd(true))
	cmd.AddCommand(newPagesPublishCmd())
	cmd.AddCommand(newDeleteCommand(deleteConfig{
		Resource: "page",
		Path:     "/api/pages",
		Delete: func(ctx context.Context, client *api.Client, id string) error {
			return client.Pages().Delete(ctx, id)
		},
	}))

	return cmd
}

func newPagesGetCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:     "get <id|slug>",
		Aliases: []string{"g", "show"},
		Short:   "Get a CMS page",
		Example: strings.TrimSpace(`
  # Show page metadata and content
  sf pages get about-us

  # Only the content, for piping
  sf pages get about-us --raw > about.html
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			key, err := requireID("page", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			page, err := client.Pages().Get(cmd.Context(), key)
			if err != nil {
				return fmt.Errorf("failed to get page %s: %w", key, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, page)
			}
			if raw {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), page.Content)
				return nil
			}
			d := newDetailWriter(cmd, fmt.Sprintf("Page #%s", page.ID))
			d.field("Slug", page.Slug)
			d.field("Title", page.Title)
			d.field("Published", page.Published)
			if page.Published {
				d.field("Published at", formatTime(page.PublishedAt))
			}
			if page.Content != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", page.Content)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the page content")
	return cmd
}

func newPageWriteCmd(update bool) *cobra.Command {
	var slug, title, content string

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"mk"},
		Short:   "Create a CMS page",
		Example: strings.TrimSpace(`
  sf pages create --slug about-us --title "About us" --content @about.html
`),
		Args: cobra.NoArgs,
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Aliases = []string{"up", "edit"}
		cmd.Short = "Update a CMS page"
		cmd.Example = "  sf pages update 5 --content @about.html"
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = RunE(func(cmd *cobra.Command, args []string) error {
		if update && !anyLocalFlagChanged(cmd) {
			return fmt.Errorf("at least one field flag is required")
		}
		if !update {
			if err := validation.ValidateRequired(slug, "--slug"); err != nil {
				return err
			}
			if err := validation.ValidateRequired(title, "--title"); err != nil {
				return err
			}
		}
		if slug != "" {
			if err := validation.ValidateSlug(slug); err != nil {
				return err
			}
		}
		if err := validation.ValidateName(title); err != nil {
			return err
		}
		body, err := loadAtValue(content)
		if err != nil {
			return err
		}
		if err := validation.ValidateDescription(body); err != nil {
			return err
		}
		in := api.PageInput{Slug: slug, Title: strings.TrimSpace(title), Content: body}

		var id string
		method, path := http.MethodPost, "/api/pages"
		if update {
			if id, err = requireID("page", args[0]); err != nil {
				return err
			}
			method, path = http.MethodPut, path+"/"+id
		}

		client, err := getClient()
		if err != nil {
			return err
		}
		if ok, err := maybeDryRun(cmd, &dryrun.Preview{
			Operation: strings.Fields(cmd.Use)[0],
			Resource:  "page",
			Method:    method,
			Path:      path,
			Details:   map[string]any{"slug": in.Slug, "title": in.Title, "contentLength": len(in.Content)},
		}); ok {
			return err
		}

		var page *api.Page
		if update {
			page, err = client.Pages().Update(cmd.Context(), id, in)
		} else {
			page, err = client.Pages().Create(cmd.Context(), in)
		}
		if err != nil {
			return fmt.Errorf("failed to %s page: %w", strings.Fields(cmd.Use)[0], err)
		}
		if isJSON(cmd) {
			return printJSON(cmd, page)
		}
		verb := "Created"
		if update {
			verb = "Updated"
		}
		printAction(cmd, verb, "page", page.ID, page.Slug)
		return nil
	})

	cmd.Flags().StringVar(&slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&title, "title", "", "Page title")
	cmd.Flags().StringVar(&content, "content", "", "Page content (@file or @- to read)")
	return cmd
}

func newPagesPublishCmd() *cobra.Command {
	var unpublish bool

	cmd := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish or unpublish a CMS page",
		Example: strings.TrimSpace(`
  sf pages publish 5
  sf pages publish 5 --unpublish
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("page", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "publish",
				Resource:  "page",
				Method:    http.MethodPatch,
				Path:      "/api/pages/" + id + "/publish",
				Body:      map[string]any{"isPublished": !unpublish},
			}); ok {
				return err
			}

			page, err := client.Pages().Publish(cmd.Context(), id, !unpublish)
			if err != nil {
				return fmt.Errorf("failed to publish page %s: %w", id, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, page)
			}
			verb := "Published"
			if unpublish {
				verb = "Unpublished"
			}
			printAction(cmd, verb, "page", page.ID, page.Slug)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&unpublish, "unpublish", false, "Take the page offline")
	return cmd
}
