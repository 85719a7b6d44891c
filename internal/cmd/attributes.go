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

func newAttributesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attributes",
		Aliases: []string{"attribute", "attr"},
		Short:   "Manage product attributes such as size or color",
	}

	cmd.AddCommand(NewListCommand(ListConfig[api.Attribute]{
		Use:               "list",
		Short:             "List all attributes",
		DisablePagination: true,
		EmptyMessage:      "No attributes found",
		Headers:           []string{"ID", "NAME", "VALUES"},
		RowFunc: func(a api.Attribute) []string {
			return []string{a.ID.String(), a.Name, truncate(strings.Join(a.Values, ", "), 60)}
		},
		Fetch: func(ctx context.Context, client *api.Client, _ api.ListOptions) (*api.PaginatedResult[api.Attribute], error) {
			attrs, err := client.Attributes().List(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list attributes: %w", err)
			}
			return arrayResult(attrs, nil)
		},
	}))
	cmd.AddCommand(newAttributesGetCmd())
	cmd.AddCommand(newAttributeWriteCmd(false))
	cmd.AddCommand(newAttributeWriteCmd(true))
	cmd.AddCommand(newDeleteCommand(deleteConfig{
		Resource: "attribute",
		Path:     "/api/attributes",
		Delete: func(ctx context.Context, client *api.Client, id string) error {
			return client.Attributes().Delete(ctx, id)
		},
	}))

	return cmd
}

func newAttributesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"g", "show"},
		Short:   "Get attribute details",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("attribute", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			attr, err := client.Attributes().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get attribute %s: %w", id, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, attr)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Attribute #%s: %s\n", attr.ID, attr.Name)
			for _, v := range attr.Values {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", v)
			}
			return nil
		}),
	}
}

func newAttributeWriteCmd(update bool) *cobra.Command {
	var name, values string

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"mk"},
		Short:   "Create an attribute",
		Example: strings.TrimSpace(`
  sf attributes create --name Size --values S,M,L,XL
`),
		Args: cobra.NoArgs,
	}
	if update {
		cmd.Use = "update <id>"
		cmd.Aliases = []string{"up", "edit"}
		cmd.Short = "Update an attribute (--values replaces the whole list)"
		cmd.Example = `  sf attributes update 3 --values '["Red","Green","Blue"]'`
		cmd.Args = cobra.ExactArgs(1)
	}

	cmd.RunE = RunE(func(cmd *cobra.Command, args []string) error {
		var in api.AttributeInput
		if update && !anyLocalFlagChanged(cmd) {
			return fmt.Errorf("at least one field flag is required")
		}
		if !update {
			if err := validation.ValidateRequired(name, "--name"); err != nil {
				return err
			}
		}
		if err := validation.ValidateName(name); err != nil {
			return err
		}
		in.Name = strings.TrimSpace(name)
		if flagOrAliasChanged(cmd, "values") {
			list, err := ParseStringListFlag(values)
			if err != nil {
				return fmt.Errorf("invalid --values: %w", err)
			}
			in.Values = list
		}

		var id string
		method, path := http.MethodPost, "/api/attributes"
		if update {
			var err error
			if id, err = requireID("attribute", args[0]); err != nil {
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
			Resource:  "attribute",
			Method:    method,
			Path:      path,
			Body:      in,
		}); ok {
			return err
		}

		var attr *api.Attribute
		if update {
			attr, err = client.Attributes().Update(cmd.Context(), id, in)
		} else {
			attr, err = client.Attributes().Create(cmd.Context(), in)
		}
		if err != nil {
			return fmt.Errorf("failed to %s attribute: %w", strings.Fields(cmd.Use)[0], err)
		}
		if isJSON(cmd) {
			return printJSON(cmd, attr)
		}
		verb := "Created"
		if update {
			verb = "Updated"
		}
		printAction(cmd, verb, "attribute", attr.ID, attr.Name)
		return nil
	})

	cmd.Flags().StringVar(&name, "name", "", "Attribute name")
	cmd.Flags().StringVar(&values, "values", "", "Allowed values (comma-separated, JSON array, or @file)")
	return cmd
}
