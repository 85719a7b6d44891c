package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/urlparse"
)

// deleteConfig describes a "<resource> delete <id>" command.
type deleteConfig struct {
	Resource string
	Path     string
	Example  string
	Delete   func(ctx context.Context, client *api.Client, id string) error
	// After runs once the delete succeeded, e.g. to drop a lookup cache.
	After func(ctx context.Context, client *api.Client)
}

func newDeleteCommand(cfg deleteConfig) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete a %s", cfg.Resource),
		Example: cfg.Example,
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID(cfg.Resource, args[0])
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "delete",
				Resource:  cfg.Resource,
				Method:    http.MethodDelete,
				Path:      cfg.Path + "/" + id,
				Details:   map[string]any{"id": id},
			}); ok {
				return err
			}

			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:              fmt.Sprintf("Delete %s %s? [y/N] ", cfg.Resource, id),
				CancelMessage:       "Cancelled.",
				Force:               force,
				RequireForceForJSON: true,
			})
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			ctx := cmd.Context()
			if err := cfg.Delete(ctx, client, id); err != nil {
				return fmt.Errorf("failed to delete %s %s: %w", cfg.Resource, id, err)
			}
			if cfg.After != nil {
				cfg.After(ctx, client)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"deleted": true, "id": id})
			}
			printAction(cmd, "Deleted", cfg.Resource, id, "")
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

// requireID trims an ID argument and rejects blanks. A storefront URL such
// as https://shop.example.com/admin/products/42 is accepted in place of the
// ID when it points at the same resource type.
func requireID(resource, value string) (string, error) {
	id := strings.TrimSpace(value)
	if id == "" {
		return "", fmt.Errorf("%s ID is required", resource)
	}
	if !urlparse.IsURL(id) {
		return id, nil
	}
	parsed, err := urlparse.Parse(id)
	if err != nil {
		return "", err
	}
	if parsed.ResourceType != resource {
		return "", fmt.Errorf("URL points to a %s, expected a %s", parsed.ResourceType, resource)
	}
	if !parsed.HasResourceID() {
		return "", fmt.Errorf("URL does not include a %s ID", resource)
	}
	return parsed.ResourceID, nil
}

// detailWriter prints "  Label: value" lines with aligned values.
type detailWriter struct {
	cmd   *cobra.Command
	width int
}

func newDetailWriter(cmd *cobra.Command, title string) *detailWriter {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), title)
	return &detailWriter{cmd: cmd, width: 13}
}

func (d *detailWriter) field(label string, value any) {
	s := fmt.Sprint(value)
	if s == "" {
		return
	}
	_, _ = fmt.Fprintf(d.cmd.OutOrStdout(), "  %-*s %s\n", d.width, label+":", s)
}

// anyLocalFlagChanged reports whether any of the command's own flags was set.
func anyLocalFlagChanged(cmd *cobra.Command) bool {
	changed := false
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed = true
		}
	})
	return changed
}
