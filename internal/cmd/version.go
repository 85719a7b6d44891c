package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

// newUpdateChecker is replaced in tests.
var newUpdateChecker = update.NewChecker

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var result *update.CheckResult
			if os.Getenv("STOREFRONT_NO_UPDATE_CHECK") == "" {
				result = newUpdateChecker().Check(cmd.Context(), version)
			}

			if isJSON(cmd) {
				payload := map[string]any{"version": version}
				if result != nil {
					payload["update"] = result
				}
				return printJSON(cmd, payload)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "storefront-cli version %s\n", version)
			if result != nil && result.UpdateAvailable {
				errOut := cmd.ErrOrStderr()
				_, _ = fmt.Fprintf(errOut, "\nUpdate available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
				_, _ = fmt.Fprintf(errOut, "Download: %s\n", result.UpdateURL)
			}
			return nil
		}),
	}
}
