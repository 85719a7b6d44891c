package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"cfg"},
		Short:   "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigProfilesCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Short:   "Show the effective settings",
		Example: "sf config show -o yaml",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			values := settings.Map()
			if isJSON(cmd) {
				return printJSON(cmd, values)
			}

			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			w := newTabWriterFromCmd(cmd)
			for _, k := range keys {
				_, _ = fmt.Fprintf(w, "%s\t%v\n", k, values[k])
			}
			_, _ = fmt.Fprintf(w, "file\t%s\n", settings.Path())
			return w.Flush()
		}),
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.SettingsPath())
			return nil
		}),
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting in the settings file",
		Example: `  sf config set base_url https://shop.example.com
  sf config set timeout 45s
  sf config set page_size 50`,
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings()
			if err != nil {
				return err
			}
			if err := settings.Set(args[0], args[1]); err != nil {
				return err
			}
			if settings.PageSize < 1 {
				return fmt.Errorf("page_size must be >= 1")
			}
			if settings.Timeout < 0 {
				return fmt.Errorf("timeout must be >= 0")
			}
			if err := settings.Save(); err != nil {
				return fmt.Errorf("failed to write %s: %w", settings.Path(), err)
			}
			printAction(cmd, "Set", args[0], nil, args[1])
			return nil
		}),
	}
}

func newConfigProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage auth profiles",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesUseCmd())
	cmd.AddCommand(newProfilesShowCmd())
	cmd.AddCommand(newProfilesDeleteCmd())

	return cmd
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured profiles",
		Example: "sf config profiles list",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, _ := config.CurrentProfile()

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"current":  current,
					"profiles": profiles,
				})
			}

			if len(profiles) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured. Run 'sf auth login' to add one.")
				return nil
			}

			w := newTabWriterFromCmd(cmd)
			defer func() { _ = w.Flush() }()
			_, _ = fmt.Fprintln(w, "CURRENT\tPROFILE\tBASE_URL\tEMAIL")
			for _, profile := range profiles {
				marker := ""
				if profile == current {
					marker = "*"
				}
				baseURL, email := "-", "-"
				if account, err := config.LoadProfile(profile); err == nil {
					baseURL, email = orDash(account.BaseURL), orDash(account.Email)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, profile, baseURL, email)
			}
			return nil
		}),
	}
}

func newProfilesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Short:   "Switch active profile",
		Example: "sf config profiles use staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			account, err := config.LoadProfile(name)
			if err != nil {
				return fmt.Errorf("profile %q not found: %w", name, err)
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Current profile: %s (%s)\n", name, account.BaseURL)
			return nil
		}),
	}
}

func newProfilesShowCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Show profile details",
		Example: "sf config profiles show --name staging",
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				name = current
			}

			account, err := config.LoadProfile(name)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profile":  name,
					"base_url": account.BaseURL,
					"email":    account.Email,
					"token":    maskToken(account.Token),
				})
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile: %s\n", name)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Base URL: %s\n", account.BaseURL)
			if account.Email != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Email: %s\n", account.Email)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Token: %s\n", maskToken(account.Token))
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (defaults to current)")
	flagAlias(cmd.Flags(), "name", "nm")

	return cmd
}

func newProfilesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a profile",
		Example: "sf config profiles delete staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			printAction(cmd, "Deleted", "profile", name, "")
			return nil
		}),
	}
}
