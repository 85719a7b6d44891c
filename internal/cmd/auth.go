package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/config"
	"github.com/storefront/storefront-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage authentication credentials",
		Long:    "Log in to a storefront and keep the bearer token in your OS keychain, one entry per profile.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var email, password, envFile string
	var noVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the token",
		Long: strings.TrimSpace(`
Log in with an email and password, or store an existing token.

The base URL comes from --base-url, the --env-file, STOREFRONT_BASE_URL or the
settings file. The token is saved under --profile (default "default"), which
becomes the current profile.
`),
		Example: strings.TrimSpace(`
  # Email and password (prompted when omitted on a terminal)
  sf auth login --base-url https://shop.example.com --email admin@example.com

  # Password from stdin
  echo "$PASSWORD" | sf auth login --base-url https://shop.example.com --email admin@example.com --password @-

  # Store an existing token under a named profile
  sf auth login --base-url https://staging.example.com --token "$TOKEN" --profile staging

  # Load STOREFRONT_* values from a .env file
  sf auth login --env-file .env.staging
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			baseURL, token, profile := flags.BaseURL, flags.Token, flags.Profile
			if envFile != "" {
				envVars, err := config.ReadEnvFile(strings.TrimSpace(envFile))
				if err != nil {
					return fmt.Errorf("failed to read --env-file %q: %w", envFile, err)
				}
				baseURL = firstSet(baseURL, envVars["STOREFRONT_BASE_URL"])
				token = firstSet(token, envVars["STOREFRONT_TOKEN"])
				email = firstSet(email, envVars["STOREFRONT_EMAIL"])
				password = firstSet(password, envVars["STOREFRONT_PASSWORD"])
				profile = firstSet(profile, envVars["STOREFRONT_PROFILE"])
			}
			profile = firstSet(profile, "default")

			factory := newClientFactory()
			factory.overrides = config.Overrides{BaseURL: baseURL, Profile: profile, Timeout: flags.Timeout}
			cfg, err := factory.resolve()
			if err != nil {
				return err
			}
			// Never send a previously stored token with the login call.
			cfg.TokenStore = nil
			ctx := cmd.Context()

			account := config.Account{BaseURL: cfg.BaseURL}
			if token != "" {
				account.Token = strings.TrimSpace(token)
				if !noVerify {
					cfg.Token = account.Token
					me, err := factory.newClient(cfg).Users().Me(ctx)
					if err != nil {
						return fmt.Errorf("token rejected by %s: %w", cfg.BaseURL, err)
					}
					account.Email = me.Email
				}
			} else {
				if email == "" {
					return fmt.Errorf("--email or --token is required")
				}
				if err := validation.ValidateEmail(email); err != nil {
					return err
				}
				if password, err = resolvePassword(cmd, password); err != nil {
					return err
				}
				resp, err := factory.newClient(cfg).Auth().Login(ctx, email, password)
				if err != nil {
					if api.IsAuthError(err) {
						return fmt.Errorf("login failed: invalid email or password")
					}
					return fmt.Errorf("login failed: %w", err)
				}
				account.Token = resp.Token
				account.Email = email
				if resp.User != nil && resp.User.Email != "" {
					account.Email = resp.User.Email
				}
			}

			if err := config.SaveProfile(profile, account); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"authenticated": true,
					"base_url":      account.BaseURL,
					"email":         account.Email,
					"profile":       profile,
				})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Logged in.")
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", account.BaseURL)
			if account.Email != "" {
				_, _ = fmt.Fprintf(out, "  Email: %s\n", account.Email)
			}
			if profile != "default" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Password (@file or @- to read; prompted when omitted)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load STOREFRONT_* values from a .env file")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Store --token without checking it against the API")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// resolvePassword reads @file/@- references and prompts on a terminal when
// no password was given.
func resolvePassword(cmd *cobra.Command, value string) (string, error) {
	if value != "" {
		password, err := loadAtValue(value)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(password, "\r\n"), nil
	}
	if flags.NoInput {
		return "", fmt.Errorf("--password is required with --no-input")
	}

	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(data), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current authentication configuration",
		Long:  "Display the effective base URL, profile and token source. Tokens are masked.",
		Example: strings.TrimSpace(`
  sf auth status
  sf auth status --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := newClientFactory().resolve()
			if err != nil {
				return err
			}

			source, token := "none", cfg.Token
			if token != "" {
				source = "env"
				if flags.Token != "" {
					source = "flag"
				}
			} else if cfg.TokenStore != nil {
				stored, err := cfg.TokenStore.Token()
				switch {
				case err == nil && stored != "":
					source, token = "keychain", stored
				case err != nil && !errors.Is(err, config.ErrNotConfigured):
					return fmt.Errorf("failed to load credentials: %w", err)
				}
			}

			var email string
			if acct, err := config.LoadProfile(cfg.Profile); err == nil {
				email = acct.Email
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"authenticated": token != "",
					"base_url":      cfg.BaseURL,
					"profile":       cfg.Profile,
					"email":         email,
					"token":         maskToken(token),
					"source":        source,
				})
			}

			out := cmd.OutOrStdout()
			if token == "" {
				_, _ = fmt.Fprintln(out, "Not authenticated.")
				_, _ = fmt.Fprintf(out, "  Base URL: %s\n", cfg.BaseURL)
				_, _ = fmt.Fprintln(out, "Run 'sf auth login' to log in.")
				return nil
			}
			_, _ = fmt.Fprintln(out, "Authenticated")
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", cfg.BaseURL)
			_, _ = fmt.Fprintf(out, "  Profile: %s\n", cfg.Profile)
			if email != "" {
				_, _ = fmt.Fprintf(out, "  Email: %s\n", email)
			}
			_, _ = fmt.Fprintf(out, "  Token: %s\n", maskToken(token))
			_, _ = fmt.Fprintf(out, "  Source: %s\n", source)
			return nil
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		Long:  "Delete the stored profile (the current one unless --profile is given) from the keychain.",
		Example: strings.TrimSpace(`
  sf auth logout
  sf auth logout --profile staging
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return fmt.Errorf("failed to read current profile: %w", err)
				}
				profile = current
			}

			if _, err := config.LoadProfile(profile); errors.Is(err, config.ErrNotConfigured) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No credentials found.")
				return nil
			}
			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"logged_out": true, "profile": profile})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Profile %s removed.\n", profile)
			return nil
		}),
	}
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) < 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
