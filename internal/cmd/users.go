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

var userRoles = []string{"admin", "staff", "customer"}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user", "u"},
		Short:   "Manage user accounts",
	}

	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersGetCmd())
	cmd.AddCommand(newUsersMeCmd())
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersUpdateCmd())
	cmd.AddCommand(newDeleteCommand(deleteConfig{
		Resource: "user",
		Path:     "/api/users",
		Delete: func(ctx context.Context, client *api.Client, id string) error {
			return client.Users().Delete(ctx, id)
		},
	}))

	return cmd
}

func newUsersListCmd() *cobra.Command {
	var search string

	cmd := NewListCommand(ListConfig[api.User]{
		Use:          "list",
		Short:        "List users",
		EmptyMessage: "No users found",
		Example: strings.TrimSpace(`
  # All staff accounts
  sf users list --all --jq '.items[] | select(.role == "staff") | .email'

  # Search by email or name
  sf users list --search nguyen
`),
		Headers: []string{"ID", "EMAIL", "NAME", "ROLE", "ACTIVE"},
		RowFunc: func(u api.User) []string {
			return []string{u.ID.String(), u.Email, orDash(u.FullName), orDash(u.Role), fmt.Sprintf("%t", u.Active)}
		},
		Fetch: func(ctx context.Context, client *api.Client, opts api.ListOptions) (*api.PaginatedResult[api.User], error) {
			result, err := client.Users().List(ctx, opts, strings.TrimSpace(search))
			if err != nil {
				return nil, fmt.Errorf("failed to list users: %w", err)
			}
			return result, nil
		},
	})
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search by email or name")
	return cmd
}

func printUser(cmd *cobra.Command, user *api.User) {
	d := newDetailWriter(cmd, fmt.Sprintf("User #%s", user.ID))
	d.field("Email", user.Email)
	d.field("Name", user.FullName)
	d.field("Phone", user.Phone)
	d.field("Role", user.Role)
	d.field("Active", user.Active)
	d.field("Created", formatTime(user.CreatedAt))
}

func newUsersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"g", "show"},
		Short:   "Get user details",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("user", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			user, err := client.Users().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get user %s: %w", id, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, user)
			}
			printUser(cmd, user)
			return nil
		}),
	}
}

func newUsersMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "me",
		Aliases: []string{"whoami"},
		Short:   "Show the authenticated user",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			user, err := client.Users().Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get current user: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, user)
			}
			printUser(cmd, user)
			return nil
		}),
	}
}

type userFlags struct {
	email, password, name, phone, role string
	active                             bool
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.password, "password", "", "Password (@file or @- to read)")
	cmd.Flags().StringVar(&f.name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&f.role, "role", "", "Role: "+strings.Join(userRoles, ", "))
	cmd.Flags().BoolVar(&f.active, "active", true, "Whether the account can sign in")
	registerStaticCompletions(cmd, "role", userRoles)
}

func (f *userFlags) input(cmd *cobra.Command) (api.UserInput, error) {
	var in api.UserInput
	if flagOrAliasChanged(cmd, "email") {
		if err := validation.ValidateEmail(f.email); err != nil {
			return in, err
		}
		in.Email = strings.TrimSpace(f.email)
	}
	if flagOrAliasChanged(cmd, "password") {
		password, err := loadAtValue(f.password)
		if err != nil {
			return in, err
		}
		if len(password) < 8 {
			return in, fmt.Errorf("password must be at least 8 characters")
		}
		in.Password = password
	}
	if flagOrAliasChanged(cmd, "name") {
		if err := validation.ValidateName(f.name); err != nil {
			return in, err
		}
		in.FullName = strings.TrimSpace(f.name)
	}
	if flagOrAliasChanged(cmd, "phone") {
		if err := validation.ValidatePhone(f.phone); err != nil {
			return in, err
		}
		in.Phone = f.phone
	}
	if flagOrAliasChanged(cmd, "role") {
		role, err := normalizeEnum("role", f.role, userRoles)
		if err != nil {
			return in, err
		}
		in.Role = role
	}
	if flagOrAliasChanged(cmd, "active") {
		active := f.active
		in.Active = &active
	}
	return in, nil
}

// userDetails is the dry-run view of a user input with the password masked.
func userDetails(in api.UserInput) map[string]any {
	details := map[string]any{}
	if in.Email != "" {
		details["email"] = in.Email
	}
	if in.Password != "" {
		details["password"] = "********"
	}
	if in.FullName != "" {
		details["fullName"] = in.FullName
	}
	if in.Phone != "" {
		details["phone"] = in.Phone
	}
	if in.Role != "" {
		details["role"] = in.Role
	}
	if in.Active != nil {
		details["isActive"] = *in.Active
	}
	return details
}

func newUsersCreateCmd() *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"mk", "new"},
		Short:   "Create a user",
		Example: strings.TrimSpace(`
  # Staff account, password from stdin
  echo "$PASSWORD" | sf users create --email staff@example.com --name "Shop Staff" --role staff --password @-
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidateRequired(f.email, "--email"); err != nil {
				return err
			}
			if err := validation.ValidateRequired(f.password, "--password"); err != nil {
				return err
			}
			in, err := f.input(cmd)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "user",
				Method:    http.MethodPost,
				Path:      "/api/users",
				Details:   userDetails(in),
			}); ok {
				return err
			}

			user, err := client.Users().Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, user)
			}
			printAction(cmd, "Created", "user", user.ID, user.Email)
			return nil
		}),
	}

	f.register(cmd)
	return cmd
}

func newUsersUpdateCmd() *cobra.Command {
	var f userFlags

	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"up", "edit"},
		Short:   "Update a user",
		Example: strings.TrimSpace(`
  # Deactivate an account
  sf users update 17 --active=false

  # Promote to admin
  sf users update 17 --role admin
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("user", args[0])
			if err != nil {
				return err
			}
			if !anyLocalFlagChanged(cmd) {
				return fmt.Errorf("at least one field flag is required")
			}
			in, err := f.input(cmd)
			if err != nil {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			details := userDetails(in)
			details["id"] = id
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "update",
				Resource:  "user",
				Method:    http.MethodPut,
				Path:      "/api/users/" + id,
				Details:   details,
			}); ok {
				return err
			}

			user, err := client.Users().Update(cmd.Context(), id, in)
			if err != nil {
				return fmt.Errorf("failed to update user %s: %w", id, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, user)
			}
			printAction(cmd, "Updated", "user", user.ID, user.Email)
			return nil
		}),
	}

	f.register(cmd)
	return cmd
}
