package cmd

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/validation"
)

func newCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart of the authenticated user",
		Long: strings.TrimSpace(`
Show and edit the shopping cart of the authenticated user. Add and update
print the cart returned by the server. Use "sf orders checkout" to place
an order from the cart.`),
	}

	cmd.AddCommand(newCartShowCmd())
	cmd.AddCommand(newCartAddCmd())
	cmd.AddCommand(newCartUpdateCmd())
	cmd.AddCommand(newCartRemoveCmd())
	cmd.AddCommand(newCartClearCmd())

	return cmd
}

func printCart(cmd *cobra.Command, cart *api.Cart) error {
	if isJSON(cmd) {
		return printJSON(cmd, cart)
	}
	out := cmd.OutOrStdout()
	if len(cart.Items) == 0 {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Cart is empty")
		return nil
	}
	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "ITEM\tPRODUCT\tNAME\tQTY\tPRICE")
	for _, item := range cart.Items {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", item.ID, item.ProductID, orDash(item.ProductName), item.Quantity, formatMoney(item.Price))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "\nTotal: %s\n", formatMoney(cart.Total))
	return nil
}

func parseQuantity(s string) (int, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	if err := validation.ValidateQuantity(qty); err != nil {
		return 0, err
	}
	return qty, nil
}

func newCartShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show",
		Aliases: []string{"get", "ls"},
		Short:   "Show the cart",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			cart, err := client.Cart().Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get cart: %w", err)
			}
			return printCart(cmd, cart)
		}),
	}
}

func newCartAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product to the cart",
		Example: strings.TrimSpace(`
  sf cart add 42
  sf cart add 42 3
`),
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			productID, err := requireID("product", args[0])
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = parseQuantity(args[1]); err != nil {
					return err
				}
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "add",
				Resource:  "cart item",
				Method:    http.MethodPost,
				Path:      "/api/cart/items",
				Body:      map[string]any{"productId": productID, "quantity": qty},
			}); ok {
				return err
			}

			cart, err := client.Cart().AddItem(cmd.Context(), productID, qty)
			if err != nil {
				return fmt.Errorf("failed to add product %s to cart: %w", productID, err)
			}
			return printCart(cmd, cart)
		}),
	}
}

func newCartUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "update <item-id> <quantity>",
		Aliases: []string{"set"},
		Short:   "Change the quantity of a cart item",
		Args:    cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			itemID, err := requireID("cart item", args[0])
			if err != nil {
				return err
			}
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "update",
				Resource:  "cart item",
				Method:    http.MethodPut,
				Path:      "/api/cart/items/" + itemID,
				Body:      map[string]any{"quantity": qty},
			}); ok {
				return err
			}

			cart, err := client.Cart().UpdateItem(cmd.Context(), itemID, qty)
			if err != nil {
				return fmt.Errorf("failed to update cart item %s: %w", itemID, err)
			}
			return printCart(cmd, cart)
		}),
	}
}

func newCartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <item-id>",
		Aliases: []string{"rm"},
		Short:   "Remove an item from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			itemID, err := requireID("cart item", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "remove",
				Resource:  "cart item",
				Method:    http.MethodDelete,
				Path:      "/api/cart/items/" + itemID,
			}); ok {
				return err
			}

			if err := client.Cart().RemoveItem(cmd.Context(), itemID); err != nil {
				return fmt.Errorf("failed to remove cart item %s: %w", itemID, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"removed": true, "id": itemID})
			}
			printAction(cmd, "Removed", "cart item", itemID, "")
			return nil
		}),
	}
}

func newCartClearCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every item from the cart",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "clear",
				Resource:  "cart",
				Method:    http.MethodDelete,
				Path:      "/api/cart",
			}); ok {
				return err
			}
			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:              "Remove every item from the cart? [y/N] ",
				CancelMessage:       "Cancelled.",
				Force:               force,
				RequireForceForJSON: true,
			})
			if err != nil || !ok {
				return err
			}

			if err := client.Cart().Clear(cmd.Context()); err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"cleared": true})
			}
			printAction(cmd, "Cleared", "cart", nil, "")
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}
