package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/cli"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/iocontext"
	"github.com/storefront/storefront-cli/internal/validation"
)

var paymentMethods = []string{"cod", "bank_transfer", "card"}

func newOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"order", "o"},
		Short:   "Manage orders",
		Long:    "List and inspect orders, move them through fulfilment, and check out the current cart",
	}

	cmd.AddCommand(newOrdersListCmd())
	cmd.AddCommand(newOrdersGetCmd())
	cmd.AddCommand(newOrdersStatusCmd())
	cmd.AddCommand(newOrdersCancelCmd())
	cmd.AddCommand(newOrdersCheckoutCmd())

	return cmd
}

func newOrdersListCmd() *cobra.Command {
	var status, customer, from, to string
	var opts api.OrderListOptions

	cfg := ListConfig[api.Order]{
		Use:          "list",
		Short:        "List orders",
		EmptyMessage: "No orders found",
		Example: strings.TrimSpace(`
  # Recent orders
  sf orders list

  # Pending orders from the last week
  sf orders list --status pending --from 7d

  # Orders of one customer between two dates
  sf orders list --customer 17 --from 2026-01-01 --to 2026-01-31 --all
`),
		Headers: []string{"ID", "CODE", "STATUS", "TOTAL", "ITEMS", "CREATED"},
		RowFunc: func(o api.Order) []string {
			return []string{o.ID.String(), orDash(o.Code), o.Status, formatMoney(o.Total), fmt.Sprintf("%d", len(o.Items)), formatTime(o.CreatedAt)}
		},
		Fetch: func(ctx context.Context, client *api.Client, list api.ListOptions) (*api.PaginatedResult[api.Order], error) {
			o := opts
			o.ListOptions = list
			result, err := client.Orders().List(ctx, o)
			if err != nil {
				return nil, fmt.Errorf("failed to list orders: %w", err)
			}
			return result, nil
		},
	}

	cmd := NewListCommand(cfg)
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		opts = api.OrderListOptions{CustomerID: strings.TrimSpace(customer)}
		if status != "" {
			s, err := normalizeEnum("status", status, api.OrderStatuses)
			if err != nil {
				return err
			}
			opts.Status = s
		}
		now := time.Now()
		var err error
		if opts.From, err = cli.ParseDateFilter(from, now); err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		if opts.To, err = cli.ParseDateFilter(to, now); err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		return nil
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status: "+strings.Join(api.OrderStatuses, ", "))
	cmd.Flags().StringVar(&customer, "customer", "", "Filter by customer ID")
	cmd.Flags().StringVar(&from, "from", "", "Created at or after (YYYY-MM-DD, 7d, yesterday, monday)")
	cmd.Flags().StringVar(&to, "to", "", "Created before (same formats as --from)")
	flagAlias(cmd.Flags(), "status", "st")
	flagAlias(cmd.Flags(), "customer", "cust")
	registerStaticCompletions(cmd, "status", api.OrderStatuses)
	return cmd
}

func newOrdersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"g", "show"},
		Short:   "Get order details",
		Example: strings.TrimSpace(`
  # Show an order with its items
  sf orders get 1001
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("order", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			order, err := client.Orders().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get order %s: %w", id, err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, order)
			}
			printOrder(cmd, order)
			return nil
		}),
	}
}

func printOrder(cmd *cobra.Command, order *api.Order) {
	d := newDetailWriter(cmd, fmt.Sprintf("Order #%s", order.ID))
	d.field("Code", order.Code)
	d.field("Status", order.Status)
	d.field("Total", formatMoney(order.Total))
	d.field("Customer", order.CustomerID.String())
	d.field("Payment", order.PaymentMethod)
	d.field("Created", formatTime(order.CreatedAt))
	if a := order.ShippingAddress; a != nil {
		d.field("Ship to", strings.TrimSpace(fmt.Sprintf("%s, %s", a.FullName, a.Phone)))
		d.field("Address", a.Street)
	}
	d.field("Note", order.Note)

	if len(order.Items) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out)
	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "  PRODUCT\tNAME\tQTY\tPRICE")
	for _, item := range order.Items {
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%d\t%s\n", item.ProductID, orDash(item.ProductName), item.Quantity, formatMoney(item.Price))
	}
	_ = w.Flush()
}

func newOrdersStatusCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "status <status> <id> [id...]",
		Short: "Move one or more orders to a new status",
		Example: strings.TrimSpace(`
  # Confirm an order
  sf orders status confirmed 1001

  # Ship several orders at once
  sf orders status shipping 1001 1002 1003
`),
		Args: cobra.MinimumNArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			status, err := normalizeEnum("status", args[0], api.OrderStatuses)
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := requireID("order", arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "update status",
				Resource:  "order",
				Method:    http.MethodPatch,
				Path:      "/api/orders/{id}/status",
				Body:      map[string]any{"status": status},
				Details:   map[string]any{"ids": ids, "status": status},
			}); ok {
				return err
			}

			ctx := cmd.Context()
			if len(ids) == 1 {
				order, err := client.Orders().UpdateStatus(ctx, ids[0], status)
				if err != nil {
					return fmt.Errorf("failed to update order %s: %w", ids[0], err)
				}
				if isJSON(cmd) {
					return printJSON(cmd, order)
				}
				printAction(cmd, "Updated", "order", order.ID, order.Status)
				return nil
			}

			progress := !flags.Quiet && !flags.Silent && !isJSON(cmd)
			results := runBulkOperation(ctx, ids, concurrency, progress, iocontext.GetIO(ctx).ErrOut,
				func(ctx context.Context, id string) (*api.Order, error) {
					return client.Orders().UpdateStatus(ctx, id, status)
				})
			return reportBulk(cmd, "order", "Updated", results)
		}),
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", DefaultConcurrency, "Maximum concurrent requests")
	cmd.ValidArgs = api.OrderStatuses
	return cmd
}

// reportBulk prints bulk results and fails when any item failed.
func reportBulk(cmd *cobra.Command, resource, verb string, results []BulkResult) error {
	success, failure := countResults(results)
	if isJSON(cmd) {
		if err := printJSON(cmd, map[string]any{"results": results, "succeeded": success, "failed": failure}); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if !r.Success {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s: %s\n", resource, r.ID, r.Error)
			}
		}
		if !flags.Quiet {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s(s), %d failed\n", verb, success, resource, failure)
		}
	}
	if failure > 0 {
		return fmt.Errorf("%d of %d %s(s) failed", failure, len(results), resource)
	}
	return nil
}

func newOrdersCancelCmd() *cobra.Command {
	var reason string
	var force bool

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an order",
		Example: strings.TrimSpace(`
  # Cancel with a reason
  sf orders cancel 1001 --reason "out of stock" --force
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("order", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "cancel",
				Resource:  "order",
				Method:    http.MethodPost,
				Path:      "/api/orders/" + id + "/cancel",
				Details:   map[string]any{"id": id, "reason": reason},
			}); ok {
				return err
			}

			ok, err := confirmAction(cmd, confirmOptions{
				Prompt:              fmt.Sprintf("Cancel order %s? [y/N] ", id),
				CancelMessage:       "Cancelled.",
				Force:               force,
				RequireForceForJSON: true,
			})
			if err != nil || !ok {
				return err
			}

			order, err := client.Orders().Cancel(cmd.Context(), id, strings.TrimSpace(reason))
			if err != nil {
				return fmt.Errorf("failed to cancel order %s: %w", id, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, order)
			}
			printAction(cmd, "Cancelled", "order", order.ID, "")
			return nil
		}),
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Cancellation reason")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

func newOrdersCheckoutCmd() *cobra.Command {
	var req api.CheckoutRequest
	var ward, province string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the current cart",
		Example: strings.TrimSpace(`
  # Cash on delivery
  sf orders checkout --name "Nguyen Van A" --phone 0912345678 --street "12 Ly Thuong Kiet" --province 01 --ward 00001

  # Preview the request body
  sf orders checkout --name "Nguyen Van A" --phone 0912345678 --street "12 Ly Thuong Kiet" --dry-run
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			addr := &req.ShippingAddress
			if err := validation.ValidateRequired(addr.FullName, "name"); err != nil {
				return err
			}
			if err := validation.ValidateRequired(addr.Street, "street"); err != nil {
				return err
			}
			if err := validation.ValidatePhone(addr.Phone); err != nil {
				return err
			}
			addr.WardCode = api.FlexString(strings.TrimSpace(ward))
			addr.ProvinceCode = api.FlexString(strings.TrimSpace(province))
			if req.PaymentMethod != "" {
				method, err := normalizeEnum("payment", req.PaymentMethod, paymentMethods)
				if err != nil {
					return err
				}
				req.PaymentMethod = method
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "checkout",
				Resource:  "order",
				Method:    http.MethodPost,
				Path:      "/api/orders/checkout",
				Body:      req,
			}); ok {
				return err
			}

			order, err := client.Orders().Checkout(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("checkout failed: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, order)
			}
			printAction(cmd, "Placed", "order", order.ID, order.Code)
			return nil
		}),
	}

	cmd.Flags().StringVar(&req.ShippingAddress.FullName, "name", "", "Recipient full name (required)")
	cmd.Flags().StringVar(&req.ShippingAddress.Phone, "phone", "", "Recipient phone (required)")
	cmd.Flags().StringVar(&req.ShippingAddress.Street, "street", "", "Street address (required)")
	cmd.Flags().StringVar(&province, "province", "", "Province code (see: sf provinces list)")
	cmd.Flags().StringVar(&ward, "ward", "", "Ward code (see: sf wards list <province>)")
	cmd.Flags().StringVar(&req.PaymentMethod, "payment", "", "Payment method: "+strings.Join(paymentMethods, ", "))
	cmd.Flags().StringVar(&req.Note, "note", "", "Order note")
	registerStaticCompletions(cmd, "payment", paymentMethods)
	return cmd
}
