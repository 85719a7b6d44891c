package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/storefront/storefront-cli/internal/api"
)

// storeOverview is a snapshot of the store's main counters.
type storeOverview struct {
	BaseURL       string         `json:"baseUrl"`
	User          *api.User      `json:"user,omitempty"`
	Products      int            `json:"products"`
	Users         int            `json:"users"`
	Categories    int            `json:"categories"`
	Orders        int            `json:"orders"`
	OrdersByState map[string]int `json:"ordersByStatus"`
	RecentOrders  []api.Order    `json:"recentOrders"`
}

// countOf asks for a one-item page and returns the reconciled total.
func countOf[T any](ctx context.Context, list func(context.Context, api.ListOptions) (*api.PaginatedResult[T], error)) (int, error) {
	page, err := list(ctx, api.ListOptions{Page: 1, PageSize: 1})
	if err != nil {
		return 0, err
	}
	return page.MetaData.TotalItems, nil
}

func fetchOverview(ctx context.Context, client *api.Client, recent int) (*storeOverview, error) {
	ov := &storeOverview{BaseURL: client.BaseURL, OrdersByState: make(map[string]int, len(api.OrderStatuses))}
	statusCounts := make([]int, len(api.OrderStatuses))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultConcurrency)

	g.Go(func() error {
		me, err := client.Users().Me(ctx)
		if err != nil {
			return fmt.Errorf("current user: %w", err)
		}
		ov.User = me
		return nil
	})
	g.Go(func() (err error) {
		ov.Products, err = countOf(ctx, func(ctx context.Context, o api.ListOptions) (*api.PaginatedResult[api.Product], error) {
			return client.Products().List(ctx, api.ProductListOptions{ListOptions: o})
		})
		return wrapCount("products", err)
	})
	g.Go(func() (err error) {
		ov.Users, err = countOf(ctx, func(ctx context.Context, o api.ListOptions) (*api.PaginatedResult[api.User], error) {
			return client.Users().List(ctx, o, "")
		})
		return wrapCount("users", err)
	})
	g.Go(func() error {
		categories, err := client.Categories().List(ctx)
		if err != nil {
			return wrapCount("categories", err)
		}
		ov.Categories = len(categories)
		return nil
	})
	g.Go(func() error {
		page, err := client.Orders().List(ctx, api.OrderListOptions{ListOptions: api.ListOptions{Page: 1, PageSize: recent}})
		if err != nil {
			return wrapCount("orders", err)
		}
		ov.Orders = page.MetaData.TotalItems
		ov.RecentOrders = page.Items
		return nil
	})
	for i, status := range api.OrderStatuses {
		g.Go(func() (err error) {
			statusCounts[i], err = countOf(ctx, func(ctx context.Context, o api.ListOptions) (*api.PaginatedResult[api.Order], error) {
				return client.Orders().List(ctx, api.OrderListOptions{ListOptions: o, Status: status})
			})
			return wrapCount(status+" orders", err)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, status := range api.OrderStatuses {
		ov.OrdersByState[status] = statusCounts[i]
	}
	return ov, nil
}

func wrapCount(what string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}

func newOverviewCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:     "overview",
		Aliases: []string{"dash", "summary"},
		Short:   "Show store counters and the latest orders",
		Example: strings.TrimSpace(`
  sf overview
  sf overview --recent 10 -o json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if recent < 1 {
				return fmt.Errorf("--recent must be >= 1")
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			ov, err := fetchOverview(cmd.Context(), client, recent)
			if err != nil {
				return fmt.Errorf("failed to load overview: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, ov)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Store: %s\n", ov.BaseURL)
			if ov.User != nil {
				_, _ = fmt.Fprintf(out, "Signed in as: %s (%s)\n", ov.User.Email, orDash(ov.User.Role))
			}
			_, _ = fmt.Fprintln(out)

			w := newTabWriter(out)
			_, _ = fmt.Fprintf(w, "Products\t%d\n", ov.Products)
			_, _ = fmt.Fprintf(w, "Categories\t%d\n", ov.Categories)
			_, _ = fmt.Fprintf(w, "Users\t%d\n", ov.Users)
			_, _ = fmt.Fprintf(w, "Orders\t%d\n", ov.Orders)
			for _, status := range api.OrderStatuses {
				_, _ = fmt.Fprintf(w, "  %s\t%d\n", status, ov.OrdersByState[status])
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(ov.RecentOrders) == 0 {
				return nil
			}
			_, _ = fmt.Fprintln(out, "\nRecent orders:")
			w = newTabWriter(out)
			for _, o := range ov.RecentOrders {
				_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", o.ID, o.Status, formatMoney(o.Total), formatTime(o.CreatedAt))
			}
			return w.Flush()
		}),
	}

	cmd.Flags().IntVar(&recent, "recent", 5, "Number of recent orders to show")
	return cmd
}
