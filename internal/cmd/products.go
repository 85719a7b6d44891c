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

var productStatuses = []string{"active", "draft", "archived"}

func newProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Manage catalog products",
		Long:    "List, inspect, create, update, and delete products in the catalog",
	}

	cmd.AddCommand(newProductsListCmd())
	cmd.AddCommand(newProductsGetCmd())
	cmd.AddCommand(newProductsCreateCmd())
	cmd.AddCommand(newProductsUpdateCmd())
	cmd.AddCommand(newDeleteCommand(deleteConfig{
		Resource: "product",
		Path:     "/api/products",
		Example: strings.TrimSpace(`
  # Delete a product
  sf products delete 42 --force
`),
		Delete: func(ctx context.Context, client *api.Client, id string) error {
			return client.Products().Delete(ctx, id)
		},
	}))

	return cmd
}

func newProductsListCmd() *cobra.Command {
	var search, category, tag string
	var minPrice, maxPrice float64

	cfg := ListConfig[api.Product]{
		Use:          "list",
		Short:        "List products",
		EmptyMessage: "No products found",
		Example: strings.TrimSpace(`
  # First page of products
  sf products list

  # Search within a category, every page
  sf products list --search shirt --category Apparel --all

  # Price range as JSON
  sf products list --min-price 100000 --max-price 500000 -o json
`),
		Headers: []string{"ID", "NAME", "PRICE", "STOCK", "STATUS"},
		RowFunc: func(p api.Product) []string {
			price := formatMoney(p.Price)
			if p.SalePrice != nil {
				price = fmt.Sprintf("%s (sale %s)", price, formatMoney(*p.SalePrice))
			}
			return []string{p.ID.String(), truncate(p.Name, 40), price, fmt.Sprintf("%d", p.Stock), orDash(p.Status)}
		},
	}

	var categoryID, tagName string
	cfg.Fetch = func(ctx context.Context, client *api.Client, opts api.ListOptions) (*api.PaginatedResult[api.Product], error) {
		result, err := client.Products().List(ctx, api.ProductListOptions{
			ListOptions: opts,
			Search:      search,
			CategoryID:  categoryID,
			Tag:         tagName,
			MinPrice:    minPrice,
			MaxPrice:    maxPrice,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list products: %w", err)
		}
		return result, nil
	}

	cmd := NewListCommand(cfg)
	cmd.PreRunE = func(cmd *cobra.Command, _ []string) error {
		if minPrice < 0 || maxPrice < 0 {
			return fmt.Errorf("--min-price and --max-price must be >= 0")
		}
		if maxPrice > 0 && minPrice > maxPrice {
			return fmt.Errorf("--min-price must not exceed --max-price")
		}
		if category == "" && tag == "" {
			return nil
		}
		client, err := getClient()
		if err != nil {
			return err
		}
		if category != "" {
			if categoryID, err = resolveCategoryID(cmd.Context(), client, category); err != nil {
				return err
			}
		}
		if tag != "" {
			if tagName, err = resolveTagName(cmd.Context(), client, tag); err != nil {
				return err
			}
		}
		return nil
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Search by name or SKU")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category ID or name")
	cmd.Flags().StringVar(&tag, "tag", "", "Filter by tag ID or name")
	cmd.Flags().Float64Var(&minPrice, "min-price", 0, "Minimum price")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Maximum price")
	flagAlias(cmd.Flags(), "category", "cat")
	return cmd
}

func newProductsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"g", "show"},
		Short:   "Get product details",
		Example: strings.TrimSpace(`
  # Show a product
  sf products get 42

  # Only the price
  sf products get 42 --jq .price
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("product", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}

			product, err := client.Products().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get product %s: %w", id, err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, product)
			}

			d := newDetailWriter(cmd, fmt.Sprintf("Product #%s", product.ID))
			d.field("Name", product.Name)
			d.field("Slug", product.Slug)
			d.field("SKU", product.SKU)
			d.field("Price", formatMoney(product.Price))
			if product.SalePrice != nil {
				d.field("Sale price", formatMoney(*product.SalePrice))
			}
			d.field("Stock", int(product.Stock))
			d.field("Status", product.Status)
			d.field("Category", product.CategoryID.String())
			d.field("Tags", strings.Join(product.Tags, ", "))
			d.field("Images", len(product.Images))
			d.field("Created", formatTime(product.CreatedAt))
			d.field("Updated", formatTime(product.UpdatedAt))
			if product.Description != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", product.Description)
			}
			return nil
		}),
	}
}

// productFlags holds the writable product fields shared by create and update.
type productFlags struct {
	name, slug, description, sku, category, status string
	tags, images                                   string
	price, salePrice                               float64
	stock                                          int
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.slug, "slug", "", "URL slug")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (@file or @- to read)")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Price")
	cmd.Flags().Float64Var(&f.salePrice, "sale-price", 0, "Sale price")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Units in stock")
	cmd.Flags().StringVar(&f.sku, "sku", "", "Stock keeping unit")
	cmd.Flags().StringVar(&f.category, "category", "", "Category ID or name")
	cmd.Flags().StringVar(&f.tags, "tags", "", "Tags (comma-separated, JSON array, or @file)")
	cmd.Flags().StringVar(&f.images, "images", "", "Image URLs (comma-separated, JSON array, or @file)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status: "+strings.Join(productStatuses, ", "))
	flagAlias(cmd.Flags(), "description", "desc")
	flagAlias(cmd.Flags(), "category", "cat")
	registerStaticCompletions(cmd, "status", productStatuses)
}

// input builds a ProductInput from the flags the user set.
func (f *productFlags) input(cmd *cobra.Command, client *api.Client) (api.ProductInput, error) {
	var in api.ProductInput
	changed := func(name string) bool { return flagOrAliasChanged(cmd, name) }

	if changed("name") {
		if err := validation.ValidateName(f.name); err != nil {
			return in, err
		}
		in.Name = strings.TrimSpace(f.name)
	}
	if changed("slug") {
		if err := validation.ValidateSlug(f.slug); err != nil {
			return in, err
		}
		in.Slug = f.slug
	}
	if changed("description") {
		desc, err := loadAtValue(f.description)
		if err != nil {
			return in, err
		}
		if err := validation.ValidateDescription(desc); err != nil {
			return in, err
		}
		in.Description = desc
	}
	if changed("price") {
		if err := validation.ValidatePrice(f.price, "price"); err != nil {
			return in, err
		}
		in.Price = &f.price
	}
	if changed("sale-price") {
		if err := validation.ValidatePrice(f.salePrice, "sale-price"); err != nil {
			return in, err
		}
		in.SalePrice = &f.salePrice
	}
	if in.Price != nil && in.SalePrice != nil && *in.SalePrice > *in.Price {
		return in, fmt.Errorf("--sale-price must not exceed --price")
	}
	if changed("stock") {
		if f.stock < 0 {
			return in, fmt.Errorf("--stock must be >= 0")
		}
		in.Stock = &f.stock
	}
	if changed("sku") {
		in.SKU = strings.TrimSpace(f.sku)
	}
	if changed("status") {
		status, err := normalizeEnum("status", f.status, productStatuses)
		if err != nil {
			return in, err
		}
		in.Status = status
	}
	if changed("tags") {
		tags, err := ParseStringListFlag(f.tags)
		if err != nil {
			return in, fmt.Errorf("invalid --tags: %w", err)
		}
		in.Tags = tags
	}
	if changed("images") {
		images, err := ParseStringListFlag(f.images)
		if err != nil {
			return in, fmt.Errorf("invalid --images: %w", err)
		}
		in.Images = images
	}
	if changed("category") && client != nil {
		id, err := resolveCategoryID(cmd.Context(), client, f.category)
		if err != nil {
			return in, err
		}
		in.CategoryID = id
	} else if changed("category") {
		in.CategoryID = f.category
	}
	return in, nil
}

func productDetails(in api.ProductInput) map[string]any {
	details := map[string]any{}
	if in.Name != "" {
		details["name"] = in.Name
	}
	if in.Slug != "" {
		details["slug"] = in.Slug
	}
	if in.Price != nil {
		details["price"] = *in.Price
	}
	if in.SalePrice != nil {
		details["salePrice"] = *in.SalePrice
	}
	if in.Stock != nil {
		details["stock"] = *in.Stock
	}
	if in.SKU != "" {
		details["sku"] = in.SKU
	}
	if in.CategoryID != "" {
		details["categoryId"] = in.CategoryID
	}
	if len(in.Tags) > 0 {
		details["tags"] = in.Tags
	}
	if len(in.Images) > 0 {
		details["images"] = in.Images
	}
	if in.Status != "" {
		details["status"] = in.Status
	}
	if in.Description != "" {
		details["description"] = truncate(in.Description, 60)
	}
	return details
}

func newProductsCreateCmd() *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:     "create",
		Aliases: []string{"mk", "new"},
		Short:   "Create a product",
		Example: strings.TrimSpace(`
  # Minimal product
  sf products create --name "Linen shirt" --price 350000

  # With stock, category and tags
  sf products create --name "Linen shirt" --price 350000 --stock 12 --category Apparel --tags summer,linen
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if !flagOrAliasChanged(cmd, "name") {
				return fmt.Errorf("--name is required")
			}
			if !flagOrAliasChanged(cmd, "price") {
				return fmt.Errorf("--price is required")
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			in, err := f.input(cmd, client)
			if err != nil {
				return err
			}

			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "create",
				Resource:  "product",
				Method:    http.MethodPost,
				Path:      "/api/products",
				Body:      in,
				Details:   productDetails(in),
			}); ok {
				return err
			}

			product, err := client.Products().Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("failed to create product: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, product)
			}
			printAction(cmd, "Created", "product", product.ID, product.Name)
			return nil
		}),
	}

	f.register(cmd)
	return cmd
}

func newProductsUpdateCmd() *cobra.Command {
	var f productFlags

	cmd := &cobra.Command{
		Use:     "update <id>",
		Aliases: []string{"up", "edit"},
		Short:   "Update a product",
		Example: strings.TrimSpace(`
  # Change the price
  sf products update 42 --price 320000

  # Put a product on sale and restock
  sf products update 42 --sale-price 290000 --stock 30
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("product", args[0])
			if err != nil {
				return err
			}
			if !anyLocalFlagChanged(cmd) {
				return fmt.Errorf("at least one field flag is required")
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			in, err := f.input(cmd, client)
			if err != nil {
				return err
			}

			details := productDetails(in)
			details["id"] = id
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "update",
				Resource:  "product",
				Method:    http.MethodPut,
				Path:      "/api/products/" + id,
				Body:      in,
				Details:   details,
			}); ok {
				return err
			}

			product, err := client.Products().Update(cmd.Context(), id, in)
			if err != nil {
				return fmt.Errorf("failed to update product %s: %w", id, err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, product)
			}
			printAction(cmd, "Updated", "product", product.ID, product.Name)
			return nil
		}),
	}

	f.register(cmd)
	return cmd
}
