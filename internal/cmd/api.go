package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/outfmt"
	"github.com/storefront/storefront-cli/internal/validation"
)

var apiMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

// apiResponse is the structured output of "sf api".
type apiResponse struct {
	Status   int               `json:"status"`
	Hint     string            `json:"hint,omitempty"`
	Shape    string            `json:"shape,omitempty"`
	Outcome  string            `json:"outcome,omitempty"`
	Degraded bool              `json:"degraded,omitempty"`
	Value    any               `json:"value"`
	MetaData *api.PageMetaData `json:"metaData,omitempty"`
	Headers  http.Header       `json:"headers,omitempty"`
}

func newAPICmd() *cobra.Command {
	var method string
	var fields, rawFields, params []string
	var inputFile, jsonBody, hintName, keys string
	var page, pageSize int
	var includeHeaders, raw bool

	cmd := &cobra.Command{
		Use:   "api [METHOD] <path>",
		Short: "Make raw requests to any storefront endpoint",
		Long: strings.TrimSpace(`
Make a raw request to any endpoint under the configured base URL.

The response body is normalized the same way the resource commands do it:
one envelope level ("value", "data" or a page object) is removed according
to --hint, and the output reports the detected shape and how the payload was
obtained. With --hint paginated the page metadata is reconciled from the
Pagination response header and the body. Use --raw to print the decoded body
untouched.`),
		Example: strings.TrimSpace(`
  # GET with the array hint (default)
  sf api /api/categories

  # One entity, identified by "id" and "slug"
  sf api /api/pages/about-us --hint entity --keys id,slug

  # A page of products with reconciled metadata
  sf api /api/products --hint paginated --page 2 --page-size 50 -o json

  # POST with fields
  sf api POST /api/tags -f name=Summer -f slug=summer

  # JSON values in fields
  sf api PUT /api/attributes/3 -F 'values=["S","M","L"]'

  # Body from a file or stdin
  sf api POST /api/products -i product.json
  echo '{"quantity":2}' | sf api PUT /api/cart/items/9 -i -

  # Show response headers
  sf api /api/orders --hint paginated --include
`),
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			path := args[len(args)-1]
			if len(args) == 2 {
				if flagOrAliasChanged(cmd, "method") && !strings.EqualFold(method, args[0]) {
					return fmt.Errorf("method given twice: %s and --method %s", args[0], method)
				}
				method = args[0]
			}
			method = strings.ToUpper(strings.TrimSpace(method))
			if !slices.Contains(apiMethods, method) {
				return fmt.Errorf("invalid HTTP method %q: must be one of %s", method, strings.Join(apiMethods, ", "))
			}
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}

			hint, err := api.ParseHint(hintName)
			if err != nil {
				return err
			}
			discriminators := splitCommaList(keys)

			if jsonBody != "" && inputFile != "" {
				return fmt.Errorf("cannot use both --body and --input flags")
			}
			body, err := buildRequestBody(fields, rawFields, inputFile, jsonBody)
			if err != nil {
				return err
			}
			query, err := buildQuery(params)
			if err != nil {
				return err
			}
			if hint == api.HintPaginated {
				if page < 1 || pageSize < 0 {
					return fmt.Errorf("--page must be >= 1 and --page-size >= 0")
				}
				if pageSize == 0 {
					pageSize = api.DefaultPageSize
				}
				query.Set("pageIndex", strconv.Itoa(page))
				query.Set("pageSize", strconv.Itoa(pageSize))
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			spec := api.RequestSpec{Method: method, Path: path, Query: query}
			if body != nil {
				spec.Body = body
			}
			if method != http.MethodGet {
				if ok, err := maybeDryRun(cmd, &dryrun.Preview{
					Operation: "request",
					Resource:  "api",
					Method:    method,
					Path:      path,
					Body:      body,
				}); ok {
					return err
				}
			}

			ctx := cmd.Context()
			var res *api.RawResult
			if hint == api.HintPaginated || includeHeaders {
				res, err = client.ExecuteWithHeaders(ctx, spec)
			} else {
				res, err = client.Execute(ctx, spec)
			}
			if err != nil {
				return err
			}

			if flags.Silent {
				return nil
			}

			out := apiResponse{Status: res.StatusCode}
			if includeHeaders {
				out.Headers = res.Header
			}
			if raw {
				out.Value = res.Body
			} else {
				n := api.Unwrap(res.Body, hint, discriminators...)
				out.Hint = hint.String()
				out.Shape = n.Shape.String()
				out.Outcome = n.Outcome.String()
				out.Degraded = n.Degraded()
				out.Value = n.Value
				if hint == api.HintPaginated {
					meta := api.Reconcile(n.Value, res.Header, page, pageSize)
					out.MetaData = &meta
					out.Value = api.PageItems(n)
				}
			}

			if isJSON(cmd) {
				return printJSON(cmd, out)
			}
			return writeAPIText(cmd, out)
		}),
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method ("+strings.Join(apiMethods, ", ")+")")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Request body field as key=value (string)")
	cmd.Flags().StringArrayVarP(&rawFields, "raw-field", "F", nil, "Request body field as key=value (JSON parsed)")
	cmd.Flags().StringArrayVarP(&params, "param", "P", nil, "Query parameter as key=value")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Read request body from file (use - for stdin)")
	cmd.Flags().StringVarP(&jsonBody, "body", "d", "", "Request body as inline JSON string")
	cmd.Flags().StringVar(&hintName, "hint", "array", "Expected shape: array, single-entity, paginated")
	cmd.Flags().StringVar(&keys, "keys", "", "Fields identifying a bare entity (default id)")
	cmd.Flags().IntVar(&page, "page", 1, "Page to request with --hint paginated")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Page size with --hint paginated")
	cmd.Flags().BoolVar(&includeHeaders, "include", false, "Include response headers in output")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the decoded body without normalizing it")
	flagAlias(cmd.Flags(), "include", "inc")
	registerStaticCompletions(cmd, "hint", []string{"array", "single-entity", "paginated"})
	registerStaticCompletions(cmd, "method", apiMethods)

	return cmd
}

func writeAPIText(cmd *cobra.Command, resp apiResponse) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if resp.Headers != nil {
		_, _ = fmt.Fprintf(out, "HTTP %d\n", resp.Status)
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			for _, v := range resp.Headers[k] {
				_, _ = fmt.Fprintf(out, "%s: %s\n", k, v)
			}
		}
		_, _ = fmt.Fprintln(out)
	}

	if resp.Shape != "" && !flags.Quiet {
		note := ""
		if resp.Degraded {
			note = " (degraded)"
		}
		_, _ = fmt.Fprintf(errOut, "shape: %s, outcome: %s%s\n", resp.Shape, resp.Outcome, note)
	}

	if resp.Value != nil {
		if s, ok := resp.Value.(string); ok {
			_, _ = fmt.Fprintln(out, s)
		} else if err := outfmt.WriteJSON(out, resp.Value); err != nil {
			return err
		}
	}

	if m := resp.MetaData; m != nil && !flags.Quiet {
		_, _ = fmt.Fprintf(errOut, "page %d of %d, %d per page, %d total\n", m.CurrentPage, m.TotalPages, m.ItemsPerPage, m.TotalItems)
	}
	return nil
}

// buildRequestBody merges --body or --input with -f and -F fields. Fields win.
func buildRequestBody(fields, rawFields []string, inputFile, jsonBody string) (map[string]any, error) {
	body := make(map[string]any)

	if jsonBody != "" {
		if err := validation.ValidateJSONPayload(jsonBody); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(jsonBody), &body); err != nil {
			return nil, fmt.Errorf("failed to parse --body JSON: %w", err)
		}
	}

	if inputFile != "" {
		var data []byte
		var err error
		if inputFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(inputFile)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if err := validation.ValidateJSONPayload(string(data)); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("failed to parse input JSON: %w", err)
		}
	}

	for _, field := range fields {
		key, value, err := splitKeyValue(field)
		if err != nil {
			return nil, err
		}
		body[key] = value
	}

	for _, field := range rawFields {
		key, value, err := splitKeyValue(field)
		if err != nil {
			return nil, err
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			return nil, fmt.Errorf("invalid JSON in raw field %q: %w", key, err)
		}
		body[key] = parsed
	}

	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}

func buildQuery(params []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range params {
		key, value, err := splitKeyValue(p)
		if err != nil {
			return nil, err
		}
		q.Add(key, value)
	}
	return q, nil
}

func splitKeyValue(field string) (string, string, error) {
	key, value, ok := strings.Cut(field, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return "", "", fmt.Errorf("invalid field format %q: must be key=value", field)
	}
	return strings.TrimSpace(key), value, nil
}
