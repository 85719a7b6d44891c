package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/api"
	"github.com/storefront/storefront-cli/internal/dryrun"
	"github.com/storefront/storefront-cli/internal/iocontext"
)

func newMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "media",
		Aliases: []string{"m", "files"},
		Short:   "Manage uploaded media",
	}

	cmd.AddCommand(NewListCommand(ListConfig[api.Media]{
		Use:          "list",
		Short:        "List uploaded media",
		EmptyMessage: "No media found",
		Headers:      []string{"ID", "FILE", "TYPE", "SIZE", "URL"},
		RowFunc: func(m api.Media) []string {
			return []string{m.ID.String(), orDash(m.FileName), orDash(m.ContentType), formatSize(int64(m.Size)), m.URL}
		},
		Fetch: func(ctx context.Context, client *api.Client, opts api.ListOptions) (*api.PaginatedResult[api.Media], error) {
			result, err := client.Media().List(ctx, opts)
			if err != nil {
				return nil, fmt.Errorf("failed to list media: %w", err)
			}
			return result, nil
		},
	}))
	cmd.AddCommand(newMediaGetCmd())
	cmd.AddCommand(newMediaUploadCmd())
	cmd.AddCommand(newDeleteCommand(deleteConfig{
		Resource: "media",
		Path:     "/api/media",
		Delete: func(ctx context.Context, client *api.Client, id string) error {
			return client.Media().Delete(ctx, id)
		},
	}))

	return cmd
}

func formatSize(n int64) string {
	switch {
	case n <= 0:
		return "-"
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

func newMediaGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"g", "show"},
		Short:   "Get media details",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			id, err := requireID("media", args[0])
			if err != nil {
				return err
			}
			client, err := getClient()
			if err != nil {
				return err
			}
			media, err := client.Media().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get media %s: %w", id, err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, media)
			}
			d := newDetailWriter(cmd, fmt.Sprintf("Media #%s", media.ID))
			d.field("File", media.FileName)
			d.field("Type", media.ContentType)
			d.field("Size", formatSize(int64(media.Size)))
			d.field("URL", media.URL)
			d.field("Uploaded", formatTime(media.CreatedAt))
			return nil
		}),
	}
}

// readUploadFile reads path after checking it is a regular file within the
// upload limit.
func readUploadFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	if info.Size() > api.MaxUploadSize {
		return nil, fmt.Errorf("%s is %s, over the %s upload limit", path, formatSize(info.Size()), formatSize(api.MaxUploadSize))
	}
	return os.ReadFile(path)
}

func newMediaUploadCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:     "upload <file> [file...]",
		Aliases: []string{"up"},
		Short:   "Upload one or more files",
		Example: strings.TrimSpace(`
  # Upload an image and print its URL
  sf media upload shirt.jpg --jq .url

  # Upload a folder of images
  sf media upload images/*.png
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("cannot upload %s: %w", path, err)
				}
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			names := make([]string, len(args))
			for i, path := range args {
				names[i] = filepath.Base(path)
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: "upload",
				Resource:  "media",
				Method:    http.MethodPost,
				Path:      "/api/media",
				Details:   map[string]any{"files": names},
			}); ok {
				return err
			}

			ctx := cmd.Context()
			upload := func(ctx context.Context, path string) (*api.Media, error) {
				content, err := readUploadFile(path)
				if err != nil {
					return nil, err
				}
				return client.Media().Upload(ctx, path, content)
			}

			if len(args) == 1 {
				media, err := upload(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to upload %s: %w", args[0], err)
				}
				if isJSON(cmd) {
					return printJSON(cmd, media)
				}
				printAction(cmd, "Uploaded", "media", media.ID, media.URL)
				return nil
			}

			progress := !flags.Quiet && !flags.Silent && !isJSON(cmd)
			results := runBulkOperation(ctx, args, concurrency, progress, iocontext.GetIO(ctx).ErrOut, upload)
			return reportBulk(cmd, "file", "Uploaded", results)
		}),
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 3, "Maximum concurrent uploads")
	return cmd
}
