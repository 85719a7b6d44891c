package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/storefront/storefront-cli/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the name lookup cache",
		Long: strings.TrimSpace(`
Category and tag lists used to resolve names to IDs are cached for a few
minutes, per base URL. The cache lives in the user cache directory, or in
Redis when ` + cache.RedisURLEnv + ` is set. STOREFRONT_NO_CACHE=1 turns it off.`),
	}

	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePathCmd())
	return cmd
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached data",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir := resolveCacheDir()
			if dir == "" {
				return fmt.Errorf("could not determine cache directory")
			}
			cache.ClearAll(dir)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", dir)

			if raw := strings.TrimSpace(os.Getenv(cache.RedisURLEnv)); raw != "" {
				client, err := cache.NewRedisClient(raw)
				if err != nil {
					return err
				}
				defer func() { _ = client.Close() }()
				if err := cache.ClearAllRedis(cmd.Context(), client); err != nil {
					return fmt.Errorf("failed to clear redis cache: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Redis cache cleared")
			}
			return nil
		}),
	}
}

func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the cache directory and its entries",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			dir := resolveCacheDir()
			if dir == "" {
				return fmt.Errorf("could not determine cache directory")
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)

			entries, err := os.ReadDir(dir)
			if err != nil {
				return nil
			}
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
					continue
				}
				info, err := e.Info()
				if err != nil {
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d bytes)\n", e.Name(), info.Size())
			}
			return nil
		}),
	}
}
