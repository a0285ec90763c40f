package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Khootz/FYP2026/internal/cache"
	"github.com/Khootz/FYP2026/internal/pipeline"
)

func newCacheCommand() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the resolution cache",
	}
	cacheCmd.AddCommand(newCacheClearCommand(), newCacheKeyCommand())
	return cacheCmd
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached resolution",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := pipeline.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open cache store: %w", err)
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			fmt.Println("cache cleared")
			return nil
		},
	}
}

func newCacheKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "key <name>",
		Short: "Print the cache key a query maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(cache.Key(args[0]))
			return nil
		},
	}
}
