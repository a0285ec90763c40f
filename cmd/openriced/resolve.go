package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Khootz/FYP2026/internal/pipeline"
	"github.com/Khootz/FYP2026/internal/report"
)

func newResolveCommand() *cobra.Command {
	var (
		noDetails  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <name> [name...]",
		Short: "Resolve one or more restaurant names from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := slog.Default()

			store, err := pipeline.OpenStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open cache store: %w", err)
			}
			defer store.Close()

			workers := cfg.Workers
			if len(args) < workers {
				workers = len(args)
			}
			pool, err := pipeline.BuildPool(cfg, store, workers, logger)
			if err != nil {
				return fmt.Errorf("build resolver pool: %w", err)
			}
			defer pool.Close()

			start := time.Now()
			items, err := pool.ResolveBatch(cmd.Context(), args, !noDetails)
			if err != nil {
				return err
			}

			rep := report.Build(items, time.Since(start))
			if jsonOutput {
				if len(items) == 1 {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(items[0].Restaurant)
				}
				return rep.WriteJSON(os.Stdout)
			}
			return rep.WriteText(os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&noDetails, "no-details", false, "skip review and photo extraction")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON instead of a text report")
	return cmd
}
