package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidup/internal/duplicate"
	"vidup/internal/index"
	"vidup/internal/metrics"
)

func newTopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "top [N]",
		Short: "Report file pairs with the most shared content",
		Long: `Report file pairs with the most shared content.

Considers the N longest scene fingerprints that occur more than once in the
index (default from config) and ranks every pair of files that share them by
the total duration of the shared scenes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.flushMetrics()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			limit := cfg.Top.Limit
			if len(args) == 1 {
				limit, err = strconv.Atoi(args[0])
				if err != nil || limit <= 0 {
					return fmt.Errorf("invalid N %q: must be a positive integer", args[0])
				}
			}

			return ctx.withIndex(cmd.Context(), func(store *index.Store) error {
				engine := duplicate.New(store, duplicate.WithLogger(ctx.Logger()))
				relations, err := engine.Top(cmd.Context(), limit)
				if err != nil {
					return err
				}
				ctx.metrics.ObserveQuery(metrics.KindTop)

				if ctx.JSONMode() {
					if relations == nil {
						relations = []duplicate.Relation{}
					}
					return writeJSON(cmd, relations)
				}
				out := cmd.OutOrStdout()
				if len(relations) == 0 {
					fmt.Fprintln(out, "No shared scenes found")
					return nil
				}
				rows := make([][]string, 0, len(relations))
				for _, r := range relations {
					rows = append(rows, []string{r.NameA, r.NameB, formatMillis(r.DurationMs)})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"File A", "File B", "Shared"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
