package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidup/internal/duplicate"
	"vidup/internal/index"
	"vidup/internal/metrics"
)

type searchOutput struct {
	Name    string            `json:"name"`
	FileID  index.FileID      `json:"file_id"`
	Matches []duplicate.Match `json:"matches"`
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search NAME",
		Short: "List indexed files sharing the most scenes with NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.flushMetrics()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Search.Limit
			}
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive (got %d)", limit)
			}
			name := index.NameFromPath(args[0])

			return ctx.withIndex(cmd.Context(), func(store *index.Store) error {
				entry, err := store.FileEntry(cmd.Context(), name)
				if errors.Is(err, index.ErrNotFound) {
					info(cmd, "%s is not in the index", name)
					return nil
				}
				if err != nil {
					return err
				}
				if entry.Status != index.StatusAnalyzed {
					info(cmd, "%s has not finished analysis; results may be incomplete", name)
				}

				engine := duplicate.New(store, duplicate.WithLogger(ctx.Logger()))
				matches, err := engine.SearchFile(cmd.Context(), entry.ID, limit)
				if err != nil {
					return err
				}
				ctx.metrics.ObserveQuery(metrics.KindSearch)

				if ctx.JSONMode() {
					if matches == nil {
						matches = []duplicate.Match{}
					}
					return writeJSON(cmd, searchOutput{Name: name, FileID: entry.ID, Matches: matches})
				}
				out := cmd.OutOrStdout()
				if len(matches) == 0 {
					fmt.Fprintf(out, "No files share scenes with %s\n", name)
					return nil
				}
				rows := make([][]string, 0, len(matches))
				for i, m := range matches {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						m.Name,
						strconv.FormatInt(int64(m.FileID), 10),
						formatCount(m.Count),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "File", "ID", "Shared scenes"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", duplicate.DefaultLimit, "Maximum number of matches")
	return cmd
}
