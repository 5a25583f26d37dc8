package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidup/internal/analysis"
	"vidup/internal/index"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a file and its scenes from the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := index.NameFromPath(args[0])
			return ctx.withIndex(cmd.Context(), func(store *index.Store) error {
				analyzer := analysis.New(store, analysis.Options{Logger: ctx.Logger(), Metrics: ctx.metrics})
				id, err := analyzer.Delete(cmd.Context(), name)
				if errors.Is(err, index.ErrNotFound) {
					info(cmd, "%s is not in the index", name)
					return nil
				}
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, index.FileEntry{ID: id, Name: name})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (file id %d)\n", name, id)
				return nil
			})
		},
	}
}
