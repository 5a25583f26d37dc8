package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidup/internal/index"
)

func newFilesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List indexed files and their analysis status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withIndex(cmd.Context(), func(store *index.Store) error {
				entries, err := store.Files(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if entries == nil {
						entries = []index.FileEntry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Index is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				analyzed := 0
				for _, e := range entries {
					if e.Status == index.StatusAnalyzed {
						analyzed++
					}
					rows = append(rows, []string{strconv.FormatInt(int64(e.ID), 10), e.Name, e.Status.String()})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Status"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
				fmt.Fprintf(out, "%s files, %s analyzed\n", formatCount(len(entries)), formatCount(analyzed))
				return nil
			})
		},
	}
}
