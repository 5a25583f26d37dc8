package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vidup/internal/index"
)

type sceneRow struct {
	Hash       string `json:"hash"`
	DurationMs uint32 `json:"duration_ms"`
	StartMs    uint64 `json:"start_ms,omitempty"`
}

type scenesOutput struct {
	FileID index.FileID `json:"file_id"`
	Name   string       `json:"name"`
	Status string       `json:"status"`
	Scenes []sceneRow   `json:"scenes"`
}

func newScenesCommand(ctx *commandContext) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:    "scenes NAME",
		Short:  "Dump the scene fingerprints recorded for a file",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
				scenes, err := store.ScenesByFile(cmd.Context(), entry.ID, nil)
				if err != nil {
					return err
				}

				rows := make([]sceneRow, 0, len(scenes))
				var offset uint64
				for _, sc := range scenes {
					row := sceneRow{Hash: fmt.Sprintf("%08X", sc.ID.Hash), DurationMs: sc.ID.DurationMs}
					if debug {
						row.StartMs = offset
					}
					offset += uint64(sc.ID.DurationMs)
					rows = append(rows, row)
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, scenesOutput{FileID: entry.ID, Name: entry.Name, Status: entry.Status.String(), Scenes: rows})
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "file id: %d (%s, %s)\n", entry.ID, entry.Name, entry.Status)
				headers := []string{"Hash", "Duration (ms)"}
				aligns := []columnAlignment{alignLeft, alignRight}
				if debug {
					headers = append([]string{"#", "Start"}, headers...)
					aligns = append([]columnAlignment{alignRight, alignRight}, aligns...)
				}
				table := make([][]string, 0, len(rows))
				for i, row := range rows {
					cells := []string{row.Hash, strconv.FormatUint(uint64(row.DurationMs), 10)}
					if debug {
						cells = append([]string{strconv.Itoa(i), formatMillis(row.StartMs)}, cells...)
					}
					table = append(table, cells)
				}
				fmt.Fprintln(out, renderTable(headers, table, aligns))
				if debug {
					fmt.Fprintf(out, "%s scenes, %s total\n", formatCount(len(rows)), formatMillis(offset))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Include scene index and start offset")
	return cmd
}
