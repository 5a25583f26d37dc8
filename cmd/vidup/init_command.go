package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidup/internal/index"
	"vidup/internal/logging"
)

func newInitCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the fingerprint index (safe to re-run)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withIndex(cmd.Context(), func(store *index.Store) error {
				if err := store.Init(cmd.Context()); err != nil {
					return fmt.Errorf("initialize index: %w", err)
				}
				health, err := store.Health(cmd.Context())
				if err != nil {
					return fmt.Errorf("index health: %w", err)
				}
				ctx.Logger().Info("index initialized",
					logging.String("driver", health.Driver),
					logging.String("location", health.Location),
					logging.Int("schema_version", health.SchemaVersion),
				)
				if ctx.JSONMode() {
					return writeJSON(cmd, health)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Index ready at %s (%s, schema v%d)\n", health.Location, health.Driver, health.SchemaVersion)
				return nil
			})
		},
	}
}
