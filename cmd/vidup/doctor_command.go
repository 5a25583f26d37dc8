package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidup/internal/preflight"
)

type doctorCheck struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the index and external tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var checks []doctorCheck
			for _, r := range preflight.RunAll(cmd.Context(), cfg) {
				checks = append(checks, doctorCheck{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
			}
			for _, s := range preflight.CheckSystemDeps(cfg) {
				detail := s.Command
				if !s.Available {
					detail = s.Detail
				}
				if s.Description != "" {
					detail = fmt.Sprintf("%s (%s)", detail, s.Description)
				}
				checks = append(checks, doctorCheck{Name: s.Name, Passed: s.Available, Optional: s.Optional, Detail: detail})
			}

			failed := 0
			for _, c := range checks {
				if !c.Passed && !c.Optional {
					failed++
				}
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, checks); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(checks))
				for _, c := range checks {
					state := "ok"
					switch {
					case !c.Passed && c.Optional:
						state = "missing (optional)"
					case !c.Passed:
						state = "FAIL"
					}
					rows = append(rows, []string{c.Name, state, c.Detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			}

			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}
