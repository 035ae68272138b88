package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redust/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, helper tools, and CDN reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			section := newStatusSection("Preflight", out)
			results := preflight.RunAll(ctx.runContext(cmd), cfg, offline)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				section.add(r.Name, kind, r.Detail)
			}
			section.write(out)

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d check(s) failed", len(failed))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the CDN check")
	return cmd
}
