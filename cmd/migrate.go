// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/oragres/migrator/pkg/orchestrator"
)

func newMigrateCmd() *cobra.Command {
	var abortOnAnyError bool

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run the full Oracle to PostgreSQL migration pipeline once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, conns, err := buildRuntime()
			if err != nil {
				return err
			}
			defer conns.Close()
			defer svc.Shutdown()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			policy := orchestrator.AbortOnTotalFailure
			if abortOnAnyError {
				policy = orchestrator.AbortOnAnyError
			}

			orch := orchestrator.New(svc, policy, 0)
			outcomes, err := orch.Run(ctx)

			for _, o := range outcomes {
				line := fmt.Sprintf("%-30s %-10s created=%d skipped=%d errors=%d",
					o.Phase.Kind, o.State, o.Summary.CreatedCount, o.Summary.SkippedCount, o.Summary.ErrorCount)
				if o.Summary.ErrorCount > 0 {
					pterm.Warning.Println(line)
				} else {
					pterm.Success.Println(line)
				}
			}

			return err
		},
	}

	migrateCmd.Flags().BoolVar(&abortOnAnyError, "abort-on-any-error", false,
		"stop the pipeline on the first phase that reports any per-item error, not just a total phase failure")

	return migrateCmd
}
