// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the command-line entrypoint: a thin cobra wrapper
// that wires ConfigStore, StateStore, ConnectionProvider, JobRegistry and
// JobService together and hands control to either a one-shot CLI run or
// the REST API server, split into root command and subcommands.
package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/oragres/migrator/internal/connstr"
	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/joblog"
	"github.com/oragres/migrator/pkg/state"
)

var (
	oracleURL      string
	postgresURL    string
	onlyTestSchema string
)

// Execute runs the CLI and returns an error for main to translate into an
// exit code.
func Execute() error {
	root := newRootCmd()
	return root.Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oragres",
		Short:         "Migrate an Oracle schema to PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&oracleURL, "oracle-url", "", "Oracle connection string")
	root.PersistentFlags().StringVar(&postgresURL, "postgres-url", "", "PostgreSQL connection string")
	root.PersistentFlags().StringVar(&onlyTestSchema, "only-test-schema", "", "restrict migration to a single schema")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

// buildRuntime wires the ConfigStore, StateStore, ConnectionProvider,
// JobRegistry and JobService from CLI flags/environment. Every
// subcommand shares this wiring so the REST API and the one-shot CLI path
// see identical behavior.
func buildRuntime() (*config.Store, *job.Service, *dbconn.Provider, error) {
	cfgStore := config.NewStore()
	cfg := cfgStore.Get()

	if oracleURL != "" {
		cfg.OracleURL = oracleURL
	}
	if postgresURL != "" {
		cfg.PostgresURL = postgresURL
	}
	if onlyTestSchema != "" {
		cfg.DoOnlyTestSchema = onlyTestSchema
		cfg.DoAllSchemas = false
	}
	cfgStore.Set(cfg)

	pgDSN := cfg.PostgresURL
	if cfg.DoOnlyTestSchema != "" {
		scoped, err := connstr.AppendSearchPathOption(pgDSN, cfg.DoOnlyTestSchema)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("scoping postgres search_path: %w", err)
		}
		pgDSN = scoped
	}

	conns := dbconn.New(cfg.OracleURL, pgDSN)
	registry := NewRegistry()
	logger := joblog.New()
	svc := job.NewService(registry, state.New(), conns, cfgStore, job.WithLogger(logger))

	return cfgStore, svc, conns, nil
}

func fatal(err error) {
	pterm.Error.Println(err)
	os.Exit(1)
}
