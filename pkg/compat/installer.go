// SPDX-License-Identifier: Apache-2.0

package compat

import (
	"context"
	"database/sql"
	"time"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
)

// Installer runs the CompatibilityInstaller: validates the built-in
// catalogue, then installs every entry that carries InstallDDL into the
// oracle_compat schema.
type Installer struct {
	catalogue []Entry
}

func NewInstaller(arg any) (job.Job, error) {
	if entries, ok := arg.([]Entry); ok {
		return Installer{catalogue: entries}, nil
	}
	return Installer{catalogue: DefaultCatalogue()}, nil
}

func (Installer) Describe() job.Description {
	return job.Description{Kind: job.OpOracleCompatInstall, Database: job.DatabasePostgres, FriendlyName: "Install Oracle compatibility shims"}
}

func (i Installer) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	if err := ValidateCatalogue(i.catalogue); err != nil {
		return job.Failure(err.(*migerr.Info))
	}

	outcome := model.NewCreationOutcome[Entry](time.Now())

	err := conns.WithPostgresTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS oracle_compat")
		return err
	})
	if err != nil {
		return job.Failure(migerr.Wrap(migerr.KindSQL, "creating oracle_compat schema", err))
	}

	for idx, entry := range i.catalogue {
		if ctx.Err() != nil {
			return job.Failure(migerr.Wrap(migerr.KindCancelled, "compatibility install cancelled", ctx.Err()))
		}

		if entry.InstallDDL == "" {
			outcome.AddSkipped(entry, "no installable DDL; call sites are translated directly")
			reportEvery(reporter, "compatibility shim install", idx+1, len(i.catalogue))
			continue
		}

		err := conns.WithPostgresTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, entry.InstallDDL)
			return err
		})
		if err != nil {
			outcome.AddError(entry, err.Error(), entry.InstallDDL)
		} else {
			outcome.AddCreated(entry)
		}

		reportEvery(reporter, "compatibility shim install", idx+1, len(i.catalogue))
	}

	reporter.Report(100, "compatibility shim install", "")
	return job.Success(outcome, map[string]any{
		"installed": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}

func reportEvery(reporter job.Reporter, task string, processed, total int) {
	if total == 0 {
		reporter.Report(100, task, "no catalogue entries")
		return
	}
	pct := int(float64(processed) / float64(total) * 100)
	reporter.Report(pct, task, "")
}

// Verifier runs OracleCompatVerify: confirms every entry with install DDL
// resolved to a present function in oracle_compat.
type Verifier struct {
	catalogue []Entry
}

func NewVerifier(arg any) (job.Job, error) {
	if entries, ok := arg.([]Entry); ok {
		return Verifier{catalogue: entries}, nil
	}
	return Verifier{catalogue: DefaultCatalogue()}, nil
}

func (Verifier) Describe() job.Description {
	return job.Description{Kind: job.OpOracleCompatVerify, Database: job.DatabasePostgres, FriendlyName: "Verify Oracle compatibility shims"}
}

func (v Verifier) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	outcome := model.NewCreationOutcome[Entry](time.Now())

	installable := make([]Entry, 0, len(v.catalogue))
	for _, e := range v.catalogue {
		if e.InstallDDL != "" {
			installable = append(installable, e)
		}
	}

	for i, entry := range installable {
		if ctx.Err() != nil {
			return job.Failure(migerr.Wrap(migerr.KindCancelled, "compatibility verification cancelled", ctx.Err()))
		}

		verifySQL := `
			SELECT count(*) FROM pg_proc p
			JOIN pg_namespace n ON n.oid = p.pronamespace
			WHERE n.nspname = 'oracle_compat' AND p.proname = lower($1)`

		// Installed names are package_function, e.g. dbms_output_put_line.
		name := entry.OracleFunction
		if entry.OraclePackage != "" {
			name = entry.OraclePackage + "_" + entry.OracleFunction
		}

		var count int
		err := conns.WithPostgres(ctx, func(ctx context.Context, conn *sql.Conn) error {
			return conn.QueryRowContext(ctx, verifySQL, name).Scan(&count)
		})

		switch {
		case err != nil:
			outcome.AddError(entry, err.Error(), verifySQL)
		case count == 0:
			outcome.AddError(entry, "compatibility function not found after install", verifySQL)
		default:
			outcome.AddCreated(entry)
		}

		reportEvery(reporter, "compatibility shim verification", i+1, len(installable))
	}

	reporter.Report(100, "compatibility shim verification", "")
	return job.Success(outcome, map[string]any{
		"verified": outcome.CreatedCount(), "missing": outcome.ErrorCount(),
	})
}
