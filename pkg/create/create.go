// SPDX-License-Identifier: Apache-2.0

// Package create implements the Creators: one Job per Oracle object
// kind, each reading its StateStore snapshot, generating PostgreSQL DDL
// through pkg/typemap, and executing it in its own transaction via the
// ConnectionProvider. Every Creator accumulates a model.CreationOutcome[T]
// rather than aborting on the first failure.
package create

import (
	"context"
	"database/sql"

	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
)

// cancelled wraps ctx.Err() as a *migerr.Info, for Creators bailing out of
// their per-item loop on cancellation.
func cancelled(ctx context.Context) *migerr.Info {
	return migerr.Wrap(migerr.KindCancelled, "creation cancelled", ctx.Err())
}

// reportEvery reports progress as a percentage of total items processed.
func reportEvery(reporter job.Reporter, task string, processed, total int) {
	if total == 0 {
		reporter.Report(100, task, "no objects found")
		return
	}
	pct := int(float64(processed) / float64(total) * 100)
	reporter.Report(pct, task, "")
}

// execDDL runs a single DDL statement in its own transaction and classifies
// failures as conflicts (benign skip) vs genuine errors.
func execDDL(ctx context.Context, conns *dbconn.Provider, ddl string) error {
	return conns.WithPostgresTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, ddl)
		return err
	})
}

// classify turns an exec error into either a conflict reason (ok=true,
// skip) or the raw error to be recorded against the item (ok=false).
func classify(err error) (reason string, isConflict bool) {
	if err == nil {
		return "", false
	}
	return dbconn.ClassifyConflict(err)
}

func asInfo(err error) *migerr.Info {
	if info, ok := err.(*migerr.Info); ok {
		return info
	}
	return migerr.Wrap(migerr.KindSQL, "creation failed", err)
}
