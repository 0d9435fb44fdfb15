// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"database/sql"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
)

// RowCountExtractor runs SELECT COUNT(*) per table so DataTransfer can
// later classify a table as fully/partially/not transferred. A failing
// count (privilege, timeout) is recorded as RowCountError rather than
// aborting the whole phase.
type RowCountExtractor struct{}

func NewRowCountExtractor(arg any) (job.Job, error) { return RowCountExtractor{}, nil }

func (RowCountExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpRowCountExtract, Database: job.DatabaseOracle, FriendlyName: "Extract row counts"}
}

func (RowCountExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	tables, _ := state.Get[[]model.Table](st, state.KeyTables)

	counts := make([]model.RowCount, 0, len(tables))
	for i, t := range tables {
		if ctx.Err() != nil {
			return job.Failure(migerr.Wrap(migerr.KindCancelled, "row count extraction cancelled", ctx.Err()))
		}

		rc := model.RowCount{Schema: t.Schema, TableName: t.Name}
		err := conns.WithOracle(ctx, func(ctx context.Context, conn *sql.Conn) error {
			sqlText := `SELECT COUNT(*) FROM "` + t.Schema + `"."` + t.Name + `"`
			return conn.QueryRowContext(ctx, sqlText).Scan(&rc.RowCount)
		})
		if err != nil {
			rc.Status = model.RowCountError
		} else {
			rc.Status = model.RowCountOK
		}
		counts = append(counts, rc)

		reportEvery(reporter, "row count extraction", i+1, len(tables), max(1, len(tables)/20))
	}

	reporter.Report(100, "row count extraction", "")
	state.Put(st, state.KeyRowCounts, counts)

	return job.Success(counts, map[string]any{"tableCount": len(counts)})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
