// SPDX-License-Identifier: Apache-2.0

package create

import (
	"context"
	"fmt"
	"time"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
	"github.com/oragres/migrator/pkg/typemap"
)

// FKIndexCreator creates a supporting index on each foreign key's local
// columns: PostgreSQL, unlike Oracle, does not index FK columns
// automatically, and an unindexed FK column is a well-known lock-contention
// hazard on the referenced table.
type FKIndexCreator struct{}

func NewFKIndexCreator(arg any) (job.Job, error) { return FKIndexCreator{}, nil }

func (FKIndexCreator) Describe() job.Description {
	return job.Description{Kind: job.OpFKIndexCreate, Database: job.DatabasePostgres, FriendlyName: "Create foreign key indexes"}
}

func (FKIndexCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	constraints, _ := state.Get[[]model.Constraint](st, state.KeyConstraints)

	var fks []model.Constraint
	for _, c := range constraints {
		if c.ConstraintType == model.ConstraintForeignKey {
			fks = append(fks, c)
		}
	}

	outcome := model.NewCreationOutcome[model.Constraint](time.Now())

	for i, c := range fks {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		indexName := typemap.MapIdent(c.ConstraintName + "_IDX")
		ddl := fmt.Sprintf("CREATE INDEX %s ON %s.%s (%s)",
			indexName, typemap.MapIdent(c.Schema), typemap.MapIdent(c.TableName), mapIdentList(c.Columns))

		err := execDDL(ctx, conns, ddl)
		switch {
		case err == nil:
			outcome.AddCreated(c)
		default:
			if reason, ok := classify(err); ok {
				outcome.AddSkipped(c, reason)
			} else {
				outcome.AddError(c, err.Error(), ddl)
			}
		}

		reportEvery(reporter, "fk index creation", i+1, len(fks))
	}

	reporter.Report(100, "fk index creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}
