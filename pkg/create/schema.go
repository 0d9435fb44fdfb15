// SPDX-License-Identifier: Apache-2.0

package create

import (
	"context"
	"time"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
	"github.com/oragres/migrator/pkg/typemap"
)

// SchemaCreator issues CREATE SCHEMA for every extracted schema; a schema
// that already exists is classified as a skip.
type SchemaCreator struct{}

func NewSchemaCreator(arg any) (job.Job, error) { return SchemaCreator{}, nil }

func (SchemaCreator) Describe() job.Description {
	return job.Description{Kind: job.OpSchemaCreate, Database: job.DatabasePostgres, FriendlyName: "Create schemas"}
}

func (SchemaCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	schemas, _ := state.Get[[]model.Schema](st, state.KeySchemas)
	outcome := model.NewCreationOutcome[model.Schema](time.Now())

	for i, s := range schemas {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		ddl := `CREATE SCHEMA "` + typemap.MapIdent(s.Name) + `"`
		err := execDDL(ctx, conns, ddl)
		switch {
		case err == nil:
			outcome.AddCreated(s)
		default:
			if reason, ok := classify(err); ok {
				outcome.AddSkipped(s, reason)
			} else {
				outcome.AddError(s, err.Error(), ddl)
			}
		}

		reportEvery(reporter, "schema creation", i+1, len(schemas))
	}

	reporter.Report(100, "schema creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}
