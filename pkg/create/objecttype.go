// SPDX-License-Identifier: Apache-2.0

package create

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
	"github.com/oragres/migrator/pkg/typemap"
)

// ObjectTypeCreator emits CREATE TYPE ... AS (...) composite types.
type ObjectTypeCreator struct{}

func NewObjectTypeCreator(arg any) (job.Job, error) { return ObjectTypeCreator{}, nil }

func (ObjectTypeCreator) Describe() job.Description {
	return job.Description{Kind: job.OpObjectTypeCreate, Database: job.DatabasePostgres, FriendlyName: "Create object types"}
}

func (ObjectTypeCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	types, _ := state.Get[[]model.ObjectDataType](st, state.KeyObjectTypes)
	outcome := model.NewCreationOutcome[model.ObjectDataType](time.Now())

	for i, t := range types {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		attrs := make([]string, 0, len(t.Variables))
		for _, v := range t.Variables {
			pgType, _ := typemap.MapColumnType(typemap.ColumnTypeInput{
				OracleType: v.DataType, Length: v.Length, Precision: v.Precision, Scale: v.Scale,
			})
			attrs = append(attrs, fmt.Sprintf("%s %s", typemap.MapIdent(v.Name), pgType))
		}

		ddl := fmt.Sprintf("CREATE TYPE %s AS (%s)", typemap.ObjectTypeName(t.Schema, t.Name), strings.Join(attrs, ", "))
		err := execDDL(ctx, conns, ddl)
		switch {
		case err == nil:
			outcome.AddCreated(t)
		default:
			if reason, ok := classify(err); ok {
				outcome.AddSkipped(t, reason)
			} else {
				outcome.AddError(t, err.Error(), ddl)
			}
		}

		reportEvery(reporter, "object type creation", i+1, len(types))
	}

	reporter.Report(100, "object type creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}
