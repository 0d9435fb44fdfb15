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

// TableCreator emits bare CREATE TABLE statements, columns only: no
// constraints (those are a separate, later phase so FK ordering can be
// resolved against already-created tables) and an optional TABLESPACE
// clause.
type TableCreator struct{}

func NewTableCreator(arg any) (job.Job, error) { return TableCreator{}, nil }

func (TableCreator) Describe() job.Description {
	return job.Description{Kind: job.OpTableCreate, Database: job.DatabasePostgres, FriendlyName: "Create tables"}
}

func (TableCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	tables, _ := state.Get[[]model.Table](st, state.KeyTables)
	objectTypes, _ := state.Get[[]model.ObjectDataType](st, state.KeyObjectTypes)

	knownTypes := map[string]model.ObjectDataType{}
	for _, t := range objectTypes {
		knownTypes[strings.ToUpper(t.Name)] = t
	}

	outcome := model.NewCreationOutcome[model.Table](time.Now())

	for i, t := range tables {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		colDefs := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			colDefs = append(colDefs, tableColumnDDL(c, t, knownTypes, outcome))
		}

		ddl := fmt.Sprintf("CREATE TABLE %s.%s (%s)", typemap.MapIdent(t.Schema), typemap.MapIdent(t.Name), strings.Join(colDefs, ", "))
		if t.Tablespace != "" {
			ddl += " TABLESPACE " + typemap.MapIdent(t.Tablespace)
		}

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

		reportEvery(reporter, "table creation", i+1, len(tables))
	}

	reporter.Report(100, "table creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
		"unmappedDefaults": len(outcome.UnmappedDefaults),
	})
}

func tableColumnDDL(c model.Column, t model.Table, knownTypes map[string]model.ObjectDataType, outcome *model.CreationOutcome[model.Table]) string {
	var pgType string
	if ot, ok := knownTypes[strings.ToUpper(c.OracleType)]; ok {
		pgType = typemap.ObjectTypeName(ot.Schema, ot.Name)
	} else {
		mapped, _ := typemap.MapColumnType(typemap.ColumnTypeInput{
			OracleType: c.OracleType, Length: c.Length, Precision: c.Precision, Scale: c.Scale, CharUsed: c.CharUsed,
		})
		pgType = mapped
	}

	def := fmt.Sprintf("%s %s", typemap.MapIdent(c.Name), pgType)
	if !c.Nullable {
		def += " NOT NULL"
	}

	if c.DefaultExpression != nil && strings.TrimSpace(*c.DefaultExpression) != "" {
		mapped := typemap.MapDefault(*c.DefaultExpression, t.Schema)
		if mapped.Unmapped != nil {
			outcome.UnmappedDefaults = append(outcome.UnmappedDefaults, model.UnmappedDefault{
				Table: t.Name, Column: c.Name, OracleDefault: *c.DefaultExpression,
			})
		} else {
			def += " DEFAULT " + mapped.Expression
		}
	}

	return def
}
