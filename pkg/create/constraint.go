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

// ConstraintCreator applies constraints in P, U, R, C order (pkg/extract
// already sorted KeyConstraints this way) so a foreign key's referenced
// unique/primary-key constraint exists first. R and C constraints are added
// NOT VALID, so a single bad row does not block every other constraint in
// the batch from being declared; a VALIDATE CONSTRAINT second statement
// follows only for constraints Oracle had validated (Validated), and a
// NOVALIDATE constraint stays NOT VALID.
type ConstraintCreator struct{}

func NewConstraintCreator(arg any) (job.Job, error) { return ConstraintCreator{}, nil }

func (ConstraintCreator) Describe() job.Description {
	return job.Description{Kind: job.OpConstraintCreate, Database: job.DatabasePostgres, FriendlyName: "Create constraints"}
}

func (ConstraintCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	constraints, _ := state.Get[[]model.Constraint](st, state.KeyConstraints)
	outcome := model.NewCreationOutcome[model.Constraint](time.Now())

	for i, c := range constraints {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		addDDL := constraintAddDDL(c)
		err := execDDL(ctx, conns, addDDL)
		if err != nil {
			if reason, ok := classify(err); ok {
				outcome.AddSkipped(c, reason)
			} else {
				outcome.AddError(c, err.Error(), addDDL)
			}
			reportEvery(reporter, "constraint creation", i+1, len(constraints))
			continue
		}

		if needsValidateStep(c) && c.Validated {
			validateDDL := fmt.Sprintf("ALTER TABLE %s.%s VALIDATE CONSTRAINT %s",
				typemap.MapIdent(c.Schema), typemap.MapIdent(c.TableName), typemap.MapIdent(c.ConstraintName))
			if verr := execDDL(ctx, conns, validateDDL); verr != nil {
				outcome.AddError(c, verr.Error(), validateDDL)
				reportEvery(reporter, "constraint creation", i+1, len(constraints))
				continue
			}
		}

		outcome.AddCreated(c)
		reportEvery(reporter, "constraint creation", i+1, len(constraints))
	}

	reporter.Report(100, "constraint creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}

func needsValidateStep(c model.Constraint) bool {
	return c.ConstraintType == model.ConstraintForeignKey || c.ConstraintType == model.ConstraintCheck
}

func constraintAddDDL(c model.Constraint) string {
	table := typemap.MapIdent(c.Schema) + "." + typemap.MapIdent(c.TableName)
	name := typemap.MapIdent(c.ConstraintName)
	cols := mapIdentList(c.Columns)

	var body string
	switch c.ConstraintType {
	case model.ConstraintPrimaryKey:
		body = fmt.Sprintf("PRIMARY KEY (%s)", cols)
	case model.ConstraintUnique:
		body = fmt.Sprintf("UNIQUE (%s)", cols)
	case model.ConstraintForeignKey:
		refTable := typemap.MapIdent(c.ReferencedSchema) + "." + typemap.MapIdent(c.ReferencedTable)
		body = fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)", cols, refTable, mapIdentList(c.ReferencedColumns))
	case model.ConstraintCheck:
		body = fmt.Sprintf("CHECK (%s)", c.CheckExpression)
	}

	ddl := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s %s", table, name, body)
	if needsValidateStep(c) {
		ddl += " NOT VALID"
	}
	if c.Deferrable {
		ddl += " DEFERRABLE"
		if c.InitiallyDeferred {
			ddl += " INITIALLY DEFERRED"
		}
	}
	return ddl
}

func mapIdentList(names []string) string {
	mapped := make([]string, len(names))
	for i, n := range names {
		mapped[i] = typemap.MapIdent(n)
	}
	return strings.Join(mapped, ", ")
}
