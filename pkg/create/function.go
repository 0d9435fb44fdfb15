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

// FunctionStubCreator emits a PL/pgSQL function per extracted unit with the
// correct flattened name and signature, whose body unconditionally raises
// an exception. Like view stubs, this gives anything that calls the
// function at DDL time (a view, a trigger, another function) something
// real to resolve against before source translation fills in the real body.
type FunctionStubCreator struct{}

func NewFunctionStubCreator(arg any) (job.Job, error) { return FunctionStubCreator{}, nil }

func (FunctionStubCreator) Describe() job.Description {
	return job.Description{Kind: job.OpFunctionStubCreate, Database: job.DatabasePostgres, FriendlyName: "Create function/procedure stubs"}
}

func (FunctionStubCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	units, _ := state.Get[[]model.FunctionOrProcedure](st, state.KeyFunctions)
	outcome := model.NewCreationOutcome[model.FunctionOrProcedure](time.Now())

	for i, u := range units {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		ddl := functionStubDDL(u)
		err := execDDL(ctx, conns, ddl)
		switch {
		case err == nil:
			outcome.AddCreated(u)
		default:
			if reason, ok := classify(err); ok {
				outcome.AddSkipped(u, reason)
			} else {
				outcome.AddError(u, err.Error(), ddl)
			}
		}

		reportEvery(reporter, "function/procedure stub creation", i+1, len(units))
	}

	reporter.Report(100, "function/procedure stub creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}

func functionStubDDL(u model.FunctionOrProcedure) string {
	params := make([]string, 0, len(u.Signature.Parameters))
	for _, p := range u.Signature.Parameters {
		pgType, _ := typemap.MapColumnType(typemap.ColumnTypeInput{OracleType: p.DataType})
		mode := pgParamMode(p.Mode)
		params = append(params, fmt.Sprintf("%s %s %s", mode, typemap.MapIdent(p.Name), pgType))
	}

	name := typemap.MapIdent(u.Schema) + "." + typemap.FlattenPackageName(u.PackageName, u.ObjectName)

	returns := "void"
	if u.ObjectType == model.ObjectTypeFunction && u.Signature.ReturnType != "" {
		returns, _ = typemap.MapColumnType(typemap.ColumnTypeInput{OracleType: u.Signature.ReturnType})
	}

	return fmt.Sprintf(
		"CREATE FUNCTION %s(%s) RETURNS %s LANGUAGE plpgsql AS $stub$ BEGIN RAISE EXCEPTION 'not yet implemented: %s'; END; $stub$",
		name, strings.Join(params, ", "), returns, name,
	)
}

func pgParamMode(oracleMode string) string {
	switch strings.ToUpper(strings.TrimSpace(oracleMode)) {
	case "OUT":
		return "OUT"
	case "IN/OUT", "IN OUT":
		return "INOUT"
	default:
		return "IN"
	}
}
