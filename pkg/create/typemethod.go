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

// TypeMethodStubCreator mirrors FunctionStubCreator for methods declared on
// object types, since PostgreSQL has no member-method syntax: each method
// becomes a flattened free function taking the composite type as its first
// argument.
type TypeMethodStubCreator struct{}

func NewTypeMethodStubCreator(arg any) (job.Job, error) { return TypeMethodStubCreator{}, nil }

func (TypeMethodStubCreator) Describe() job.Description {
	return job.Description{Kind: job.OpTypeMethodStubCreate, Database: job.DatabasePostgres, FriendlyName: "Create type method stubs"}
}

func (TypeMethodStubCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	methods, _ := state.Get[[]model.TypeMethod](st, state.KeyTypeMethods)
	outcome := model.NewCreationOutcome[model.TypeMethod](time.Now())

	for i, m := range methods {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		name := typemap.MapIdent(m.Schema) + "." + typemap.FlattenPackageName(m.TypeName, m.MethodName)
		selfParam := fmt.Sprintf("self_value %s", typemap.ObjectTypeName(m.Schema, m.TypeName))

		params := []string{selfParam}
		for _, p := range m.Signature.Parameters {
			pgType, _ := typemap.MapColumnType(typemap.ColumnTypeInput{OracleType: p.DataType})
			params = append(params, fmt.Sprintf("%s %s %s", pgParamMode(p.Mode), typemap.MapIdent(p.Name), pgType))
		}

		returns := "void"
		if m.Signature.ReturnType != "" {
			returns, _ = typemap.MapColumnType(typemap.ColumnTypeInput{OracleType: m.Signature.ReturnType})
		}

		ddl := fmt.Sprintf(
			"CREATE FUNCTION %s(%s) RETURNS %s LANGUAGE plpgsql AS $stub$ BEGIN RAISE EXCEPTION 'not yet implemented: %s'; END; $stub$",
			name, strings.Join(params, ", "), returns, name,
		)

		err := execDDL(ctx, conns, ddl)
		switch {
		case err == nil:
			outcome.AddCreated(m)
		default:
			if reason, ok := classify(err); ok {
				outcome.AddSkipped(m, reason)
			} else {
				outcome.AddError(m, err.Error(), ddl)
			}
		}

		reportEvery(reporter, "type method stub creation", i+1, len(methods))
	}

	reporter.Report(100, "type method stub creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}

// TypeMethodImplementation replaces a stub's body with Body, when a prior
// source-translation step populated it. A method with no translated body
// is skipped; its stub keeps raising "not yet implemented".
type TypeMethodImplementation struct{}

func NewTypeMethodImplementation(arg any) (job.Job, error) { return TypeMethodImplementation{}, nil }

func (TypeMethodImplementation) Describe() job.Description {
	return job.Description{Kind: job.OpTypeMethodImplementation, Database: job.DatabasePostgres, FriendlyName: "Implement type methods"}
}

func (TypeMethodImplementation) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	methods, _ := state.Get[[]model.TypeMethod](st, state.KeyTypeMethods)
	outcome := model.NewCreationOutcome[model.TypeMethod](time.Now())

	for i, m := range methods {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		if strings.TrimSpace(m.Body) == "" {
			outcome.AddSkipped(m, "no translated body available; stub retained")
			reportEvery(reporter, "type method implementation", i+1, len(methods))
			continue
		}

		name := typemap.MapIdent(m.Schema) + "." + typemap.FlattenPackageName(m.TypeName, m.MethodName)
		ddl := fmt.Sprintf("CREATE OR REPLACE FUNCTION %s AS $impl$ %s $impl$", name, m.Body)

		err := execDDL(ctx, conns, ddl)
		if err != nil {
			outcome.AddError(m, err.Error(), ddl)
		} else {
			outcome.AddCreated(m)
		}

		reportEvery(reporter, "type method implementation", i+1, len(methods))
	}

	reporter.Report(100, "type method implementation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}
