// SPDX-License-Identifier: Apache-2.0

package create

import (
	"context"
	"database/sql"
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

// TriggerImplementation installs a trigger function plus its CREATE TRIGGER
// binding. Body is assumed to already be PL/pgSQL-compatible text (full
// PL/SQL-to-PL/pgSQL transpilation is out of scope; a trigger with an
// empty body is skipped.
type TriggerImplementation struct{}

func NewTriggerImplementation(arg any) (job.Job, error) { return TriggerImplementation{}, nil }

func (TriggerImplementation) Describe() job.Description {
	return job.Description{Kind: job.OpTriggerImplementation, Database: job.DatabasePostgres, FriendlyName: "Implement triggers"}
}

func (TriggerImplementation) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	triggers, _ := state.Get[[]model.Trigger](st, state.KeyTriggers)
	outcome := model.NewCreationOutcome[model.Trigger](time.Now())

	for i, t := range triggers {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		if strings.TrimSpace(t.Body) == "" {
			outcome.AddSkipped(t, "no trigger body available")
			reportEvery(reporter, "trigger implementation", i+1, len(triggers))
			continue
		}

		funcName := typemap.MapIdent(t.Schema) + "." + typemap.MapIdent(t.TriggerName+"_fn")
		funcDDL := fmt.Sprintf(
			"CREATE OR REPLACE FUNCTION %s() RETURNS trigger LANGUAGE plpgsql AS $trig$ BEGIN %s RETURN NEW; END; $trig$",
			funcName, t.Body,
		)
		if err := execDDL(ctx, conns, funcDDL); err != nil {
			outcome.AddError(t, err.Error(), funcDDL)
			reportEvery(reporter, "trigger implementation", i+1, len(triggers))
			continue
		}

		triggerDDL := fmt.Sprintf("CREATE TRIGGER %s %s %s ON %s.%s FOR EACH %s EXECUTE FUNCTION %s()",
			typemap.MapIdent(t.TriggerName), string(t.TriggerType), t.Event,
			typemap.MapIdent(t.Schema), typemap.MapIdent(t.TableName),
			triggerForEach(t.TriggerLevel), funcName)

		if err := execDDL(ctx, conns, triggerDDL); err != nil {
			if reason, ok := classify(err); ok {
				outcome.AddSkipped(t, reason)
			} else {
				outcome.AddError(t, err.Error(), triggerDDL)
			}
			reportEvery(reporter, "trigger implementation", i+1, len(triggers))
			continue
		}

		outcome.AddCreated(t)
		reportEvery(reporter, "trigger implementation", i+1, len(triggers))
	}

	reporter.Report(100, "trigger implementation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}

func triggerForEach(level model.TriggerLevel) string {
	if level == model.TriggerRow {
		return "ROW"
	}
	return "STATEMENT"
}

// TriggerVerify confirms every implemented trigger exists in pg_trigger.
type TriggerVerify struct{}

func NewTriggerVerify(arg any) (job.Job, error) { return TriggerVerify{}, nil }

func (TriggerVerify) Describe() job.Description {
	return job.Description{Kind: job.OpTriggerVerify, Database: job.DatabasePostgres, FriendlyName: "Verify triggers"}
}

func (TriggerVerify) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	triggers, _ := state.Get[[]model.Trigger](st, state.KeyTriggers)
	outcome := model.NewCreationOutcome[model.Trigger](time.Now())

	for i, t := range triggers {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		verifySQL := `
			SELECT EXISTS (
				SELECT 1 FROM pg_trigger tg
				JOIN pg_class c ON c.oid = tg.tgrelid
				JOIN pg_namespace n ON n.oid = c.relnamespace
				WHERE n.nspname = $1 AND c.relname = $2 AND tg.tgname = $3
			)`

		var exists bool
		err := conns.WithPostgres(ctx, func(ctx context.Context, conn *sql.Conn) error {
			return conn.QueryRowContext(ctx, verifySQL,
				typemap.MapIdent(t.Schema), typemap.MapIdent(t.TableName), typemap.MapIdent(t.TriggerName)).Scan(&exists)
		})

		switch {
		case err != nil:
			outcome.AddError(t, err.Error(), verifySQL)
		case !exists:
			outcome.AddError(t, "trigger not found after implementation", verifySQL)
		default:
			outcome.AddCreated(t)
		}

		reportEvery(reporter, "trigger verification", i+1, len(triggers))
	}

	reporter.Report(100, "trigger verification", "")
	return job.Success(outcome, map[string]any{
		"verified": outcome.CreatedCount(), "missing": outcome.ErrorCount(),
	})
}
