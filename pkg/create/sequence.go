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

// SequenceCreator emits CREATE SEQUENCE statements preserving Oracle's
// current value, bounds, increment and cycle flag.
type SequenceCreator struct{}

func NewSequenceCreator(arg any) (job.Job, error) { return SequenceCreator{}, nil }

func (SequenceCreator) Describe() job.Description {
	return job.Description{Kind: job.OpSequenceCreate, Database: job.DatabasePostgres, FriendlyName: "Create sequences"}
}

func (SequenceCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	sequences, _ := state.Get[[]model.Sequence](st, state.KeySequences)
	outcome := model.NewCreationOutcome[model.Sequence](time.Now())

	for i, s := range sequences {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		cycle := "NO CYCLE"
		if s.Cycle {
			cycle = "CYCLE"
		}
		ddl := fmt.Sprintf(
			"CREATE SEQUENCE %s.%s START WITH %d MINVALUE %d MAXVALUE %d INCREMENT BY %d CACHE %d %s",
			typemap.MapIdent(s.Schema), typemap.MapIdent(s.Name), s.StartValue, s.MinValue, s.MaxValue, s.Increment, maxInt64(s.CacheSize, 1), cycle,
		)
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

		reportEvery(reporter, "sequence creation", i+1, len(sequences))
	}

	reporter.Report(100, "sequence creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
