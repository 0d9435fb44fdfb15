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

// SynonymReplacementViewCreator emits `CREATE VIEW owner.synonym AS SELECT *
// FROM target_owner.target_name` for each local synonym: PostgreSQL has no
// native synonym object, so a same-named view is the idiomatic substitute
//. Synonyms over a database link are out of scope (the
// linked database is never migrated) and are skipped rather than failed.
type SynonymReplacementViewCreator struct{}

func NewSynonymReplacementViewCreator(arg any) (job.Job, error) {
	return SynonymReplacementViewCreator{}, nil
}

func (SynonymReplacementViewCreator) Describe() job.Description {
	return job.Description{Kind: job.OpSynonymReplacementViews, Database: job.DatabasePostgres, FriendlyName: "Create synonym replacement views"}
}

func (SynonymReplacementViewCreator) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	synonyms, _ := state.Get[[]model.Synonym](st, state.KeySynonyms)
	outcome := model.NewCreationOutcome[model.Synonym](time.Now())

	for i, s := range synonyms {
		if ctx.Err() != nil {
			return job.Failure(cancelled(ctx))
		}

		if s.IsRemote() {
			outcome.AddSkipped(s, "synonym targets a remote database link; out of migration scope")
			reportEvery(reporter, "synonym replacement view creation", i+1, len(synonyms))
			continue
		}

		ddl := fmt.Sprintf("CREATE VIEW %s.%s AS SELECT * FROM %s.%s",
			typemap.MapIdent(s.Owner), typemap.MapIdent(s.SynonymName),
			typemap.MapIdent(s.TargetOwner), typemap.MapIdent(s.TargetName))

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

		reportEvery(reporter, "synonym replacement view creation", i+1, len(synonyms))
	}

	reporter.Report(100, "synonym replacement view creation", "")
	return job.Success(outcome, map[string]any{
		"created": outcome.CreatedCount(), "skipped": outcome.SkippedCount(), "errors": outcome.ErrorCount(),
	})
}
