// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
)

// SchemaExtractor lists the Oracle schemas in scope for migration, from
// ALL_USERS filtered to non-system accounts.
type SchemaExtractor struct{}

func NewSchemaExtractor(arg any) (job.Job, error) {
	return SchemaExtractor{}, nil
}

func (SchemaExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpSchemaExtract, Database: job.DatabaseOracle, FriendlyName: "Extract schemas"}
}

func (SchemaExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	var schemas []model.Schema

	err := query(ctx, conns, `
		SELECT USERNAME FROM ALL_USERS
		WHERE ORACLE_MAINTAINED = 'N'
		ORDER BY USERNAME`, nil, func(r rows) error {
		for r.Next() {
			var name string
			if err := r.Scan(&name); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_USERS row", err)
			}
			schemas = append(schemas, model.Schema{Name: name})
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	filter := resolveSchemaFilter(cfg, nil)
	if !filter.all {
		filtered := schemas[:0]
		for _, s := range schemas {
			if filter.includes(s.Name) {
				filtered = append(filtered, s)
			}
		}
		schemas = filtered
	}

	reporter.Report(100, "schema extraction", "")
	state.Put(st, state.KeySchemas, schemas)

	return job.Success(schemas, map[string]any{"schemaCount": len(schemas)})
}
