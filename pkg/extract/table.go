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

// TableExtractor reads ALL_TAB_COLUMNS joined against ALL_TABLES for
// tablespace, populating model.Table without constraints.
type TableExtractor struct{}

func NewTableExtractor(arg any) (job.Job, error) { return TableExtractor{}, nil }

func (TableExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpTableMetadataExtract, Database: job.DatabaseOracle, FriendlyName: "Extract table metadata"}
}

func (TableExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	tables := map[string]*model.Table{}
	var order []string

	err := query(ctx, conns, `
		SELECT OWNER, TABLE_NAME, NVL(TABLESPACE_NAME, '')
		FROM ALL_TABLES
		ORDER BY OWNER, TABLE_NAME`, nil, func(r rows) error {
		for r.Next() {
			var owner, name, tablespace string
			if err := r.Scan(&owner, &name, &tablespace); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_TABLES row", err)
			}
			if !filter.all && !filter.includes(owner) {
				continue
			}
			key := owner + "." + name
			tables[key] = &model.Table{Schema: owner, Name: name, Tablespace: tablespace}
			order = append(order, key)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	err = query(ctx, conns, `
		SELECT OWNER, TABLE_NAME, COLUMN_NAME, DATA_TYPE, DATA_LENGTH, DATA_PRECISION,
		       DATA_SCALE, CHAR_USED, NULLABLE, DATA_DEFAULT, COLUMN_ID
		FROM ALL_TAB_COLUMNS
		ORDER BY OWNER, TABLE_NAME, COLUMN_ID`, nil, func(r rows) error {
		for r.Next() {
			var owner, name string
			var col model.Column
			var charUsed, nullable *string
			var dataDefault *string
			if err := r.Scan(&owner, &name, &col.Name, &col.OracleType, &col.Length, &col.Precision,
				&col.Scale, &charUsed, &nullable, &dataDefault, &col.PositionOrdinal); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_TAB_COLUMNS row", err)
			}
			t, ok := tables[owner+"."+name]
			if !ok {
				continue
			}
			if charUsed != nil {
				col.CharUsed = *charUsed
			}
			col.Nullable = nullable == nil || *nullable == "Y"
			col.DefaultExpression = dataDefault
			t.Columns = append(t.Columns, col)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	result := make([]model.Table, 0, len(order))
	for _, key := range order {
		result = append(result, *tables[key])
	}

	reporter.Report(100, "table metadata extraction", "")
	state.Put(st, state.KeyTables, result)

	return job.Success(result, map[string]any{"tableCount": len(result)})
}
