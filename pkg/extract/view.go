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

// ViewExtractor reads ALL_VIEWS for the view's defining SQL, and
// ALL_TAB_COLUMNS for its projected column list (a view's columns are
// stored there too, with no DATA_DEFAULT). TranslatedSQL is left empty;
// pkg/create's view implementation phase reads it and skips any view
// where it is still empty.
type ViewExtractor struct{}

func NewViewExtractor(arg any) (job.Job, error) { return ViewExtractor{}, nil }

func (ViewExtractor) Describe() job.Description {
	return job.Description{Kind: job.OpViewExtract, Database: job.DatabaseOracle, FriendlyName: "Extract views"}
}

func (ViewExtractor) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	filter := resolveSchemaFilter(cfg, nil)

	views := map[string]*model.View{}
	var order []string

	err := query(ctx, conns, `
		SELECT OWNER, VIEW_NAME, TEXT
		FROM ALL_VIEWS
		ORDER BY OWNER, VIEW_NAME`, nil, func(r rows) error {
		for r.Next() {
			var owner, name, text string
			if err := r.Scan(&owner, &name, &text); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning ALL_VIEWS row", err)
			}
			if !filter.all && !filter.includes(owner) {
				continue
			}
			key := owner + "." + name
			views[key] = &model.View{Schema: owner, ViewName: name, OracleDefinitionSQL: text}
			order = append(order, key)
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	err = query(ctx, conns, `
		SELECT OWNER, TABLE_NAME, COLUMN_NAME, DATA_TYPE
		FROM ALL_TAB_COLUMNS
		WHERE TABLE_NAME IN (SELECT VIEW_NAME FROM ALL_VIEWS WHERE OWNER = ALL_TAB_COLUMNS.OWNER)
		ORDER BY OWNER, TABLE_NAME, COLUMN_ID`, nil, func(r rows) error {
		for r.Next() {
			var owner, name, col, dataType string
			if err := r.Scan(&owner, &name, &col, &dataType); err != nil {
				return migerr.Wrap(migerr.KindSQL, "scanning view column row", err)
			}
			v, ok := views[owner+"."+name]
			if !ok {
				continue
			}
			v.Columns = append(v.Columns, model.ViewColumn{Name: col, DataType: dataType})
		}
		return nil
	})
	if err != nil {
		return job.Failure(asInfo(err))
	}

	result := make([]model.View, 0, len(order))
	for _, key := range order {
		result = append(result, *views[key])
	}

	reporter.Report(100, "view extraction", "")
	state.Put(st, state.KeyViews, result)

	return job.Success(result, map[string]any{"viewCount": len(result)})
}
