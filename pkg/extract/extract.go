// SPDX-License-Identifier: Apache-2.0

// Package extract implements the Extractors: one Job per Oracle object
// kind, each reading a dictionary view (ALL_TAB_COLUMNS, ALL_CONSTRAINTS,
// ALL_VIEWS, ...) through the ConnectionProvider and publishing a
// database-agnostic snapshot into the StateStore.
package extract

import (
	"context"
	"database/sql"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
)

// schemaFilter is the set of Oracle schema names in scope, honoring
// do.all-schemas / do.only-test-schema. When all is true, schemas is nil
// and no restriction applies; callers check all first.
type schemaFilter struct {
	all     bool
	schemas []string
}

func resolveSchemaFilter(cfg config.Config, knownSchemas []string) schemaFilter {
	if cfg.DoAllSchemas || cfg.DoOnlyTestSchema == "" {
		return schemaFilter{all: true}
	}
	return schemaFilter{schemas: []string{cfg.DoOnlyTestSchema}}
}

func (f schemaFilter) includes(schema string) bool {
	if f.all {
		return true
	}
	for _, s := range f.schemas {
		if s == schema {
			return true
		}
	}
	return false
}

// rows is the minimal surface extractors need from *sql.Rows, narrowed for
// readability at call sites.
type rows = *sql.Rows

func query(ctx context.Context, conns *dbconn.Provider, sqlText string, args []any, scan func(rows) error) error {
	return conns.WithOracle(ctx, func(ctx context.Context, conn *sql.Conn) error {
		r, err := conn.QueryContext(ctx, sqlText, args...)
		if err != nil {
			return migerr.Wrap(migerr.KindSQL, "querying oracle dictionary", err)
		}
		defer r.Close()

		if err := scan(r); err != nil {
			return err
		}
		if err := r.Err(); err != nil {
			return migerr.Wrap(migerr.KindSQL, "iterating oracle dictionary rows", err)
		}
		return nil
	})
}

// asInfo recovers the *migerr.Info that query always produces, falling back
// to a generic wrap for any error that somehow bypassed it.
func asInfo(err error) *migerr.Info {
	if info, ok := err.(*migerr.Info); ok {
		return info
	}
	return migerr.Wrap(migerr.KindSQL, "extraction failed", err)
}

// reportEvery emits a progress update once per interval items, plus a final
// 100% update, matching the "at least once per chunk" contract.
func reportEvery(reporter job.Reporter, task string, processed, total, interval int) {
	if total == 0 {
		reporter.Report(100, task, "no objects found")
		return
	}
	if processed%interval == 0 || processed == total {
		pct := int(float64(processed) / float64(total) * 100)
		reporter.Report(pct, task, "")
	}
}
