// SPDX-License-Identifier: Apache-2.0

// Package transfer implements the DataTransferEngine: it streams rows
// from Oracle into PostgreSQL table-by-table, using pq.CopyIn for the
// common case and falling back to batched INSERT when a table carries LOB
// columns, isolating a single table's failure from the rest of the batch
// via errgroup.
package transfer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/model"
	"github.com/oragres/migrator/pkg/state"
	"github.com/oragres/migrator/pkg/typemap"
)

const defaultCommitInterval = 10000

// TransferError is a single lost batch within an otherwise-succeeding table
// transfer: the rows between the last commit and the failing statement are
// rolled back together and reported as one entry.
type TransferError struct {
	StartRow int64
	RowCount int64
	Message  string
}

// TableOutcome is the per-table result of a DataTransfer run.
type TableOutcome struct {
	Schema          string
	TableName       string
	SourceRowCount  int64
	TransferredRows int64
	Status          string // "TRANSFERRED" | "PARTIAL" | "SKIPPED" | "ERROR"
	ErrorMessage    string
	Errors          []TransferError
	DurationMs      int64
}

// Engine is the DataTransferEngine.
type Engine struct{}

func NewEngine(arg any) (job.Job, error) { return Engine{}, nil }

func (Engine) Describe() job.Description {
	return job.Description{Kind: job.OpDataTransfer, Database: job.DatabasePostgres, FriendlyName: "Transfer data"}
}

func (e Engine) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	tables, _ := state.Get[[]model.Table](st, state.KeyTables)
	rowCounts, _ := state.Get[[]model.RowCount](st, state.KeyRowCounts)

	countByTable := map[string]model.RowCount{}
	for _, rc := range rowCounts {
		countByTable[rc.Schema+"."+rc.TableName] = rc
	}

	results := make([]TableOutcome, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(2, cfg.WorkerPoolSize))

	var completed int32
	for i, t := range tables {
		i, t := i, t
		g.Go(func() error {
			results[i] = e.transferTable(gctx, conns, cfg, t, countByTable[t.Schema+"."+t.Name])
			completed++
			reporter.Report(int(float64(completed)/float64(len(tables))*100), "data transfer", t.Schema+"."+t.Name)
			return nil
		})
	}
	_ = g.Wait() // per-table errors are captured in results, not propagated

	reporter.Report(100, "data transfer", "")
	state.Put(st, state.KeyTransferResults, results)

	var errCount, partialCount int
	for _, r := range results {
		switch r.Status {
		case "ERROR":
			errCount++
		case "PARTIAL":
			partialCount++
		}
	}

	return job.Success(results, map[string]any{
		"tableCount": len(results), "errors": errCount, "partial": partialCount,
	})
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (e Engine) transferTable(ctx context.Context, conns *dbconn.Provider, cfg config.Config, t model.Table, rc model.RowCount) TableOutcome {
	out := TableOutcome{Schema: t.Schema, TableName: t.Name, SourceRowCount: rc.RowCount}

	if rc.Status == model.RowCountError {
		out.Status = "SKIPPED"
		out.ErrorMessage = "source row count unavailable"
		return out
	}
	if cfg.ExcludeLobData && hasLobColumn(t) {
		out.Status = "SKIPPED"
		out.ErrorMessage = "table excluded: exclude.lob-data is set and table has LOB columns"
		return out
	}

	useCopy := !hasLobColumn(t)

	start := time.Now()
	var transferErr error
	var transferred int64
	var batchErrors []TransferError
	if useCopy {
		transferred, transferErr = e.copyTransfer(ctx, conns, t)
	} else {
		transferred, batchErrors, transferErr = e.insertTransfer(ctx, conns, t, cfg)
	}
	out.DurationMs = time.Since(start).Milliseconds()
	out.TransferredRows = transferred
	out.Errors = batchErrors

	switch {
	case transferErr != nil:
		out.Status = "ERROR"
		out.ErrorMessage = transferErr.Error()
	case len(batchErrors) > 0 || transferred < rc.RowCount:
		out.Status = "PARTIAL"
	default:
		out.Status = "TRANSFERRED"
	}
	return out
}

func hasLobColumn(t model.Table) bool {
	for _, c := range t.Columns {
		switch strings.ToUpper(c.OracleType) {
		case "CLOB", "NCLOB", "BLOB", "LONG", "LONG RAW", "BFILE":
			return true
		}
	}
	return false
}

// copyTransfer streams rows through pq.CopyIn, the fast path for tables
// without LOB columns.
func (e Engine) copyTransfer(ctx context.Context, conns *dbconn.Provider, t model.Table) (int64, error) {
	var transferred int64

	err := conns.WithOracle(ctx, func(ctx context.Context, oracleConn *sql.Conn) error {
		colNames := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			colNames[i] = c.Name
		}
		selectSQL := fmt.Sprintf("SELECT %s FROM %q.%q", strings.Join(quoteAll(colNames), ", "), t.Schema, t.Name)

		srcRows, err := oracleConn.QueryContext(ctx, selectSQL)
		if err != nil {
			return migerr.Wrap(migerr.KindSQL, "querying source rows", err)
		}
		defer srcRows.Close()

		return conns.WithPostgresTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
			pgCols := make([]string, len(t.Columns))
			for i, c := range t.Columns {
				pgCols[i] = typemap.MapIdent(c.Name)
			}
			stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(typemap.MapIdent(t.Schema), typemap.MapIdent(t.Name), pgCols...))
			if err != nil {
				return migerr.Wrap(migerr.KindSQL, "preparing COPY", err)
			}
			defer stmt.Close()

			dest := make([]any, len(t.Columns))
			scanBuf := make([]any, len(t.Columns))
			for i := range dest {
				scanBuf[i] = &dest[i]
			}

			for srcRows.Next() {
				if ctx.Err() != nil {
					return migerr.Wrap(migerr.KindCancelled, "transfer cancelled", ctx.Err())
				}
				if err := srcRows.Scan(scanBuf...); err != nil {
					return migerr.Wrap(migerr.KindSQL, "scanning source row", err)
				}
				if _, err := stmt.ExecContext(ctx, dest...); err != nil {
					return migerr.Wrap(migerr.KindSQL, "appending COPY row", err)
				}
				transferred++
			}
			if err := srcRows.Err(); err != nil {
				return migerr.Wrap(migerr.KindSQL, "iterating source rows", err)
			}
			if _, err := stmt.ExecContext(ctx); err != nil {
				return migerr.Wrap(migerr.KindSQL, "finalizing COPY", err)
			}
			return nil
		})
	})

	return transferred, err
}

// insertTransfer batches plain INSERTs, used for tables with LOB columns.
// Rows commit every cfg.CommitInterval rows (default defaultCommitInterval).
// A row that fails mid-batch rolls back only that batch: the rows since the
// last commit are reported as a TransferError and a fresh transaction picks
// up with the next row, so one bad batch does not cost the whole table. Only
// cursor-level failures (scan, iteration, cancellation) abort the transfer.
func (e Engine) insertTransfer(ctx context.Context, conns *dbconn.Provider, t model.Table, cfg config.Config) (int64, []TransferError, error) {
	var transferred int64
	var batchErrors []TransferError

	colNames := make([]string, len(t.Columns))
	pgCols := make([]string, len(t.Columns))
	placeholders := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colNames[i] = c.Name
		pgCols[i] = typemap.MapIdent(c.Name)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s)",
		typemap.MapIdent(t.Schema), typemap.MapIdent(t.Name), strings.Join(pgCols, ", "), strings.Join(placeholders, ", "))

	commitInterval := int64(cfg.CommitInterval)
	if commitInterval <= 0 {
		commitInterval = defaultCommitInterval
	}

	err := conns.WithOracle(ctx, func(ctx context.Context, oracleConn *sql.Conn) error {
		selectSQL := fmt.Sprintf("SELECT %s FROM %q.%q", strings.Join(quoteAll(colNames), ", "), t.Schema, t.Name)
		srcRows, err := oracleConn.QueryContext(ctx, selectSQL)
		if err != nil {
			return migerr.Wrap(migerr.KindSQL, "querying source rows", err)
		}
		defer srcRows.Close()

		return conns.WithPostgres(ctx, func(ctx context.Context, pgConn *sql.Conn) error {
			dest := make([]any, len(t.Columns))
			scanBuf := make([]any, len(t.Columns))
			for i := range dest {
				scanBuf[i] = &dest[i]
			}

			var tx *sql.Tx
			batchStart := int64(0)
			rowsInBatch := int64(0)

			beginBatch := func() error {
				var err error
				tx, err = pgConn.BeginTx(ctx, nil)
				if err != nil {
					return migerr.Wrap(migerr.KindConnection, "beginning batch transaction", err)
				}
				batchStart = transferred
				rowsInBatch = 0
				return nil
			}

			rollback := func() error {
				if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
					return migerr.Wrap(migerr.KindSQL, "rolling back batch", err)
				}
				return nil
			}

			if err := beginBatch(); err != nil {
				return err
			}

			for srcRows.Next() {
				if ctx.Err() != nil {
					_ = rollback()
					return migerr.Wrap(migerr.KindCancelled, "transfer cancelled", ctx.Err())
				}
				if err := srcRows.Scan(scanBuf...); err != nil {
					_ = rollback()
					return migerr.Wrap(migerr.KindSQL, "scanning source row", err)
				}
				if _, err := tx.ExecContext(ctx, insertSQL, dest...); err != nil {
					if rerr := rollback(); rerr != nil {
						return rerr
					}
					batchErrors = append(batchErrors, TransferError{StartRow: batchStart, RowCount: rowsInBatch, Message: err.Error()})
					if err := beginBatch(); err != nil {
						return err
					}
					continue
				}
				rowsInBatch++
				if rowsInBatch >= commitInterval {
					if cerr := tx.Commit(); cerr != nil {
						if rerr := rollback(); rerr != nil {
							return rerr
						}
						batchErrors = append(batchErrors, TransferError{StartRow: batchStart, RowCount: rowsInBatch, Message: "commit failed: " + cerr.Error()})
					} else {
						transferred += rowsInBatch
					}
					if err := beginBatch(); err != nil {
						return err
					}
				}
			}
			if err := srcRows.Err(); err != nil {
				_ = rollback()
				return migerr.Wrap(migerr.KindSQL, "iterating source rows", err)
			}

			if rowsInBatch == 0 {
				return rollback()
			}
			if cerr := tx.Commit(); cerr != nil {
				if rerr := rollback(); rerr != nil {
					return rerr
				}
				batchErrors = append(batchErrors, TransferError{StartRow: batchStart, RowCount: rowsInBatch, Message: "commit failed: " + cerr.Error()})
				return nil
			}
			transferred += rowsInBatch
			return nil
		})
	})

	return transferred, batchErrors, err
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = fmt.Sprintf("%q", n)
	}
	return out
}
