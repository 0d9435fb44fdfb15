// SPDX-License-Identifier: Apache-2.0

// Package dbconn implements ConnectionProvider: scoped acquisition of
// short-lived connections to Oracle and PostgreSQL, with guaranteed release
// on every exit path. WithPostgresTx retries with backoff when PostgreSQL
// reports lock_not_available (55P03); Oracle access is not retried.
package dbconn

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
	_ "github.com/sijms/go-ora/v2"

	"github.com/oragres/migrator/pkg/migerr"
)

// SQLHandle is the query subset shared by *sql.Conn, *sql.Tx and *sql.DB.
// No Extractor or Creator takes it; they receive the *sql.Conn or *sql.Tx
// that the With* helpers pass in.
type SQLHandle interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	pgLockNotAvailable pq.ErrorCode = "55P03"
	maxBackoffDuration              = 1 * time.Minute
	backoffInterval                 = 1 * time.Second
)

// TestResult is the {connected, connectionTimeMs, databaseProductName,
// databaseProductVersion, message?} shape used by /api/database/test/*.
type TestResult struct {
	Connected           bool   `json:"connected"`
	ConnectionTimeMs    int64  `json:"connectionTimeMs"`
	DatabaseProductName string `json:"databaseProductName"`
	DatabaseProductVersion string `json:"databaseProductVersion"`
	Message             string `json:"message,omitempty"`
}

// Provider is the ConnectionProvider.
type Provider struct {
	oracleDSN   string
	postgresDSN string

	oraclePool   *sql.DB
	postgresPool *sql.DB
}

// New builds a Provider. Connections are opened lazily on first use; New
// itself performs no I/O.
func New(oracleDSN, postgresDSN string) *Provider {
	return &Provider{oracleDSN: oracleDSN, postgresDSN: postgresDSN}
}

func (p *Provider) oracle() (*sql.DB, error) {
	if p.oraclePool == nil {
		db, err := sql.Open("oracle", p.oracleDSN)
		if err != nil {
			return nil, migerr.Wrap(migerr.KindConfig, "failed to open oracle pool", err)
		}
		p.oraclePool = db
	}
	return p.oraclePool, nil
}

func (p *Provider) postgres() (*sql.DB, error) {
	if p.postgresPool == nil {
		db, err := sql.Open("postgres", p.postgresDSN)
		if err != nil {
			return nil, migerr.Wrap(migerr.KindConfig, "failed to open postgres pool", err)
		}
		p.postgresPool = db
	}
	return p.postgresPool, nil
}

// WithOracle performs scoped acquisition of an Oracle connection,
// guaranteeing release on every exit path (success, error, cancellation).
// Oracle connections are read-only in this system, so no
// transaction/autocommit concerns apply here.
func (p *Provider) WithOracle(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	db, err := p.oracle()
	if err != nil {
		return err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return migerr.Wrap(migerr.KindConnection, "acquiring oracle connection", err)
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// WithPostgres performs scoped acquisition of a PostgreSQL connection with
// autocommit on, for pure readers.
func (p *Provider) WithPostgres(ctx context.Context, fn func(ctx context.Context, conn *sql.Conn) error) error {
	db, err := p.postgres()
	if err != nil {
		return err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return migerr.Wrap(migerr.KindConnection, "acquiring postgres connection", err)
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// WithPostgresTx runs fn inside its own `BEGIN; ...; COMMIT;` transaction,
// autocommit off, the mode Creators use for every DDL statement. On error
// the transaction is rolled back.
func (p *Provider) WithPostgresTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	db, err := p.postgres()
	if err != nil {
		return err
	}

	b := backoff.New(maxBackoffDuration, backoffInterval)
	for {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return migerr.Wrap(migerr.KindConnection, "beginning postgres transaction", err)
		}

		err = fn(ctx, tx)
		if err == nil {
			if cerr := tx.Commit(); cerr != nil {
				return migerr.Wrap(migerr.KindSQL, "committing transaction", cerr)
			}
			return nil
		}

		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			return migerr.Wrap(migerr.KindSQL, "rolling back transaction", rerr)
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgLockNotAvailable {
			if sleepErr := sleepCtx(ctx, b.Duration()); sleepErr != nil {
				return sleepErr
			}
			continue
		}

		return err
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return migerr.Wrap(migerr.KindCancelled, "context cancelled while waiting to retry", ctx.Err())
	case <-time.After(d):
		return nil
	}
}

// TestOracle implements GET /api/database/test/oracle.
func (p *Provider) TestOracle(ctx context.Context) TestResult {
	return p.testConnection(ctx, p.WithOracle, "SELECT BANNER FROM V$VERSION WHERE ROWNUM = 1", "Oracle")
}

// TestPostgres implements GET /api/database/test/postgres.
func (p *Provider) TestPostgres(ctx context.Context) TestResult {
	return p.testConnection(ctx, p.WithPostgres, "SELECT version()", "PostgreSQL")
}

func (p *Provider) testConnection(ctx context.Context, with func(context.Context, func(context.Context, *sql.Conn) error) error, versionQuery, productName string) TestResult {
	start := time.Now()
	var version string

	err := with(ctx, func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, versionQuery).Scan(&version)
	})

	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		return TestResult{Connected: false, ConnectionTimeMs: elapsed, Message: err.Error()}
	}

	return TestResult{
		Connected:              true,
		ConnectionTimeMs:       elapsed,
		DatabaseProductName:    productName,
		DatabaseProductVersion: version,
	}
}

// Close releases both connection pools.
func (p *Provider) Close() error {
	var errs []error
	if p.oraclePool != nil {
		if err := p.oraclePool.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.postgresPool != nil {
		if err := p.postgresPool.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
