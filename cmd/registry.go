// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/oragres/migrator/pkg/compat"
	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/create"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/extract"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/state"
	"github.com/oragres/migrator/pkg/transfer"
)

// NewRegistry builds the job.Registry populated with every Job
// factory this system knows about, keyed by (database, operationKind).
// This is the static dispatch table the process installs once at startup.
func NewRegistry() *job.Registry {
	r := job.NewRegistry()

	r.Register(job.DatabaseOracle, job.OpTestConnections, testConnectionsFactory)

	r.Register(job.DatabaseOracle, job.OpSchemaExtract, extract.NewSchemaExtractor)
	r.Register(job.DatabaseOracle, job.OpSynonymExtract, extract.NewSynonymExtractor)
	r.Register(job.DatabaseOracle, job.OpObjectTypeExtract, extract.NewObjectTypeExtractor)
	r.Register(job.DatabaseOracle, job.OpSequenceExtract, extract.NewSequenceExtractor)
	r.Register(job.DatabaseOracle, job.OpTableMetadataExtract, extract.NewTableExtractor)
	r.Register(job.DatabaseOracle, job.OpRowCountExtract, extract.NewRowCountExtractor)
	r.Register(job.DatabaseOracle, job.OpConstraintExtract, extract.NewConstraintExtractor)
	r.Register(job.DatabaseOracle, job.OpViewExtract, extract.NewViewExtractor)
	r.Register(job.DatabaseOracle, job.OpFunctionExtract, extract.NewFunctionExtractor)
	r.Register(job.DatabaseOracle, job.OpTypeMethodExtract, extract.NewTypeMethodExtractor)
	r.Register(job.DatabaseOracle, job.OpTriggerExtract, extract.NewTriggerExtractor)

	r.Register(job.DatabasePostgres, job.OpSchemaCreate, create.NewSchemaCreator)
	r.Register(job.DatabasePostgres, job.OpObjectTypeCreate, create.NewObjectTypeCreator)
	r.Register(job.DatabasePostgres, job.OpSequenceCreate, create.NewSequenceCreator)
	r.Register(job.DatabasePostgres, job.OpTableCreate, create.NewTableCreator)
	r.Register(job.DatabasePostgres, job.OpConstraintCreate, create.NewConstraintCreator)
	r.Register(job.DatabasePostgres, job.OpFKIndexCreate, create.NewFKIndexCreator)
	r.Register(job.DatabasePostgres, job.OpViewStubCreate, create.NewViewStubCreator)
	r.Register(job.DatabasePostgres, job.OpViewImplementation, create.NewViewImplementationCreator)
	r.Register(job.DatabasePostgres, job.OpViewVerify, create.NewViewVerifier)
	r.Register(job.DatabasePostgres, job.OpFunctionStubCreate, create.NewFunctionStubCreator)
	r.Register(job.DatabasePostgres, job.OpTypeMethodStubCreate, create.NewTypeMethodStubCreator)
	r.Register(job.DatabasePostgres, job.OpTypeMethodImplementation, create.NewTypeMethodImplementation)
	r.Register(job.DatabasePostgres, job.OpTriggerImplementation, create.NewTriggerImplementation)
	r.Register(job.DatabasePostgres, job.OpTriggerVerify, create.NewTriggerVerify)
	r.Register(job.DatabasePostgres, job.OpSynonymReplacementViews, create.NewSynonymReplacementViewCreator)

	r.Register(job.DatabasePostgres, job.OpDataTransfer, transfer.NewEngine)

	r.Register(job.DatabasePostgres, job.OpOracleCompatInstall, compat.NewInstaller)
	r.Register(job.DatabasePostgres, job.OpOracleCompatVerify, compat.NewVerifier)

	return r
}

// testConnectionsJob wraps dbconn.Provider's TestOracle/TestPostgres as a
// single Job so the REST surface's connection check shares the same
// submit/poll contract as every other operation.
type testConnectionsJob struct{}

func testConnectionsFactory(arg any) (job.Job, error) { return testConnectionsJob{}, nil }

func (testConnectionsJob) Describe() job.Description {
	return job.Description{Kind: job.OpTestConnections, Database: job.DatabaseOracle, FriendlyName: "Test database connections"}
}

func (testConnectionsJob) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	reporter.Report(10, "testing oracle connection", "")
	oracleResult := conns.TestOracle(ctx)

	reporter.Report(60, "testing postgres connection", "")
	postgresResult := conns.TestPostgres(ctx)

	reporter.Report(100, "connection tests complete", "")

	payload := map[string]dbconn.TestResult{"oracle": oracleResult, "postgres": postgresResult}
	successful := oracleResult.Connected && postgresResult.Connected
	return job.Result{Successful: successful, Payload: payload, Summary: payload}
}
