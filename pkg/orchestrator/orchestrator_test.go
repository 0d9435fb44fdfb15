// SPDX-License-Identifier: Apache-2.0

package orchestrator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/orchestrator"
	"github.com/oragres/migrator/pkg/state"
)

type scriptedJob struct {
	result job.Result
}

func (scriptedJob) Describe() job.Description {
	return job.Description{Kind: "SCRIPTED", Database: job.DatabaseOracle, FriendlyName: "scripted"}
}

func (s scriptedJob) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	reporter.Report(100, "done", "")
	return s.result
}

func TestPipelineListsEveryPhaseExactlyOnce(t *testing.T) {
	t.Parallel()

	phases := orchestrator.Pipeline()
	seen := make(map[job.OperationKind]bool)
	for _, p := range phases {
		assert.Falsef(t, seen[p.Kind], "phase %s listed more than once", p.Kind)
		seen[p.Kind] = true
	}
	assert.True(t, seen[job.OpTestConnections])
	assert.True(t, seen[job.OpDataTransfer])
	assert.True(t, seen[job.OpSynonymReplacementViews], "pipeline should include the synonym replacement views phase")

	assert.Equal(t, job.OpTestConnections, phases[0].Kind, "connection check must run first")
}

func TestPipelineOrdersExtractBeforeCreate(t *testing.T) {
	t.Parallel()

	phases := orchestrator.Pipeline()
	index := make(map[job.OperationKind]int)
	for i, p := range phases {
		index[p.Kind] = i
	}

	assert.Less(t, index[job.OpSchemaExtract], index[job.OpSchemaCreate])
	assert.Less(t, index[job.OpTableMetadataExtract], index[job.OpTableCreate])
	assert.Less(t, index[job.OpTableCreate], index[job.OpDataTransfer])
	assert.Less(t, index[job.OpDataTransfer], index[job.OpConstraintCreate])
	assert.Less(t, index[job.OpConstraintCreate], index[job.OpFKIndexCreate])
	assert.Less(t, index[job.OpViewStubCreate], index[job.OpViewImplementation])
	assert.Less(t, index[job.OpOracleCompatInstall], index[job.OpViewImplementation],
		"compatibility shims must exist before views/functions that may depend on them are implemented")
}

func newOrchestratorHarness(t *testing.T, kind job.OperationKind, results map[job.OperationKind]job.Result, policy orchestrator.AbortPolicy) (*job.Service, *orchestrator.Orchestrator) {
	t.Helper()

	reg := job.NewRegistry()
	for _, phase := range orchestrator.Pipeline() {
		result := results[phase.Kind]
		reg.Register(phase.Database, phase.Kind, func(arg any) (job.Job, error) {
			return scriptedJob{result: result}, nil
		})
	}

	svc := job.NewService(reg, state.New(), dbconn.New("", ""), config.NewStore(), job.WithPoolSize(4))
	t.Cleanup(svc.Shutdown)

	orch := orchestrator.New(svc, policy, 5*time.Millisecond)
	return svc, orch
}

func TestOrchestratorRunsAllPhasesOnSuccess(t *testing.T) {
	t.Parallel()

	results := map[job.OperationKind]job.Result{}
	for _, p := range orchestrator.Pipeline() {
		if p.RequireNonZero {
			results[p.Kind] = job.Success([]string{"item"}, nil)
		} else {
			results[p.Kind] = job.Success(nil, nil)
		}
	}

	_, orch := newOrchestratorHarness(t, "", results, orchestrator.AbortOnTotalFailure)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := orch.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, outcomes, len(orchestrator.Pipeline()))
	for _, o := range outcomes {
		assert.Equal(t, job.StateCompleted, o.State)
	}
}

func TestOrchestratorAbortsWhenRequireNonZeroPhaseReturnsNoItems(t *testing.T) {
	t.Parallel()

	phases := orchestrator.Pipeline()
	var gated job.OperationKind
	for _, p := range phases {
		if p.RequireNonZero {
			gated = p.Kind
			break
		}
	}
	require.NotEmpty(t, gated, "pipeline must declare at least one requireNonZero phase")

	results := map[job.OperationKind]job.Result{}
	for _, p := range phases {
		if p.Kind == gated {
			results[p.Kind] = job.Success([]string{}, nil)
		} else {
			results[p.Kind] = job.Success(nil, nil)
		}
	}

	_, orch := newOrchestratorHarness(t, "", results, orchestrator.AbortOnTotalFailure)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := orch.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, job.StateCompleted, outcomes[len(outcomes)-1].State, "the gated phase itself completes; the orchestrator aborts only after inspecting its zero item count")
}

func TestOrchestratorAbortOnTotalFailureStopsAtFailedPhase(t *testing.T) {
	t.Parallel()

	phases := orchestrator.Pipeline()
	failAt := phases[2].Kind

	results := map[job.OperationKind]job.Result{}
	for _, p := range phases {
		if p.Kind == failAt {
			results[p.Kind] = job.Failure(nil)
		} else if p.RequireNonZero {
			results[p.Kind] = job.Success([]string{"item"}, nil)
		} else {
			results[p.Kind] = job.Success(nil, nil)
		}
	}

	_, orch := newOrchestratorHarness(t, "", results, orchestrator.AbortOnTotalFailure)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := orch.Run(ctx)
	require.Error(t, err)
	assert.Len(t, outcomes, 3, "pipeline must stop immediately after the failed phase")
	assert.Equal(t, job.StateFailed, outcomes[2].State)
}

func TestOrchestratorAbortOnAnyErrorStopsOnPerItemErrors(t *testing.T) {
	t.Parallel()

	phases := orchestrator.Pipeline()
	flakyAt := phases[1].Kind

	results := map[job.OperationKind]job.Result{}
	for _, p := range phases {
		if p.Kind == flakyAt {
			results[p.Kind] = job.Success(flakySummary{errorCount: 1}, nil)
		} else {
			results[p.Kind] = job.Success(nil, nil)
		}
	}

	_, orch := newOrchestratorHarness(t, "", results, orchestrator.AbortOnAnyError)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := orch.Run(ctx)
	require.Error(t, err)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, 1, outcomes[1].Summary.ErrorCount)
}

type flakySummary struct {
	errorCount int
}

func (f flakySummary) CreatedCount() int { return 0 }
func (f flakySummary) SkippedCount() int { return 0 }
func (f flakySummary) ErrorCount() int   { return f.errorCount }

func TestOrchestratorStopsOnContextCancellation(t *testing.T) {
	t.Parallel()

	started := make(chan struct{}, 1)
	reg := job.NewRegistry()
	phases := orchestrator.Pipeline()
	reg.Register(phases[0].Database, phases[0].Kind, func(arg any) (job.Job, error) {
		return blockingJob{started: started}, nil
	})
	for _, p := range phases[1:] {
		reg.Register(p.Database, p.Kind, func(arg any) (job.Job, error) {
			return scriptedJob{result: job.Success(nil, nil)}, nil
		})
	}

	svc := job.NewService(reg, state.New(), dbconn.New("", ""), config.NewStore(), job.WithPoolSize(4))
	t.Cleanup(svc.Shutdown)

	orch := orchestrator.New(svc, orchestrator.AbortOnTotalFailure, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	outcomes, err := orch.Run(ctx)
	require.Error(t, err)
	assert.Len(t, outcomes, 1)
}

type blockingJob struct {
	started chan struct{}
}

func (blockingJob) Describe() job.Description {
	return job.Description{Kind: "BLOCKING", Database: job.DatabaseOracle, FriendlyName: "blocking"}
}

func (b blockingJob) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	b.started <- struct{}{}
	<-ctx.Done()
	return job.Failure(nil)
}
