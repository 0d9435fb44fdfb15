// SPDX-License-Identifier: Apache-2.0

// Package orchestrator implements the Orchestrator: a fixed,
// ordered pipeline of phases, each one a JobService submission, with an
// abort policy evaluated after every phase. There is no rollback of
// already-executed phases: each phase is independently idempotent via the
// Creators' conflict classification, so re-running the pipeline after a
// partial failure is the recovery path rather than an automatic undo.
package orchestrator

import (
	"context"
	"time"

	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
)

// AbortPolicy decides whether a phase's outcome should stop the pipeline.
type AbortPolicy string

const (
	// AbortOnAnyError stops the pipeline the moment a phase's job fails or
	// reports a single CreationOutcome error.
	AbortOnAnyError AbortPolicy = "abort-on-any-error"
	// AbortOnTotalFailure only stops when a phase's job itself fails
	// (migerr-level failure); per-item CreationOutcome errors are logged
	// and the pipeline proceeds.
	AbortOnTotalFailure AbortPolicy = "abort-on-total-failure"
)

// Phase is one step of the full migration pipeline. RequireNonZero is the
// phase's own abort declaration, independent of the Orchestrator-wide
// AbortPolicy: when set, the Orchestrator fails the migration if the phase
// completes without error but its item count is zero (e.g. a schema
// extraction that finds no schemas usually means a misconfigured
// connection, not a legitimately empty migration).
type Phase struct {
	Kind           job.OperationKind
	Database       job.DatabaseTag
	Arg            any
	RequireNonZero bool
}

// Pipeline lists every phase of the migration in its required order.
func Pipeline() []Phase {
	return []Phase{
		{Kind: job.OpTestConnections, Database: job.DatabaseOracle},
		{Kind: job.OpSchemaExtract, Database: job.DatabaseOracle, RequireNonZero: true},
		{Kind: job.OpSchemaCreate, Database: job.DatabasePostgres},
		{Kind: job.OpSynonymExtract, Database: job.DatabaseOracle},
		{Kind: job.OpObjectTypeExtract, Database: job.DatabaseOracle},
		{Kind: job.OpObjectTypeCreate, Database: job.DatabasePostgres},
		{Kind: job.OpSequenceExtract, Database: job.DatabaseOracle},
		{Kind: job.OpSequenceCreate, Database: job.DatabasePostgres},
		{Kind: job.OpTableMetadataExtract, Database: job.DatabaseOracle, RequireNonZero: true},
		{Kind: job.OpTableCreate, Database: job.DatabasePostgres},
		{Kind: job.OpRowCountExtract, Database: job.DatabaseOracle},
		{Kind: job.OpDataTransfer, Database: job.DatabasePostgres},
		{Kind: job.OpConstraintExtract, Database: job.DatabaseOracle},
		{Kind: job.OpConstraintCreate, Database: job.DatabasePostgres},
		{Kind: job.OpFKIndexCreate, Database: job.DatabasePostgres},
		{Kind: job.OpViewExtract, Database: job.DatabaseOracle},
		{Kind: job.OpViewStubCreate, Database: job.DatabasePostgres},
		{Kind: job.OpFunctionExtract, Database: job.DatabaseOracle},
		{Kind: job.OpFunctionStubCreate, Database: job.DatabasePostgres},
		{Kind: job.OpTypeMethodExtract, Database: job.DatabaseOracle},
		{Kind: job.OpTypeMethodStubCreate, Database: job.DatabasePostgres},
		{Kind: job.OpTriggerExtract, Database: job.DatabaseOracle},
		{Kind: job.OpOracleCompatInstall, Database: job.DatabasePostgres},
		{Kind: job.OpOracleCompatVerify, Database: job.DatabasePostgres},
		{Kind: job.OpViewImplementation, Database: job.DatabasePostgres},
		{Kind: job.OpViewVerify, Database: job.DatabasePostgres},
		{Kind: job.OpTypeMethodImplementation, Database: job.DatabasePostgres},
		{Kind: job.OpTriggerImplementation, Database: job.DatabasePostgres},
		{Kind: job.OpTriggerVerify, Database: job.DatabasePostgres},
		{Kind: job.OpSynonymReplacementViews, Database: job.DatabasePostgres},
	}
}

// PhaseOutcome records what happened when a phase ran to completion.
type PhaseOutcome struct {
	Phase     Phase
	JobID     job.ID
	State     job.State
	Summary   job.Summary
	StartedAt time.Time
	EndedAt   time.Time
}

// Orchestrator drives Pipeline() through a JobService, waiting for each
// phase's terminal state before submitting the next.
type Orchestrator struct {
	svc    *job.Service
	policy AbortPolicy
	poll   time.Duration
}

// New builds an Orchestrator. poll controls how often it checks a running
// phase's status; production callers should keep this well under a second
// since JobService state transitions are in-memory and cheap to observe.
func New(svc *job.Service, policy AbortPolicy, poll time.Duration) *Orchestrator {
	if poll <= 0 {
		poll = 200 * time.Millisecond
	}
	return &Orchestrator{svc: svc, policy: policy, poll: poll}
}

// Run executes every phase of Pipeline() in order, returning as soon as
// the abort policy is triggered or the pipeline completes.
func (o *Orchestrator) Run(ctx context.Context) ([]PhaseOutcome, error) {
	var outcomes []PhaseOutcome

	for _, phase := range Pipeline() {
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		outcome, err := o.runPhase(ctx, phase)
		outcomes = append(outcomes, outcome)
		if err != nil {
			return outcomes, err
		}

		if o.shouldAbort(outcome) {
			return outcomes, migerr.PhaseFailedError{Phase: string(phase.Kind), Reason: "abort policy triggered"}
		}
	}

	return outcomes, nil
}

func (o *Orchestrator) runPhase(ctx context.Context, phase Phase) (PhaseOutcome, error) {
	started := time.Now()

	id, err := o.svc.Submit(phase.Kind, phase.Database, phase.Arg)
	if err != nil {
		return PhaseOutcome{Phase: phase, StartedAt: started, EndedAt: time.Now()}, err
	}

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	for {
		desc, err := o.svc.GetStatus(id)
		if err != nil {
			return PhaseOutcome{Phase: phase, JobID: id, StartedAt: started, EndedAt: time.Now()}, err
		}
		if desc.State.IsTerminal() {
			return PhaseOutcome{
				Phase: phase, JobID: id, State: desc.State,
				Summary: job.Summarize(desc), StartedAt: started, EndedAt: time.Now(),
			}, nil
		}

		select {
		case <-ctx.Done():
			o.svc.Cancel(id)
			return PhaseOutcome{Phase: phase, JobID: id, StartedAt: started, EndedAt: time.Now()}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) shouldAbort(outcome PhaseOutcome) bool {
	if outcome.State == job.StateFailed || outcome.State == job.StateCancelled {
		return true
	}
	if outcome.Phase.RequireNonZero && outcome.Summary.ItemCount == 0 {
		return true
	}
	if o.policy == AbortOnAnyError && outcome.Summary.ErrorCount > 0 {
		return true
	}
	return false
}
