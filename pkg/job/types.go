// SPDX-License-Identifier: Apache-2.0

// Package job implements the asynchronous job subsystem: the Job
// abstraction, the Registry dispatch table, the Service worker pool, and
// the result Summarizer.
//
// This is the core of the system: every migration phase, extractor and
// creator in the rest of this module is driven exclusively through this
// package's Job/JobService contract, never invoked directly.
package job

import (
	"time"

	"github.com/oragres/migrator/pkg/migerr"
)

// ID is an opaque, globally-unique (within a process run) job identifier.
type ID string

// DatabaseTag distinguishes which database a job acts against.
type DatabaseTag string

const (
	DatabaseOracle   DatabaseTag = "oracle"
	DatabasePostgres DatabaseTag = "postgres"
)

// State is one of the five states a job moves through. PENDING -> RUNNING
// -> {COMPLETED, FAILED, CANCELLED}. Terminal states are immutable.
// CANCELLED is reachable from PENDING or RUNNING only.
type State string

const (
	StatePending   State = "PENDING"
	StateRunning   State = "RUNNING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
	StateCancelled State = "CANCELLED"
)

// IsTerminal reports whether s is one of COMPLETED/FAILED/CANCELLED.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// OperationKind enumerates every phase of the migration pipeline. It
// doubles as the Registry dispatch key alongside DatabaseTag.
type OperationKind string

const (
	OpSchemaExtract               OperationKind = "SCHEMA_EXTRACT"
	OpSchemaCreate                OperationKind = "SCHEMA_CREATE"
	OpSynonymExtract              OperationKind = "SYNONYM_EXTRACT"
	OpSynonymReplacementViews     OperationKind = "SYNONYM_REPLACEMENT_VIEWS"
	OpObjectTypeExtract           OperationKind = "OBJECT_TYPE_EXTRACT"
	OpObjectTypeCreate            OperationKind = "OBJECT_TYPE_CREATE"
	OpSequenceExtract             OperationKind = "SEQUENCE_EXTRACT"
	OpSequenceCreate              OperationKind = "SEQUENCE_CREATE"
	OpTableMetadataExtract        OperationKind = "TABLE_METADATA_EXTRACT"
	OpTableCreate                 OperationKind = "TABLE_CREATE"
	OpRowCountExtract             OperationKind = "ROW_COUNT_EXTRACT"
	OpDataTransfer                OperationKind = "DATA_TRANSFER"
	OpConstraintExtract           OperationKind = "CONSTRAINT_EXTRACT"
	OpConstraintCreate            OperationKind = "CONSTRAINT_CREATE"
	OpFKIndexCreate               OperationKind = "FK_INDEX_CREATE"
	OpViewExtract                 OperationKind = "VIEW_EXTRACT"
	OpViewStubCreate              OperationKind = "VIEW_STUB_CREATE"
	OpViewImplementation          OperationKind = "VIEW_IMPLEMENTATION"
	OpViewVerify                  OperationKind = "VIEW_VERIFY"
	OpFunctionExtract             OperationKind = "FUNCTION_EXTRACT"
	OpFunctionStubCreate          OperationKind = "FUNCTION_STUB_CREATE"
	OpTypeMethodExtract           OperationKind = "TYPE_METHOD_EXTRACT"
	OpTypeMethodStubCreate        OperationKind = "TYPE_METHOD_STUB_CREATE"
	OpTypeMethodImplementation    OperationKind = "TYPE_METHOD_IMPLEMENTATION"
	OpTriggerExtract              OperationKind = "TRIGGER_EXTRACT"
	OpTriggerImplementation       OperationKind = "TRIGGER_IMPLEMENTATION"
	OpTriggerVerify               OperationKind = "TRIGGER_VERIFY"
	OpOracleCompatInstall         OperationKind = "ORACLE_COMPAT_INSTALL"
	OpOracleCompatVerify          OperationKind = "ORACLE_COMPAT_VERIFY"
	OpTestConnections             OperationKind = "TEST_CONNECTIONS"
	OpFullMigration               OperationKind = "FULL_MIGRATION"
)

// Progress is the {percentage, currentTask, details} triple reported at
// least once per chunk of work.
type Progress struct {
	Percentage  int
	CurrentTask string
	Details     string
}

// Descriptor is the full record of a submitted job.
type Descriptor struct {
	ID          ID
	Kind        OperationKind
	Database    DatabaseTag
	State       State
	Progress    Progress
	SubmittedAt time.Time
	StartedAt   *time.Time
	FinishedAt  *time.Time
	Result      *Result
	Error       *migerr.Info
}

// Result is the outcome of a completed job: exactly one of Payload/Summary
// (on success) or Error (on failure) is populated.
type Result struct {
	Successful bool
	Payload    any
	Summary    any
	Error      *migerr.Info
}

// Success builds a successful Result.
func Success(payload, summary any) Result {
	return Result{Successful: true, Payload: payload, Summary: summary}
}

// Failure builds a failed Result.
func Failure(err *migerr.Info) Result {
	return Result{Successful: false, Error: err}
}
