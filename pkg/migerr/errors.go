// SPDX-License-Identifier: Apache-2.0

// Package migerr defines the error taxonomy shared by every component in
// this module, one typed struct per condition instead of sentinel strings.
package migerr

import "fmt"

// Kind classifies an error for JobDescriptor.error.kind and for the
// Orchestrator's abort decisions.
type Kind string

const (
	KindConfig     Kind = "CONFIG_ERROR"
	KindConnection Kind = "CONNECTION_ERROR"
	KindNotFound   Kind = "NOT_FOUND"
	KindConflict   Kind = "CONFLICT"
	KindSQL        Kind = "SQL_ERROR"
	KindMapping    Kind = "MAPPING_WARNING"
	KindTimeout    Kind = "TIMEOUT"
	KindCancelled  Kind = "CANCELLED"
	KindInternal   Kind = "INTERNAL"
)

// Info is the {kind, message, cause?} shape attached to a failed JobDescriptor.
type Info struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Info) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Info) Unwrap() error { return e.Cause }

// New builds an Info of the given kind.
func New(kind Kind, message string) *Info {
	return &Info{Kind: kind, Message: message}
}

// Wrap builds an Info of the given kind around a causing error.
func Wrap(kind Kind, message string, cause error) *Info {
	return &Info{Kind: kind, Message: message, Cause: cause}
}

// ConfigError describes a required setting that is missing or malformed.
// ConfigStore and ConnectionProvider report such failures as an Info of
// KindConfig instead.
type ConfigError struct {
	Key    string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("configuration %q is invalid: %s", e.Key, e.Reason)
}

// ConnectionError wraps a network/auth failure talking to Oracle or Postgres.
type ConnectionError struct {
	Database string // "oracle" | "postgres"
	Cause    error
}

func (e ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Database, e.Cause)
}

func (e ConnectionError) Unwrap() error { return e.Cause }

// JobNotFoundError is returned by JobService.getStatus/getResult for an
// unknown JobId.
type JobNotFoundError struct {
	JobID string
}

func (e JobNotFoundError) Error() string {
	return fmt.Sprintf("job %q not found", e.JobID)
}

// JobNotReadyError is returned by JobService.getResult for a job that has
// not yet reached a terminal state.
type JobNotReadyError struct {
	JobID string
}

func (e JobNotReadyError) Error() string {
	return fmt.Sprintf("job %q has not completed", e.JobID)
}

// UnknownOperationError is returned by JobRegistry.createJob for a
// (database, operationKind) pair with no registered factory.
type UnknownOperationError struct {
	Database string
	Kind     string
}

func (e UnknownOperationError) Error() string {
	return fmt.Sprintf("no job factory registered for %s/%s", e.Database, e.Kind)
}

// PhaseFailedError is raised by the Orchestrator when a phase fails or
// violates its abort policy.
type PhaseFailedError struct {
	Phase  string
	Reason string
}

func (e PhaseFailedError) Error() string {
	return fmt.Sprintf("phase %q failed: %s", e.Phase, e.Reason)
}
