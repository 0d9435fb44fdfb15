// SPDX-License-Identifier: Apache-2.0

// Package joblog provides the structured logger used across the job
// subsystem and migration pipeline: a small interface over pterm's
// structured logger, plus a no-op implementation for tests.
package joblog

import "github.com/pterm/pterm"

// Logger records lifecycle events for jobs and migration phases.
type Logger interface {
	JobSubmitted(jobID, kind, database string)
	JobStarted(jobID, kind string)
	JobCompleted(jobID, kind string, durationMs int64)
	JobFailed(jobID, kind, reason string)
	JobCancelled(jobID, kind string)

	PhaseStart(phase string)
	PhaseComplete(phase string, created, skipped, errors int)

	ItemSkipped(kind, item, reason string)
	ItemErrored(kind, item, reason string)

	Info(msg string, args ...any)
}

type ptermLogger struct {
	logger pterm.Logger
}

// New returns a Logger backed by pterm's default structured logger.
func New() Logger {
	return &ptermLogger{logger: pterm.DefaultLogger}
}

type noopLogger struct{}

// NewNoop returns a Logger that discards every event; used in unit tests.
func NewNoop() Logger {
	return &noopLogger{}
}

func (l *ptermLogger) JobSubmitted(jobID, kind, database string) {
	l.logger.Info("job submitted", l.logger.Args("job_id", jobID, "kind", kind, "database", database))
}

func (l *ptermLogger) JobStarted(jobID, kind string) {
	l.logger.Info("job started", l.logger.Args("job_id", jobID, "kind", kind))
}

func (l *ptermLogger) JobCompleted(jobID, kind string, durationMs int64) {
	l.logger.Info("job completed", l.logger.Args("job_id", jobID, "kind", kind, "duration_ms", durationMs))
}

func (l *ptermLogger) JobFailed(jobID, kind, reason string) {
	l.logger.Error("job failed", l.logger.Args("job_id", jobID, "kind", kind, "reason", reason))
}

func (l *ptermLogger) JobCancelled(jobID, kind string) {
	l.logger.Warn("job cancelled", l.logger.Args("job_id", jobID, "kind", kind))
}

func (l *ptermLogger) PhaseStart(phase string) {
	l.logger.Info("phase starting", l.logger.Args("phase", phase))
}

func (l *ptermLogger) PhaseComplete(phase string, created, skipped, errors int) {
	l.logger.Info("phase complete", l.logger.Args("phase", phase, "created", created, "skipped", skipped, "errors", errors))
}

func (l *ptermLogger) ItemSkipped(kind, item, reason string) {
	l.logger.Debug("item skipped", l.logger.Args("kind", kind, "item", item, "reason", reason))
}

func (l *ptermLogger) ItemErrored(kind, item, reason string) {
	l.logger.Error("item errored", l.logger.Args("kind", kind, "item", item, "reason", reason))
}

func (l *ptermLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *noopLogger) JobSubmitted(jobID, kind, database string)             {}
func (l *noopLogger) JobStarted(jobID, kind string)                        {}
func (l *noopLogger) JobCompleted(jobID, kind string, durationMs int64)    {}
func (l *noopLogger) JobFailed(jobID, kind, reason string)                 {}
func (l *noopLogger) JobCancelled(jobID, kind string)                      {}
func (l *noopLogger) PhaseStart(phase string)                              {}
func (l *noopLogger) PhaseComplete(phase string, created, skipped, errors int) {}
func (l *noopLogger) ItemSkipped(kind, item, reason string)                {}
func (l *noopLogger) ItemErrored(kind, item, reason string)                {}
func (l *noopLogger) Info(msg string, args ...any)                        {}
