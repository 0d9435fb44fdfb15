// SPDX-License-Identifier: Apache-2.0

package job

import (
	"context"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/state"
)

// Description is the static, pre-execution identity of a Job.
type Description struct {
	Kind         OperationKind
	Database     DatabaseTag
	FriendlyName string
}

// Reporter is invoked by a running Job at least once per chunk of work.
// Implementations must publish reports atomically so that any concurrent
// getStatus call observes a self-consistent snapshot, and must enforce
// that Percentage is non-decreasing while RUNNING.
type Reporter interface {
	Report(percentage int, currentTask, details string)
}

// Job is a polymorphic unit of migration work. Cancellation is
// cooperative: long-running loops must check ctx.Err() at least once per
// table, per batch, or per SQL statement — this is expressed through
// context cancellation rather than a separate polled onCancel() flag.
type Job interface {
	Describe() Description
	Run(ctx context.Context, reporter Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) Result
}

// Factory builds a Job for a given opaque submission argument. arg is
// passed through unchanged from Service.Submit; concrete factories
// type-assert it to whatever input their phase requires (often nothing).
type Factory func(arg any) (Job, error)
