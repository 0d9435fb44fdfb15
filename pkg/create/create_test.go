// SPDX-License-Identifier: Apache-2.0

package create

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/pkg/migerr"
)

type recordingReporter struct {
	last struct {
		pct  int
		task string
	}
}

func (r *recordingReporter) Report(percentage int, currentTask, details string) {
	r.last.pct = percentage
	r.last.task = currentTask
}

func TestReportEveryComputesPercentage(t *testing.T) {
	t.Parallel()

	r := &recordingReporter{}
	reportEvery(r, "creating tables", 3, 10)
	assert.Equal(t, 30, r.last.pct)
}

func TestReportEveryHandlesZeroTotal(t *testing.T) {
	t.Parallel()

	r := &recordingReporter{}
	reportEvery(r, "creating views", 0, 0)
	assert.Equal(t, 100, r.last.pct)
}

func TestCancelledWrapsContextError(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	info := cancelled(ctx)
	assert.Equal(t, migerr.KindCancelled, info.Kind)
	assert.ErrorIs(t, info, context.Canceled)
}

func TestClassifyPassesThroughToConflictClassification(t *testing.T) {
	t.Parallel()

	reason, isConflict := classify(&pq.Error{Code: "42P07"})
	assert.True(t, isConflict)
	assert.Equal(t, "table already exists", reason)
}

func TestClassifyNilErrorIsNotAConflict(t *testing.T) {
	t.Parallel()

	reason, isConflict := classify(nil)
	assert.False(t, isConflict)
	assert.Empty(t, reason)
}
