// SPDX-License-Identifier: Apache-2.0

package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/pkg/model"
)

func TestCreationOutcomeAccumulatesAndCounts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	outcome := model.NewCreationOutcome[string](now)

	outcome.AddCreated("CUSTOMERS")
	outcome.AddCreated("ORDERS")
	outcome.AddSkipped("CUSTOMERS_BAK", "table already exists")
	outcome.AddError("LEDGER", "syntax error near NUMBER(38,0)", "CREATE TABLE LEDGER (...)")

	assert.Equal(t, 2, outcome.CreatedCount())
	assert.Equal(t, 1, outcome.SkippedCount())
	assert.Equal(t, 1, outcome.ErrorCount())
	assert.False(t, outcome.IsSuccessful())
	assert.Equal(t, now, outcome.ExecutionTimestamp)
}

func TestCreationOutcomeIsSuccessfulWithNoErrors(t *testing.T) {
	t.Parallel()

	outcome := model.NewCreationOutcome[int](time.Time{})
	outcome.AddCreated(1)
	outcome.AddSkipped(2, "duplicate")

	assert.True(t, outcome.IsSuccessful())
	assert.Zero(t, outcome.ErrorCount())
}

func TestErrorItemRetainsSQLStatementForDiagnostics(t *testing.T) {
	t.Parallel()

	outcome := model.NewCreationOutcome[string](time.Time{})
	outcome.AddError("BAD_VIEW", "relation does not exist", "CREATE VIEW BAD_VIEW AS SELECT * FROM ghost")

	assert.Equal(t, "CREATE VIEW BAD_VIEW AS SELECT * FROM ghost", outcome.Errors[0].SQLStatement)
	assert.Equal(t, "relation does not exist", outcome.Errors[0].ErrorMessage)
}

func TestSkippedItemRetainsReason(t *testing.T) {
	t.Parallel()

	outcome := model.NewCreationOutcome[string](time.Time{})
	outcome.AddSkipped("EMPLOYEES", "already present in target schema")

	assert.Equal(t, "already present in target schema", outcome.Skipped[0].Reason)
}
