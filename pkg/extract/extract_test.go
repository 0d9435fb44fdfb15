// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oragres/migrator/pkg/config"
)

func TestResolveSchemaFilterAllSchemas(t *testing.T) {
	t.Parallel()

	f := resolveSchemaFilter(config.Config{DoAllSchemas: true}, nil)
	assert.True(t, f.all)
	assert.True(t, f.includes("ANY_SCHEMA"))
}

func TestResolveSchemaFilterDefaultsToAllWhenTestSchemaUnset(t *testing.T) {
	t.Parallel()

	f := resolveSchemaFilter(config.Config{DoAllSchemas: false, DoOnlyTestSchema: ""}, nil)
	assert.True(t, f.all)
}

func TestResolveSchemaFilterRestrictsToNamedSchema(t *testing.T) {
	t.Parallel()

	f := resolveSchemaFilter(config.Config{DoAllSchemas: false, DoOnlyTestSchema: "HR"}, nil)
	assert.False(t, f.all)
	assert.True(t, f.includes("HR"))
	assert.False(t, f.includes("SCOTT"))
}

type recordingReporter struct {
	reports []struct {
		pct  int
		task string
	}
}

func (r *recordingReporter) Report(percentage int, currentTask, details string) {
	r.reports = append(r.reports, struct {
		pct  int
		task string
	}{percentage, currentTask})
}

func TestReportEveryReportsOnIntervalAndFinal(t *testing.T) {
	t.Parallel()

	r := &recordingReporter{}
	for i := 1; i <= 10; i++ {
		reportEvery(r, "extracting tables", i, 10, 5)
	}

	assert.NotEmpty(t, r.reports)
	last := r.reports[len(r.reports)-1]
	assert.Equal(t, 100, last.pct)
}

func TestReportEveryHandlesZeroTotal(t *testing.T) {
	t.Parallel()

	r := &recordingReporter{}
	reportEvery(r, "extracting views", 0, 0, 5)

	assert.Len(t, r.reports, 1)
	assert.Equal(t, 100, r.reports[0].pct)
	assert.Equal(t, "extracting views", r.reports[0].task)
}
