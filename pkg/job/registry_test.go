// SPDX-License-Identifier: Apache-2.0

package job_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/migerr"
)

func TestRegistryCreateJobDispatchesToFactory(t *testing.T) {
	t.Parallel()

	reg := job.NewRegistry()
	called := false
	reg.Register(job.DatabaseOracle, job.OpSchemaExtract, func(arg any) (job.Job, error) {
		called = true
		return fakeJob{}, nil
	})

	j, err := reg.CreateJob(job.DatabaseOracle, job.OpSchemaExtract, nil)
	require.NoError(t, err)
	assert.NotNil(t, j)
	assert.True(t, called)
}

func TestRegistryUnknownOperationReturnsTypedError(t *testing.T) {
	t.Parallel()

	reg := job.NewRegistry()

	_, err := reg.CreateJob(job.DatabasePostgres, job.OpSchemaExtract, nil)
	require.Error(t, err)

	var unknownOp migerr.UnknownOperationError
	assert.ErrorAs(t, err, &unknownOp)
}

func TestRegistryKeysAreDistinguishedByDatabaseTag(t *testing.T) {
	t.Parallel()

	reg := job.NewRegistry()
	reg.Register(job.DatabaseOracle, job.OpTableCreate, func(arg any) (job.Job, error) {
		return fakeJob{}, nil
	})

	_, err := reg.CreateJob(job.DatabasePostgres, job.OpTableCreate, nil)
	assert.Error(t, err)

	_, err = reg.CreateJob(job.DatabaseOracle, job.OpTableCreate, nil)
	assert.NoError(t, err)
}

func TestRegistryReRegisterOverwritesPreviousFactory(t *testing.T) {
	t.Parallel()

	reg := job.NewRegistry()
	reg.Register(job.DatabaseOracle, job.OpSequenceExtract, func(arg any) (job.Job, error) {
		return fakeJob{}, nil
	})

	sentinel := errNotRealFactory{}
	reg.Register(job.DatabaseOracle, job.OpSequenceExtract, func(arg any) (job.Job, error) {
		return nil, sentinel
	})

	_, err := reg.CreateJob(job.DatabaseOracle, job.OpSequenceExtract, nil)
	assert.ErrorIs(t, err, sentinel)
}

type errNotRealFactory struct{}

func (errNotRealFactory) Error() string { return "replacement factory invoked" }
