// SPDX-License-Identifier: Apache-2.0

package job_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/job"
	"github.com/oragres/migrator/pkg/state"
)

type fakeJob struct {
	run func(ctx context.Context, reporter job.Reporter) job.Result
}

func (f fakeJob) Describe() job.Description {
	return job.Description{Kind: "FAKE", Database: job.DatabaseOracle, FriendlyName: "fake"}
}

func (f fakeJob) Run(ctx context.Context, reporter job.Reporter, st *state.Store, conns *dbconn.Provider, cfg config.Config) job.Result {
	return f.run(ctx, reporter)
}

func newTestService(t *testing.T, factory job.Factory, opts ...job.Option) *job.Service {
	t.Helper()
	reg := job.NewRegistry()
	reg.Register(job.DatabaseOracle, "FAKE", factory)

	svc := job.NewService(reg, state.New(), dbconn.New("", ""), config.NewStore(), opts...)
	t.Cleanup(svc.Shutdown)
	return svc
}

func waitTerminal(t *testing.T, svc *job.Service, id job.ID) job.Descriptor {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		desc, err := svc.GetStatus(id)
		require.NoError(t, err)
		if desc.State.IsTerminal() {
			return desc
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal state in time")
	return job.Descriptor{}
}

func TestSubmitRunsToCompletion(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			reporter.Report(50, "halfway", "")
			return job.Success("payload", "summary")
		}}, nil
	})

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)

	desc := waitTerminal(t, svc, id)
	assert.Equal(t, job.StateCompleted, desc.State)
	assert.Equal(t, 100, desc.Progress.Percentage)

	result, err := svc.GetResult(id)
	require.NoError(t, err)
	assert.True(t, result.Successful)
	assert.Equal(t, "payload", result.Payload)
}

func TestSubmitUnknownOperationFails(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{}, nil
	})

	_, err := svc.Submit("NOT_REGISTERED", job.DatabaseOracle, nil)
	assert.Error(t, err)
}

func TestRunFailureSetsFailedState(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			return job.Failure(nil)
		}}, nil
	})

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)

	desc := waitTerminal(t, svc, id)
	assert.Equal(t, job.StateFailed, desc.State)
}

func TestRunPanicIsRecoveredAsFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			panic("boom")
		}}, nil
	})

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)

	desc := waitTerminal(t, svc, id)
	assert.Equal(t, job.StateFailed, desc.State)
	require.NotNil(t, desc.Error)
}

func TestCancelStopsARunningJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			close(started)
			<-ctx.Done()
			return job.Failure(nil)
		}}, nil
	})

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)

	<-started
	outcome, err := svc.Cancel(id)
	require.NoError(t, err)
	assert.Equal(t, job.CancelAccepted, outcome)

	desc := waitTerminal(t, svc, id)
	assert.Equal(t, job.StateCancelled, desc.State)
}

func TestCancelOnTerminalJobReportsTerminal(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			return job.Success(nil, nil)
		}}, nil
	})

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)
	waitTerminal(t, svc, id)

	outcome, err := svc.Cancel(id)
	require.NoError(t, err)
	assert.Equal(t, job.CancelTerminal, outcome)
}

func TestGetResultBeforeCompletionIsNotReady(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			<-release
			return job.Success(nil, nil)
		}}, nil
	})

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)

	_, err = svc.GetResult(id)
	assert.Error(t, err)

	close(release)
	waitTerminal(t, svc, id)
}

func TestGetStatusUnknownJobIsNotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, func(arg any) (job.Job, error) { return fakeJob{}, nil })

	_, err := svc.GetStatus("does-not-exist")
	assert.Error(t, err)
}

func TestProgressReportIsMonotonic(t *testing.T) {
	t.Parallel()

	reported := make(chan struct{})
	release := make(chan struct{})
	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			reporter.Report(80, "far along", "")
			reporter.Report(20, "should not regress", "")
			close(reported)
			<-release
			return job.Success(nil, nil)
		}}, nil
	})

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)

	<-reported
	running, err := svc.GetStatus(id)
	require.NoError(t, err)
	assert.Equal(t, 80, running.Progress.Percentage)
	close(release)

	desc := waitTerminal(t, svc, id)
	assert.Equal(t, 100, desc.Progress.Percentage)
}

func TestResetAllCancelsRunningJobs(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	svc := newTestService(t, func(arg any) (job.Job, error) {
		return fakeJob{run: func(ctx context.Context, reporter job.Reporter) job.Result {
			close(started)
			<-ctx.Done()
			return job.Failure(nil)
		}}, nil
	}, job.WithGracePeriod(500*time.Millisecond))

	id, err := svc.Submit("FAKE", job.DatabaseOracle, nil)
	require.NoError(t, err)
	<-started

	svc.ResetAll()

	desc, err := svc.GetStatus(id)
	require.NoError(t, err)
	assert.Equal(t, job.StateCancelled, desc.State)
}
