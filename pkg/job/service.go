// SPDX-License-Identifier: Apache-2.0

package job

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/oragres/migrator/pkg/config"
	"github.com/oragres/migrator/pkg/dbconn"
	"github.com/oragres/migrator/pkg/joblog"
	"github.com/oragres/migrator/pkg/migerr"
	"github.com/oragres/migrator/pkg/state"
)

const (
	defaultRetentionCap = 1024
	defaultGracePeriod  = 30 * time.Second
)

type workItem struct {
	id     ID
	j      Job
	kind   OperationKind
	db     DatabaseTag
	ctx    context.Context
	cancel context.CancelFunc
}

// Service submits jobs to a bounded worker pool, tracks status/progress,
// and retains results for later retrieval.
type Service struct {
	registry *Registry
	state    *state.Store
	conns    *dbconn.Provider
	cfg      *config.Store
	logger   joblog.Logger

	poolSize     int
	retentionCap int
	gracePeriod  time.Duration

	mu          sync.Mutex
	descriptors map[ID]*Descriptor
	cancels     map[ID]context.CancelFunc

	queue       chan workItem
	shuttingDown atomic.Bool
	wg          sync.WaitGroup
}

// Option configures a Service at construction time.
type Option func(*Service)

// WithPoolSize overrides the default worker pool size (max(2, NumCPU)).
func WithPoolSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithRetentionCap overrides the default descriptor retention cap (1024).
func WithRetentionCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.retentionCap = n
		}
	}
}

// WithGracePeriod overrides the default resetAll grace period (30s).
func WithGracePeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.gracePeriod = d
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l joblog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService constructs a Service and starts its worker pool.
func NewService(registry *Registry, st *state.Store, conns *dbconn.Provider, cfg *config.Store, opts ...Option) *Service {
	s := &Service{
		registry:     registry,
		state:        st,
		conns:        conns,
		cfg:          cfg,
		logger:       joblog.NewNoop(),
		poolSize:     max(2, runtime.NumCPU()),
		retentionCap: defaultRetentionCap,
		gracePeriod:  defaultGracePeriod,
		descriptors:  make(map[ID]*Descriptor),
		cancels:      make(map[ID]context.CancelFunc),
		queue:        make(chan workItem, 4096),
	}
	for _, o := range opts {
		o(s)
	}

	s.wg.Add(s.poolSize)
	for i := 0; i < s.poolSize; i++ {
		go s.worker()
	}

	return s
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Submit enqueues a new job. It succeeds iff the system is not shutting
// down.
func (s *Service) Submit(kind OperationKind, database DatabaseTag, arg any) (ID, error) {
	if s.shuttingDown.Load() {
		return "", migerr.New(migerr.KindInternal, "job service is shutting down")
	}

	j, err := s.registry.CreateJob(database, kind, arg)
	if err != nil {
		return "", err
	}

	id := ID(uuid.NewString())
	ctx, cancel := context.WithCancel(context.Background())

	now := time.Now()
	desc := &Descriptor{
		ID:          id,
		Kind:        kind,
		Database:    database,
		State:       StatePending,
		SubmittedAt: now,
	}

	s.mu.Lock()
	s.descriptors[id] = desc
	s.cancels[id] = cancel
	s.mu.Unlock()

	s.logger.JobSubmitted(string(id), string(kind), string(database))

	s.queue <- workItem{id: id, j: j, kind: kind, db: database, ctx: ctx, cancel: cancel}

	return id, nil
}

// GetStatus returns a snapshot of the job's descriptor.
func (s *Service) GetStatus(id ID) (Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.descriptors[id]
	if !ok {
		return Descriptor{}, migerr.JobNotFoundError{JobID: string(id)}
	}
	return *d, nil
}

// GetResult returns the result of a completed job.
func (s *Service) GetResult(id ID) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.descriptors[id]
	if !ok {
		return Result{}, migerr.JobNotFoundError{JobID: string(id)}
	}
	if !d.State.IsTerminal() {
		return Result{}, migerr.JobNotReadyError{JobID: string(id)}
	}
	if d.Result == nil {
		return Result{}, migerr.JobNotReadyError{JobID: string(id)}
	}
	return *d.Result, nil
}

// CancelOutcome is the result of a Cancel call.
type CancelOutcome string

const (
	CancelAccepted CancelOutcome = "accepted"
	CancelTerminal CancelOutcome = "terminal"
)

// Cancel requests cancellation of a job. CANCELLED is reachable from
// PENDING or RUNNING only.
func (s *Service) Cancel(id ID) (CancelOutcome, error) {
	s.mu.Lock()
	d, ok := s.descriptors[id]
	if !ok {
		s.mu.Unlock()
		return "", migerr.JobNotFoundError{JobID: string(id)}
	}
	if d.State.IsTerminal() {
		s.mu.Unlock()
		return CancelTerminal, nil
	}
	cancel := s.cancels[id]
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return CancelAccepted, nil
}

// ResetAll clears the StateStore and evicts all non-running descriptors;
// running jobs are requested to cancel and awaited with a bounded grace
// period.
func (s *Service) ResetAll() {
	s.mu.Lock()
	var runningIDs []ID
	for id, d := range s.descriptors {
		if d.State == StateRunning || d.State == StatePending {
			if cancel := s.cancels[id]; cancel != nil {
				cancel()
			}
			runningIDs = append(runningIDs, id)
			continue
		}
		delete(s.descriptors, id)
		delete(s.cancels, id)
	}
	s.mu.Unlock()

	s.awaitTerminal(runningIDs, s.gracePeriod)
	s.state.Reset()
}

func (s *Service) awaitTerminal(ids []ID, timeout time.Duration) {
	if len(ids) == 0 {
		return
	}
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if s.allTerminal(ids) {
			return
		}
		<-ticker.C
	}
}

func (s *Service) allTerminal(ids []ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if d, ok := s.descriptors[id]; ok && !d.State.IsTerminal() {
			return false
		}
	}
	return true
}

// Shutdown stops accepting new submissions and waits for the worker pool
// to drain its queue.
func (s *Service) Shutdown() {
	s.shuttingDown.Store(true)
	close(s.queue)
	s.wg.Wait()
}

func (s *Service) worker() {
	defer s.wg.Done()

	for item := range s.queue {
		s.run(item)
	}
}

func (s *Service) run(item workItem) {
	if item.ctx.Err() != nil {
		s.finish(item.id, StateCancelled, Result{}, nil)
		s.logger.JobCancelled(string(item.id), string(item.kind))
		return
	}

	s.mu.Lock()
	if d, ok := s.descriptors[item.id]; ok {
		startedAt := time.Now()
		d.State = StateRunning
		d.StartedAt = &startedAt
	}
	s.mu.Unlock()
	s.logger.JobStarted(string(item.id), string(item.kind))

	started := time.Now()
	reporter := &atomicReporter{service: s, id: item.id}

	result := func() (res Result) {
		defer func() {
			if r := recover(); r != nil {
				res = Failure(migerr.New(migerr.KindInternal, "job panicked"))
			}
		}()
		return item.j.Run(item.ctx, reporter, s.state, s.conns, s.cfg.Get())
	}()

	finalState := StateCompleted
	switch {
	case item.ctx.Err() != nil:
		finalState = StateCancelled
	case !result.Successful:
		finalState = StateFailed
	}

	s.finish(item.id, finalState, result, result.Error)

	switch finalState {
	case StateCompleted:
		s.logger.JobCompleted(string(item.id), string(item.kind), time.Since(started).Milliseconds())
	case StateFailed:
		reason := ""
		if result.Error != nil {
			reason = result.Error.Message
		}
		s.logger.JobFailed(string(item.id), string(item.kind), reason)
	case StateCancelled:
		s.logger.JobCancelled(string(item.id), string(item.kind))
	}
}

func (s *Service) finish(id ID, state State, result Result, errInfo *migerr.Info) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.descriptors[id]
	if !ok {
		return
	}
	finishedAt := time.Now()
	d.State = state
	d.FinishedAt = &finishedAt
	if state == StateCompleted {
		d.Progress.Percentage = 100
	}
	r := result
	d.Result = &r
	d.Error = errInfo

	delete(s.cancels, id)
	s.evictIfNeededLocked()
}

// evictIfNeededLocked evicts the oldest terminal descriptors by
// SubmittedAt when the table exceeds retentionCap. Caller must hold s.mu.
func (s *Service) evictIfNeededLocked() {
	if len(s.descriptors) <= s.retentionCap {
		return
	}

	type entry struct {
		id          ID
		submittedAt time.Time
	}
	var terminal []entry
	for id, d := range s.descriptors {
		if d.State.IsTerminal() {
			terminal = append(terminal, entry{id: id, submittedAt: d.SubmittedAt})
		}
	}
	sort.Slice(terminal, func(i, j int) bool {
		return terminal[i].submittedAt.Before(terminal[j].submittedAt)
	})

	toEvict := len(s.descriptors) - s.retentionCap
	for i := 0; i < toEvict && i < len(terminal); i++ {
		delete(s.descriptors, terminal[i].id)
	}
}

// atomicReporter publishes progress reports atomically and enforces
// monotonic percentage.
type atomicReporter struct {
	service *Service
	id      ID
}

func (r *atomicReporter) Report(percentage int, currentTask, details string) {
	r.service.mu.Lock()
	defer r.service.mu.Unlock()

	d, ok := r.service.descriptors[r.id]
	if !ok || d.State.IsTerminal() {
		return
	}
	if percentage < d.Progress.Percentage {
		percentage = d.Progress.Percentage
	}
	if percentage > 100 {
		percentage = 100
	}
	d.Progress = Progress{Percentage: percentage, CurrentTask: currentTask, Details: details}
}
