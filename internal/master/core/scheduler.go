package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kbecker/mrs/internal/shared/logging"
)

// SlaveClient is how the scheduler reaches a registered slave. It is
// implemented by the master's gRPC client pool (internal/master/api/grpc);
// tests substitute an in-process fake.
type SlaveClient interface {
	Assign(ctx context.Context, slave *SlaveInfo, task *Task, d *Dataset, parents map[int64]*Dataset) (accepted bool, err error)
	Cancel(ctx context.Context, slave *SlaveInfo, id TaskID) error
	DropBucket(ctx context.Context, slave *SlaveInfo, id TaskID) error
}

// LocalSourceWriter partitions a source-from-local-iterator dataset's
// captured records into the dataset's FanOut buckets (one per downstream
// split) and writes them to the master's own bucket store (spec.md §4.1
// "source-from-local-iterator data is partitioned on the master"),
// returning one advertised bucket URL per bucket. It is implemented by internal/master/service.LocalWriter; the
// scheduler only depends on the interface to avoid importing
// internal/bucket and pkg/mrs from core.
type LocalSourceWriter interface {
	WriteLocal(d *Dataset) ([]string, error)
}

// Config bounds scheduler behavior (spec.md §7 retry bounds, §4.5 heartbeat cadence).
type Config struct {
	MaxAttempts       int
	HeartbeatInterval time.Duration
	MissedBeatsLimit  int
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		HeartbeatInterval: 5 * time.Second,
		MissedBeatsLimit:  3,
	}
}

// Scheduler implements spec.md §4.2: it owns the dataset graph and task
// queues exclusively, reachable only through its methods.
type Scheduler struct {
	mu sync.Mutex

	// changed is closed and replaced under mu on every state change that
	// could satisfy a pending Wait or wake the assignment loop. Waiters
	// snapshot it while holding mu, unlock, then select on it against
	// time.After — this composes with timeouts in a way sync.Cond cannot.
	changed chan struct{}

	cfg Config

	graph  *Graph
	tasks  TaskStore
	slaves SlaveStore
	client SlaveClient
	local  LocalSourceWriter
	logger logging.Logger

	ready map[int64]*ReadyQueue // datasetID -> ready tasks of that dataset
	order []int64               // dataset submission order, for FIFO-across-datasets fairness

	aborted     bool
	abortReason string

	closeCh chan struct{}
}

// NewScheduler wires a scheduler over the given graph and stores.
func NewScheduler(graph *Graph, tasks TaskStore, slaves SlaveStore, client SlaveClient, local LocalSourceWriter, logger logging.Logger, cfg Config) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		graph:   graph,
		tasks:   tasks,
		slaves:  slaves,
		client:  client,
		local:   local,
		logger:  logger,
		ready:   make(map[int64]*ReadyQueue),
		changed: make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// notifyChanged wakes every goroutine currently waiting on a snapshot of
// s.changed. Must be called with s.mu held.
func (s *Scheduler) notifyChanged() {
	close(s.changed)
	s.changed = make(chan struct{})
}

// waitChanged blocks until notifyChanged is next called, ctx is done,
// Stop is called, or timeout elapses (timeout <= 0 means no timeout). It
// must be called with s.mu NOT held.
func (s *Scheduler) waitChanged(ctx context.Context, timeout time.Duration) {
	s.mu.Lock()
	ch := s.changed
	s.mu.Unlock()

	if timeout <= 0 {
		select {
		case <-ch:
		case <-ctx.Done():
		case <-s.closeCh:
		}
		return
	}
	select {
	case <-ch:
	case <-ctx.Done():
	case <-s.closeCh:
	case <-time.After(timeout):
	}
}

// Run starts the assignment loop. It blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closeCh:
			return
		default:
		}
		s.assignOnce(ctx)

		s.mu.Lock()
		idle := !s.hasWork()
		s.mu.Unlock()
		if idle && ctx.Err() == nil {
			s.waitChanged(ctx, 1*time.Second)
		}
	}
}

func (s *Scheduler) hasWork() bool {
	for _, q := range s.ready {
		if q.Len() > 0 {
			return true
		}
	}
	return false
}

// Submit registers a new dataset (spec.md §6 file_data/local_data/map_data/
// reduce_data/reducemap_data all funnel through this).
func (s *Scheduler) Submit(spec DatasetSpec) (int64, error) {
	id, err := s.graph.Submit(spec)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.order = append(s.order, id)
	s.mu.Unlock()

	// A source-from-local-iterator parent's FanOut is only final once its
	// first consumer has bound it (graph.Submit above just did so for
	// spec.Sources); materializing it here, now that FanOut is settled,
	// rather than at the parent's own Submit call avoids writing its
	// zero-compute buckets under the still-default FanOut=1.
	for _, pid := range spec.Sources {
		if p, ok := s.graph.Dataset(pid); ok && p.Kind == DatasetSourceLocal {
			s.tryMaterialize(pid)
		}
	}

	if spec.Kind != DatasetSourceLocal {
		s.tryMaterialize(id)
	}
	return id, nil
}

// tryMaterialize expands a dataset into tasks once all of its parents are
// complete (or immediately, for sources), and enqueues the ready ones.
func (s *Scheduler) tryMaterialize(id int64) {
	d, ok := s.graph.Dataset(id)
	if !ok {
		return
	}

	parents := make(map[int64]*Dataset)
	for _, pid := range d.Sources {
		p, ok := s.graph.Dataset(pid)
		if !ok {
			return
		}
		if !s.datasetComplete(p) {
			return
		}
		parents[pid] = p
	}

	if len(s.tasks.TasksForDataset(id)) > 0 {
		return // already materialized
	}

	tasks := Materialize(d, parents)
	s.tasks.PutTasks(id, tasks)

	if d.Kind == DatasetSourceLocal {
		s.materializeLocal(d, tasks)
		return
	}
	if d.Kind == DatasetSourceURL {
		s.materializeSourceURL(d, tasks)
		return
	}

	s.mu.Lock()
	q, ok := s.ready[id]
	if !ok {
		q = NewReadyQueue()
		s.ready[id] = q
	}
	for _, t := range tasks {
		q.Push(t)
	}
	s.graph.SetState(id, DatasetRunning)
	s.notifyChanged()
	s.mu.Unlock()
}

// materializeSourceURL completes a source-from-URL dataset's tasks
// immediately: each task's output is the URL itself, reachable directly by
// any consumer (spec.md §4.1 "no slave executes it").
func (s *Scheduler) materializeSourceURL(d *Dataset, tasks []*Task) {
	now := time.Now()
	for i, t := range tasks {
		t.State = TaskComplete
		if i < len(d.URLs) {
			t.Outputs = []string{d.URLs[i]}
		}
		t.EndedAt = &now
		s.tasks.UpdateTask(t)
	}
	s.graph.SetState(d.ID, DatasetComplete)
	s.notifyDependents(d.ID)
}

// materializeLocal runs the zero-compute path for a source-from-local
// dataset: the master itself partitions and writes the buckets (spec.md
// §4.1), so these tasks never enter the ready queue or get dispatched to a
// slave. Each task completes immediately with its bucket's advertised URL.
func (s *Scheduler) materializeLocal(d *Dataset, tasks []*Task) {
	if s.local == nil {
		s.logger.Error("no local source writer configured", "dataset_id", d.ID)
		s.abort(fmt.Sprintf("dataset %d: source-from-local data requires a LocalSourceWriter", d.ID))
		return
	}
	urls, err := s.local.WriteLocal(d)
	if err != nil {
		s.abort(fmt.Sprintf("dataset %d: writing local source buckets: %s", d.ID, err))
		return
	}
	// local_data always materializes to exactly one zero-compute task
	// (graph.Submit forces NumSplits to 1); that task's Outputs carries
	// every partitioned bucket, one per downstream split, same as any
	// other task's Outputs.
	now := time.Now()
	for _, t := range tasks {
		t.State = TaskComplete
		t.Outputs = urls
		t.EndedAt = &now
		s.tasks.UpdateTask(t)
	}
	s.graph.SetState(d.ID, DatasetComplete)
	s.notifyDependents(d.ID)
}

func (s *Scheduler) datasetComplete(d *Dataset) bool {
	if d.Kind.IsSource() && d.Kind != DatasetSourceLocal {
		tasks := s.tasks.TasksForDataset(d.ID)
		if len(tasks) == 0 {
			return false
		}
		for _, t := range tasks {
			if t.State != TaskComplete {
				return false
			}
		}
		return true
	}
	if d.NumSplits == 0 {
		return true
	}
	tasks := s.tasks.TasksForDataset(d.ID)
	if len(tasks) < d.NumSplits {
		return false
	}
	for _, t := range tasks {
		if t.State != TaskComplete {
			return false
		}
	}
	return true
}

// notifyDependents re-attempts materialization of every dataset that names
// id as a source, and wakes any Wait callers.
func (s *Scheduler) notifyDependents(id int64) {
	for _, cid := range s.graph.children[id] {
		s.tryMaterialize(cid)
	}
	s.mu.Lock()
	s.notifyChanged()
	s.mu.Unlock()
}

// Dataset looks up a dataset by id, for read-only callers (e.g. the status API).
func (s *Scheduler) Dataset(id int64) (*Dataset, bool) {
	return s.graph.Dataset(id)
}

// AllDatasets returns every dataset submitted to this job, for read-only callers.
func (s *Scheduler) AllDatasets() []*Dataset {
	return s.graph.store.AllDatasets()
}

// TasksForDataset returns a dataset's materialized tasks, for read-only callers.
func (s *Scheduler) TasksForDataset(id int64) []*Task {
	return s.tasks.TasksForDataset(id)
}

// AllSlaves returns every slave currently registered, for read-only callers.
func (s *Scheduler) AllSlaves() []*SlaveInfo {
	return s.slaves.AllSlaves()
}

// Progress reports the fraction of a dataset's tasks that are complete
// (spec.md §4.2 "progress").
func (s *Scheduler) Progress(id int64) (float64, error) {
	d, ok := s.graph.Dataset(id)
	if !ok {
		return 0, ErrDatasetNotFound
	}
	if d.Kind == DatasetSourceLocal {
		// A local dataset with no consumer never had its FanOut-bound
		// materialization triggered from Submit; do it lazily on first
		// query, by which point FanOut's default of 1 is authoritative.
		s.tryMaterialize(id)
	}
	if d.NumSplits == 0 {
		return 1, nil
	}
	tasks := s.tasks.TasksForDataset(id)
	if len(tasks) == 0 {
		return 0, nil
	}
	complete := 0
	for _, t := range tasks {
		if t.State == TaskComplete {
			complete++
		}
	}
	return float64(complete) / float64(d.NumSplits), nil
}

// Wait blocks until at least one of ids is complete, the job aborts, or
// timeout elapses (0 returns immediately with whatever is already
// complete). It returns the complete subset of ids, in the order given.
func (s *Scheduler) Wait(ids []int64, timeout time.Duration) ([]int64, error) {
	for _, id := range ids {
		if d, ok := s.graph.Dataset(id); ok && d.Kind == DatasetSourceLocal {
			s.tryMaterialize(id)
		}
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		s.mu.Lock()
		if s.aborted {
			reason := s.abortReason
			s.mu.Unlock()
			return nil, &JobAbort{Reason: reason}
		}

		var done []int64
		for _, id := range ids {
			d, ok := s.graph.Dataset(id)
			if ok && s.datasetComplete(d) {
				done = append(done, id)
			}
		}
		if len(done) > 0 {
			s.mu.Unlock()
			return done, nil
		}
		if timeout == 0 {
			s.mu.Unlock()
			return nil, nil
		}
		ch := s.changed
		s.mu.Unlock()

		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil, nil
		}

		if deadline.IsZero() {
			select {
			case <-ch:
			case <-s.closeCh:
				return nil, nil
			}
			continue
		}

		select {
		case <-ch:
		case <-s.closeCh:
			return nil, nil
		case <-time.After(time.Until(deadline)):
		}
	}
}

// Close marks a dataset closed; idempotent (spec.md §8).
func (s *Scheduler) Close(id int64) error {
	d, ok := s.graph.Close(id)
	if !ok {
		return ErrDatasetNotFound
	}
	s.mu.Lock()
	if q, ok := s.ready[id]; ok {
		for q.Len() > 0 {
			q.Pop()
		}
	}
	s.mu.Unlock()
	s.maybeGC(d)
	return nil
}

func (s *Scheduler) maybeGC(d *Dataset) {
	if !d.Closed || s.graph.OpenConsumers(d.ID) {
		return
	}
	for _, t := range s.tasks.TasksForDataset(d.ID) {
		if t.State != TaskComplete || t.AssignedTo == "" {
			continue
		}
		slave, ok := s.slaves.GetSlave(t.AssignedTo)
		if !ok {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = s.client.DropBucket(ctx, slave, t.ID())
		cancel()
	}
}

// RegisterSlave admits a new slave (spec.md §4.5 "register").
func (s *Scheduler) RegisterSlave(info *SlaveInfo) {
	info.State = SlaveHealthy
	info.LastHeartbeat = time.Now()
	s.slaves.AddSlave(info)
	s.mu.Lock()
	s.notifyChanged()
	s.mu.Unlock()
}

// Heartbeat refreshes a slave's liveness and returns task ids the slave
// should drop because the master no longer considers them theirs (spec.md
// §4.5 "heartbeat... ok|reassign_list").
func (s *Scheduler) Heartbeat(slaveID string, runningTaskIDs []TaskID) []TaskID {
	slave, ok := s.slaves.GetSlave(slaveID)
	if !ok {
		return nil
	}
	slave.LastHeartbeat = time.Now()
	slave.MissedBeats = 0
	slave.State = SlaveHealthy
	s.slaves.UpdateSlave(slave)

	var reassign []TaskID
	for _, id := range runningTaskIDs {
		t, ok := s.tasks.GetTask(id)
		if !ok || t.AssignedTo != slaveID {
			reassign = append(reassign, id)
		}
	}
	return reassign
}

// CheckHeartbeats scans registered slaves and declares any slave lost once
// it has missed MissedBeatsLimit consecutive heartbeats.
func (s *Scheduler) CheckHeartbeats() {
	now := time.Now()
	for _, slave := range s.slaves.AllSlaves() {
		if slave.State == SlaveLost {
			continue
		}
		if now.Sub(slave.LastHeartbeat) > s.cfg.HeartbeatInterval {
			slave.MissedBeats++
			if slave.MissedBeats >= s.cfg.MissedBeatsLimit {
				s.slaveLost(slave)
				continue
			}
			slave.State = SlaveSuspected
			s.slaves.UpdateSlave(slave)
		}
	}
}

// slaveLost implements spec.md §4.2 "Slave lost": running/assigned tasks
// return to pending with the same attempt; completed tasks whose buckets
// can no longer be fetched are rolled back transitively.
func (s *Scheduler) slaveLost(slave *SlaveInfo) {
	slave.State = SlaveLost
	s.slaves.UpdateSlave(slave)
	s.logger.Warn("slave lost", "slave_id", slave.ID, "endpoint", slave.Endpoint)

	for _, d := range s.graph.store.AllDatasets() {
		for _, t := range s.tasks.TasksForDataset(d.ID) {
			if t.AssignedTo != slave.ID {
				continue
			}
			switch t.State {
			case TaskAssigned, TaskRunning:
				s.requeue(d, t, t.Attempt)
			case TaskComplete:
				s.invalidate(d, t)
			}
		}
	}
	s.slaves.RemoveSlave(slave.ID)
	s.mu.Lock()
	s.notifyChanged()
	s.mu.Unlock()
}

func (s *Scheduler) requeue(d *Dataset, t *Task, attempt int) {
	t.State = TaskPending
	t.Attempt = attempt
	t.AssignedTo = ""
	t.Outputs = nil
	s.tasks.UpdateTask(t)
	s.mu.Lock()
	q, ok := s.ready[d.ID]
	if !ok {
		q = NewReadyQueue()
		s.ready[d.ID] = q
	}
	q.Push(t)
	s.notifyChanged()
	s.mu.Unlock()
}

// invalidate rolls back a completed task (its producer slave is gone) and
// transitively rolls back any consumer that already fetched from it.
func (s *Scheduler) invalidate(d *Dataset, t *Task) {
	t.Generation++
	s.requeue(d, t, t.Attempt)

	for _, cid := range s.graph.children[d.ID] {
		for _, ct := range s.tasks.TasksForDataset(cid) {
			if ct.State != TaskRunning && ct.State != TaskComplete && ct.State != TaskAssigned {
				continue
			}
			for _, src := range ct.Sources {
				if src.DatasetID == d.ID && src.SourceIndex == t.SplitIndex {
					cd, _ := s.graph.Dataset(cid)
					if ct.State == TaskComplete {
						s.invalidate(cd, ct)
					} else {
						s.requeue(cd, ct, ct.Attempt+1)
					}
					break
				}
			}
		}
	}
}

// ReportDone handles a slave's completion report (spec.md §4.5
// "report_done"). A completion from a stale generation/attempt is
// discarded (spec.md §4.2 "Duplicate completion").
func (s *Scheduler) ReportDone(slaveID string, id TaskID, attempt int, outputs []string) (ack bool) {
	t, ok := s.tasks.GetTask(id)
	if !ok || t.State == TaskComplete || attempt != t.Attempt || t.AssignedTo != slaveID {
		return false
	}
	t.State = TaskComplete
	t.Outputs = outputs
	now := time.Now()
	t.EndedAt = &now
	s.tasks.UpdateTask(t)

	slave, ok := s.slaves.GetSlave(slaveID)
	if ok {
		slave.Running--
		s.slaves.UpdateSlave(slave)
	}

	d, ok := s.graph.Dataset(id.DatasetID)
	if ok && s.datasetComplete(d) {
		s.graph.SetState(id.DatasetID, DatasetComplete)
		s.notifyDependents(id.DatasetID)
	}
	s.mu.Lock()
	s.notifyChanged()
	s.mu.Unlock()
	return true
}

// ReportFailed handles a slave's failure report (spec.md §4.5
// "report_failed", §4.2 "Task reported failed", §7). missing is non-nil
// when the failure was a fetch 404/410 against an upstream bucket (spec.md
// §7 "Bucket fetch error"): that producer task is invalidated and re-run
// rather than just retrying this consumer against the same stale bucket,
// the same rollback invalidate already performs for a lost slave's
// completed tasks.
func (s *Scheduler) ReportFailed(slaveID string, id TaskID, attempt int, reason string, missing *BucketRef) {
	t, ok := s.tasks.GetTask(id)
	if !ok || attempt != t.Attempt || t.AssignedTo != slaveID {
		return
	}

	slave, ok := s.slaves.GetSlave(slaveID)
	if ok {
		slave.Running--
		s.slaves.UpdateSlave(slave)
	}

	d, ok := s.graph.Dataset(id.DatasetID)
	if !ok {
		return
	}

	if missing != nil {
		producer, ok := s.tasks.GetTask(TaskID{DatasetID: missing.DatasetID, SplitIndex: missing.SourceIndex})
		if ok && producer.State == TaskComplete {
			if pd, ok := s.graph.Dataset(missing.DatasetID); ok {
				s.invalidate(pd, producer)
				return
			}
		}
	}

	if t.Attempt+1 < s.cfg.MaxAttempts {
		t.LastError = reason
		s.requeue(d, t, t.Attempt+1)
		return
	}

	t.State = TaskFailedFatal
	t.LastError = reason
	s.tasks.UpdateTask(t)
	s.abort(fmt.Sprintf("task %+v failed after %d attempts: %s", id, t.Attempt+1, reason))
}

func (s *Scheduler) abort(reason string) {
	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		return
	}
	s.aborted = true
	s.abortReason = reason
	for _, q := range s.ready {
		for q.Len() > 0 {
			q.Pop()
		}
	}
	s.notifyChanged()
	s.mu.Unlock()

	s.logger.Error("job aborted", "reason", reason)

	for _, d := range s.graph.store.AllDatasets() {
		s.graph.Close(d.ID)
		for _, t := range s.tasks.TasksForDataset(d.ID) {
			if t.State == TaskAssigned || t.State == TaskRunning {
				if slave, ok := s.slaves.GetSlave(t.AssignedTo); ok {
					ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
					_ = s.client.Cancel(ctx, slave, t.ID())
					cancel()
				}
			}
		}
	}
}

// Aborted reports whether the job has hit a fatal failure, and why.
func (s *Scheduler) Aborted() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted, s.abortReason
}

// Stop releases the assignment loop and any blocked Wait callers.
func (s *Scheduler) Stop() {
	close(s.closeCh)
}

// assignOnce walks ready tasks oldest-first across datasets (in submission
// order) and hands each to the most local idle slave it can find (spec.md
// §4.2 "Scheduling policy").
func (s *Scheduler) assignOnce(ctx context.Context) {
	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		return
	}
	order := append([]int64(nil), s.order...)
	s.mu.Unlock()

	for _, datasetID := range order {
		s.mu.Lock()
		q, ok := s.ready[datasetID]
		s.mu.Unlock()
		if !ok {
			continue
		}
		for {
			s.mu.Lock()
			if q.Len() == 0 {
				s.mu.Unlock()
				break
			}
			task, _ := q.Peek()
			s.mu.Unlock()

			d, ok := s.graph.Dataset(datasetID)
			if !ok {
				s.mu.Lock()
				q.Pop()
				s.mu.Unlock()
				continue
			}
			parents := s.parentsOf(d)

			slave := s.pickSlave(task)
			if slave == nil {
				break
			}

			s.mu.Lock()
			q.Pop()
			s.mu.Unlock()

			s.dispatch(ctx, slave, task, d, parents)
		}
	}
}

func (s *Scheduler) parentsOf(d *Dataset) map[int64]*Dataset {
	parents := make(map[int64]*Dataset, len(d.Sources))
	for _, pid := range d.Sources {
		if p, ok := s.graph.Dataset(pid); ok {
			parents[pid] = p
		}
	}
	return parents
}

// pickSlave implements the locality preference: a slave already holding
// one of the task's input splits wins; otherwise the first healthy slave
// under its capacity, in slave-ID order.
func (s *Scheduler) pickSlave(t *Task) *SlaveInfo {
	candidates := s.slaves.AllSlaves()
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })

	var idle []*SlaveInfo
	for _, sl := range candidates {
		if sl.State != SlaveHealthy {
			continue
		}
		capacity := sl.Capacity
		if capacity <= 0 {
			capacity = 1
		}
		if sl.Running < capacity {
			idle = append(idle, sl)
		}
	}
	if len(idle) == 0 {
		return nil
	}

	for _, ref := range t.Sources {
		src, ok := s.tasks.GetTask(TaskID{DatasetID: ref.DatasetID, SplitIndex: ref.SourceIndex})
		if !ok || src.AssignedTo == "" {
			continue
		}
		for _, sl := range idle {
			if sl.ID == src.AssignedTo {
				return sl
			}
		}
	}
	return idle[0]
}

func (s *Scheduler) dispatch(ctx context.Context, slave *SlaveInfo, t *Task, d *Dataset, parents map[int64]*Dataset) {
	t.State = TaskAssigned
	t.AssignedTo = slave.ID
	now := time.Now()
	t.AssignedAt = &now
	s.tasks.UpdateTask(t)

	slave.Running++
	s.slaves.UpdateSlave(slave)

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	accepted, err := s.client.Assign(cctx, slave, t, d, parents)
	cancel()

	if err != nil || !accepted {
		t.State = TaskPending
		t.AssignedTo = ""
		s.tasks.UpdateTask(t)
		slave.Running--
		s.slaves.UpdateSlave(slave)
		s.mu.Lock()
		q, ok := s.ready[d.ID]
		if !ok {
			q = NewReadyQueue()
			s.ready[d.ID] = q
		}
		q.Push(t)
		s.notifyChanged()
		s.mu.Unlock()
		return
	}

	t.State = TaskRunning
	s.tasks.UpdateTask(t)
	s.logger.Info("task assigned", "dataset_id", d.ID, "split_index", t.SplitIndex, "attempt", t.Attempt, "slave_id", slave.ID)
}
