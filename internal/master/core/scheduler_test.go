package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kbecker/mrs/internal/shared/logging"
)

// The stores below are minimal in-process fakes so this test exercises only
// Scheduler/Graph/ReadyQueue, not internal/master/storage's implementation
// (which has its own tests).

type memDatasetStore struct {
	mu sync.RWMutex
	m  map[int64]*Dataset
}

func newMemDatasetStore() *memDatasetStore { return &memDatasetStore{m: make(map[int64]*Dataset)} }

func (s *memDatasetStore) PutDataset(d *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[d.ID] = d
}

func (s *memDatasetStore) GetDataset(id int64) (*Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.m[id]
	return d, ok
}

func (s *memDatasetStore) AllDatasets() []*Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Dataset, 0, len(s.m))
	for _, d := range s.m {
		out = append(out, d)
	}
	return out
}

type memTaskStore struct {
	mu sync.RWMutex
	m  map[int64][]*Task
}

func newMemTaskStore() *memTaskStore { return &memTaskStore{m: make(map[int64][]*Task)} }

func (s *memTaskStore) PutTasks(datasetID int64, tasks []*Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[datasetID] = tasks
}

func (s *memTaskStore) GetTask(id TaskID) (*Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.m[id.DatasetID] {
		if t.SplitIndex == id.SplitIndex {
			return t, true
		}
	}
	return nil, false
}

func (s *memTaskStore) TasksForDataset(datasetID int64) []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[datasetID]
}

func (s *memTaskStore) UpdateTask(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.m[t.DatasetID]
	for i, existing := range tasks {
		if existing.SplitIndex == t.SplitIndex {
			tasks[i] = t
			return
		}
	}
	s.m[t.DatasetID] = append(tasks, t)
}

type memSlaveStore struct {
	mu sync.RWMutex
	m  map[string]*SlaveInfo
}

func newMemSlaveStore() *memSlaveStore { return &memSlaveStore{m: make(map[string]*SlaveInfo)} }

func (s *memSlaveStore) AddSlave(sl *SlaveInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sl.ID] = sl
}

func (s *memSlaveStore) GetSlave(id string) (*SlaveInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.m[id]
	return sl, ok
}

func (s *memSlaveStore) AllSlaves() []*SlaveInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SlaveInfo, 0, len(s.m))
	for _, sl := range s.m {
		out = append(out, sl)
	}
	return out
}

func (s *memSlaveStore) UpdateSlave(sl *SlaveInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sl.ID] = sl
}

func (s *memSlaveStore) RemoveSlave(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

var logSilence = slog.LevelError + 4

// fakeSlaveClient simulates task execution without a real slave process:
// every Assign immediately "completes" the task in a background goroutine,
// recording which slave ran which task so tests can assert locality and
// load-balancing.
type fakeSlaveClient struct {
	mu          sync.Mutex
	scheduler   *Scheduler
	ran         []ranTask
	fail        map[TaskID]int         // taskID -> number of remaining forced failures
	missingOnce map[TaskID]*BucketRef  // taskID -> producer ref to report missing, once
	dropped     []TaskID
}

type ranTask struct {
	slaveID    string
	datasetID  int64
	splitIndex int
}

func (f *fakeSlaveClient) Assign(ctx context.Context, slave *SlaveInfo, t *Task, d *Dataset, parents map[int64]*Dataset) (bool, error) {
	f.mu.Lock()
	f.ran = append(f.ran, ranTask{slaveID: slave.ID, datasetID: t.DatasetID, splitIndex: t.SplitIndex})
	remaining := f.fail[t.ID()]
	if remaining > 0 {
		f.fail[t.ID()] = remaining - 1
	}
	missing := f.missingOnce[t.ID()]
	if missing != nil {
		delete(f.missingOnce, t.ID())
	}
	f.mu.Unlock()

	go func() {
		if missing != nil {
			f.scheduler.ReportFailed(slave.ID, t.ID(), t.Attempt, "simulated bucket fetch 404", missing)
			return
		}
		if remaining > 0 {
			f.scheduler.ReportFailed(slave.ID, t.ID(), t.Attempt, "simulated failure", nil)
			return
		}
		outputs := make([]string, d.FanOut)
		for i := range outputs {
			outputs[i] = fmt.Sprintf("http://%s/bucket/%d/%d/%d", slave.Endpoint, t.DatasetID, t.SplitIndex, i)
		}
		f.scheduler.ReportDone(slave.ID, t.ID(), t.Attempt, outputs)
	}()
	return true, nil
}

func (f *fakeSlaveClient) Cancel(ctx context.Context, slave *SlaveInfo, id TaskID) error {
	return nil
}

func (f *fakeSlaveClient) DropBucket(ctx context.Context, slave *SlaveInfo, id TaskID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped = append(f.dropped, id)
	return nil
}

type noopLocalWriter struct{}

func (noopLocalWriter) WriteLocal(d *Dataset) ([]string, error) {
	urls := make([]string, d.FanOut)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://master/bucket/%d/0/%d", d.ID, i)
	}
	return urls, nil
}

func newTestScheduler(t *testing.T, client *fakeSlaveClient) *Scheduler {
	datasets := newMemDatasetStore()
	tasks := newMemTaskStore()
	slaves := newMemSlaveStore()
	graph := NewGraph(datasets)
	logger := logging.NewSlogLogger(logSilence)

	sched := NewScheduler(graph, tasks, slaves, client, noopLocalWriter{}, logger, Config{
		MaxAttempts:       3,
		HeartbeatInterval: 50 * time.Millisecond,
		MissedBeatsLimit:  3,
	})
	client.scheduler = sched
	client.fail = make(map[TaskID]int)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		sched.Stop()
	})
	go sched.Run(ctx)
	return sched
}

// TestWordCountScenarioAcrossTwoSlaves runs the classic file_data -> map_data
// -> reduce_data pipeline across two registered slaves and checks that every
// task reaches completion and the reduce dataset's Wait unblocks.
func TestWordCountScenarioAcrossTwoSlaves(t *testing.T) {
	client := &fakeSlaveClient{}
	sched := newTestScheduler(t, client)

	sched.RegisterSlave(&SlaveInfo{ID: "slave-a", Endpoint: "10.0.0.1:9001", Capacity: 2})
	sched.RegisterSlave(&SlaveInfo{ID: "slave-b", Endpoint: "10.0.0.2:9001", Capacity: 2})

	src, err := sched.Submit(DatasetSpec{
		Kind:      DatasetSourceURL,
		URLs:      []string{"file:///a.txt", "file:///b.txt"},
		NumSplits: 2,
	})
	if err != nil {
		t.Fatalf("submit source: %v", err)
	}

	mapped, err := sched.Submit(DatasetSpec{
		Kind:      DatasetMap,
		Sources:   []int64{src},
		NumSplits: 2,
		Mapper:    "wordcount",
	})
	if err != nil {
		t.Fatalf("submit map: %v", err)
	}

	reduced, err := sched.Submit(DatasetSpec{
		Kind:      DatasetReduce,
		Sources:   []int64{mapped},
		NumSplits: 2,
		Reducer:   "wordcount",
	})
	if err != nil {
		t.Fatalf("submit reduce: %v", err)
	}

	done, err := sched.Wait([]int64{reduced}, 5*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(done) != 1 || done[0] != reduced {
		t.Fatalf("Wait() = %v, want [%d]", done, reduced)
	}

	progress, err := sched.Progress(reduced)
	if err != nil || progress != 1 {
		t.Fatalf("Progress(reduced) = %v, %v, want 1, nil", progress, err)
	}

	for _, id := range []int64{mapped, reduced} {
		for _, task := range sched.TasksForDataset(id) {
			if task.State != TaskComplete {
				t.Errorf("dataset %d split %d not complete: %v", id, task.SplitIndex, task.State)
			}
			if len(task.Outputs) == 0 {
				t.Errorf("dataset %d split %d has no outputs", id, task.SplitIndex)
			}
		}
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	slavesUsed := make(map[string]bool)
	for _, r := range client.ran {
		slavesUsed[r.slaveID] = true
	}
	if len(slavesUsed) == 0 {
		t.Fatal("no tasks were ever assigned to a slave")
	}
}

// TestSchedulerRetriesFailedTaskThenSucceeds checks that a task which fails
// once is requeued and completes on a subsequent attempt, within
// MaxAttempts.
func TestSchedulerRetriesFailedTaskThenSucceeds(t *testing.T) {
	client := &fakeSlaveClient{}
	sched := newTestScheduler(t, client)
	sched.RegisterSlave(&SlaveInfo{ID: "slave-a", Endpoint: "10.0.0.1:9001", Capacity: 1})

	src, err := sched.Submit(DatasetSpec{
		Kind:      DatasetSourceURL,
		URLs:      []string{"file:///a.txt"},
		NumSplits: 1,
	})
	if err != nil {
		t.Fatalf("submit source: %v", err)
	}
	mapped, err := sched.Submit(DatasetSpec{
		Kind:      DatasetMap,
		Sources:   []int64{src},
		NumSplits: 1,
		Mapper:    "wordcount",
	})
	if err != nil {
		t.Fatalf("submit map: %v", err)
	}

	client.mu.Lock()
	client.fail[TaskID{DatasetID: mapped, SplitIndex: 0}] = 1
	client.mu.Unlock()

	done, err := sched.Wait([]int64{mapped}, 5*time.Second)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(done) != 1 {
		t.Fatalf("expected mapped dataset to eventually complete, got %v", done)
	}
}

// TestSchedulerReassignsCompletedProducerAfterSlaveLost exercises spec.md
// §8's "slave lost after reporting a task done" boundary: a producer task
// already marked complete has its slave disappear, the scheduler bumps its
// generation and reassigns it to a surviving slave, and a dataset
// submitted afterward that reads from it still completes — catching any
// regression where a consumer's BucketRef is dispatched with a stale
// generation and permanently 410s against the bucket store.
func TestSchedulerReassignsCompletedProducerAfterSlaveLost(t *testing.T) {
	client := &fakeSlaveClient{}
	sched := newTestScheduler(t, client)
	sched.RegisterSlave(&SlaveInfo{ID: "slave-a", Endpoint: "10.0.0.1:9001", Capacity: 2})

	src, err := sched.Submit(DatasetSpec{Kind: DatasetSourceURL, URLs: []string{"file:///a.txt"}, NumSplits: 1})
	if err != nil {
		t.Fatalf("submit source: %v", err)
	}
	mapped, err := sched.Submit(DatasetSpec{Kind: DatasetMap, Sources: []int64{src}, NumSplits: 1, Mapper: "wordcount"})
	if err != nil {
		t.Fatalf("submit map: %v", err)
	}

	if _, err := sched.Wait([]int64{mapped}, 5*time.Second); err != nil {
		t.Fatalf("wait for first completion: %v", err)
	}

	beforeLoss := *sched.TasksForDataset(mapped)[0]
	if beforeLoss.AssignedTo != "slave-a" {
		t.Fatalf("expected slave-a to have produced the map task, got %q", beforeLoss.AssignedTo)
	}

	// Register a second slave so the lost producer has somewhere to be
	// reassigned to, then force slave-a past MissedBeatsLimit without ever
	// sending it a heartbeat.
	sched.RegisterSlave(&SlaveInfo{ID: "slave-b", Endpoint: "10.0.0.2:9001", Capacity: 2})

	var slaveA *SlaveInfo
	for _, sl := range sched.AllSlaves() {
		if sl.ID == "slave-a" {
			slaveA = sl
		}
	}
	if slaveA == nil {
		t.Fatal("slave-a missing from AllSlaves")
	}
	slaveA.LastHeartbeat = time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		sched.CheckHeartbeats()
	}

	// The completed map task must have been invalidated (generation bumped,
	// requeued) and picked back up by slave-b.
	if _, err := sched.Wait([]int64{mapped}, 5*time.Second); err != nil {
		t.Fatalf("wait for map task to be reassigned and recomplete: %v", err)
	}
	afterLoss := sched.TasksForDataset(mapped)[0]
	if afterLoss.Generation <= beforeLoss.Generation {
		t.Fatalf("expected generation to advance past %d after slave loss, got %d", beforeLoss.Generation, afterLoss.Generation)
	}
	if afterLoss.AssignedTo != "slave-b" {
		t.Fatalf("expected map task reassigned to slave-b, got %q", afterLoss.AssignedTo)
	}

	// A dataset submitted only now must still resolve its source's live
	// generation at dispatch time, not the zero value baked in at
	// Materialize time.
	reduced, err := sched.Submit(DatasetSpec{Kind: DatasetReduce, Sources: []int64{mapped}, NumSplits: 1, Reducer: "wordcount"})
	if err != nil {
		t.Fatalf("submit reduce: %v", err)
	}

	done, err := sched.Wait([]int64{reduced}, 5*time.Second)
	if err != nil {
		t.Fatalf("wait for reduce after producer reassignment: %v", err)
	}
	if len(done) != 1 || done[0] != reduced {
		t.Fatalf("Wait() = %v, want [%d]", done, reduced)
	}

	reduceTask := sched.TasksForDataset(reduced)[0]
	if reduceTask.State != TaskComplete || len(reduceTask.Outputs) == 0 {
		t.Fatalf("reduce task did not complete cleanly: %+v", reduceTask)
	}
}

// TestSchedulerReportFailedMissingInputInvalidatesProducer exercises
// spec.md §7's "Bucket fetch error" boundary reactively: a consumer whose
// fetch 404s against a healthy producer's bucket (the producer's slave
// never went away — reported via ReportFailed's missing ref, not
// slaveLost) must have that producer invalidated and re-run, and the
// consumer re-run against the producer's new output, rather than the
// consumer just retrying against the same now-missing bucket until the
// retry bound aborts the job.
func TestSchedulerReportFailedMissingInputInvalidatesProducer(t *testing.T) {
	client := &fakeSlaveClient{missingOnce: make(map[TaskID]*BucketRef)}
	sched := newTestScheduler(t, client)
	sched.RegisterSlave(&SlaveInfo{ID: "slave-a", Endpoint: "10.0.0.1:9001", Capacity: 2})

	src, err := sched.Submit(DatasetSpec{Kind: DatasetSourceURL, URLs: []string{"file:///a.txt"}, NumSplits: 1})
	if err != nil {
		t.Fatalf("submit source: %v", err)
	}
	mapped, err := sched.Submit(DatasetSpec{Kind: DatasetMap, Sources: []int64{src}, NumSplits: 1, Mapper: "wordcount"})
	if err != nil {
		t.Fatalf("submit map: %v", err)
	}
	reduced, err := sched.Submit(DatasetSpec{Kind: DatasetReduce, Sources: []int64{mapped}, NumSplits: 1, Reducer: "wordcount"})
	if err != nil {
		t.Fatalf("submit reduce: %v", err)
	}

	if _, err := sched.Wait([]int64{mapped}, 5*time.Second); err != nil {
		t.Fatalf("wait for map: %v", err)
	}
	mapTaskBefore := *sched.TasksForDataset(mapped)[0]

	reduceTaskID := sched.TasksForDataset(reduced)[0].ID()
	client.mu.Lock()
	client.missingOnce[reduceTaskID] = &BucketRef{DatasetID: mapped, SourceIndex: mapTaskBefore.SplitIndex, SplitIndex: 0, Generation: mapTaskBefore.Generation}
	client.mu.Unlock()

	done, err := sched.Wait([]int64{reduced}, 5*time.Second)
	if err != nil {
		t.Fatalf("wait for reduce after missing-input report: %v", err)
	}
	if len(done) != 1 || done[0] != reduced {
		t.Fatalf("Wait() = %v, want [%d]", done, reduced)
	}

	mapTaskAfter := sched.TasksForDataset(mapped)[0]
	if mapTaskAfter.Generation <= mapTaskBefore.Generation {
		t.Fatalf("expected producer generation to advance past %d, got %d", mapTaskBefore.Generation, mapTaskAfter.Generation)
	}

	reduceTask := sched.TasksForDataset(reduced)[0]
	if reduceTask.State != TaskComplete || len(reduceTask.Outputs) == 0 {
		t.Fatalf("reduce task did not complete cleanly: %+v", reduceTask)
	}
}

// TestSchedulerRejectsFanOutMismatch exercises the fan-out binding
// invariant directly on the scheduler's Submit.
func TestSchedulerRejectsFanOutMismatch(t *testing.T) {
	client := &fakeSlaveClient{}
	sched := newTestScheduler(t, client)

	src, err := sched.Submit(DatasetSpec{
		Kind:      DatasetSourceURL,
		URLs:      []string{"file:///a.txt"},
		NumSplits: 1,
	})
	if err != nil {
		t.Fatalf("submit source: %v", err)
	}
	if _, err := sched.Submit(DatasetSpec{Kind: DatasetMap, Sources: []int64{src}, NumSplits: 2, Mapper: "wordcount"}); err != nil {
		t.Fatalf("first consumer: %v", err)
	}
	if _, err := sched.Submit(DatasetSpec{Kind: DatasetMap, Sources: []int64{src}, NumSplits: 3, Mapper: "wordcount"}); !errors.Is(err, ErrFanOutMismatch) {
		t.Fatalf("expected ErrFanOutMismatch, got %v", err)
	}
}
