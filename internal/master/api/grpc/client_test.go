package grpc

import (
	"testing"

	"github.com/kbecker/mrs/internal/master/core"
)

// fakeTaskStore is a minimal core.TaskStore so resolveSources can be
// exercised without a real scheduler or any network connection.
type fakeTaskStore struct {
	tasks map[core.TaskID]*core.Task
}

func newFakeTaskStore() *fakeTaskStore { return &fakeTaskStore{tasks: make(map[core.TaskID]*core.Task)} }

func (s *fakeTaskStore) PutTasks(datasetID int64, tasks []*core.Task) {}

func (s *fakeTaskStore) GetTask(id core.TaskID) (*core.Task, bool) {
	t, ok := s.tasks[id]
	return t, ok
}

func (s *fakeTaskStore) TasksForDataset(datasetID int64) []*core.Task { return nil }

func (s *fakeTaskStore) UpdateTask(t *core.Task) { s.tasks[t.ID()] = t }

// TestResolveSourcesUsesProducerLiveGeneration reproduces spec.md §4.2's
// reassignment-correctness requirement directly against the wire-building
// code: a BucketRef is always materialized with Generation 0
// (internal/master/core/graph.go never knows a later generation), but by
// the time a consumer task is actually dispatched, the producer task it
// names may have been reassigned after its slave was lost and now sits on
// a higher generation. resolveSources must read that live value, not the
// stale ref.
func TestResolveSourcesUsesProducerLiveGeneration(t *testing.T) {
	tasks := newFakeTaskStore()
	tasks.UpdateTask(&core.Task{
		DatasetID:  1,
		SplitIndex: 0,
		Generation: 2,
		Outputs:    []string{"http://slave-b:9001/bucket/1/0/0"},
	})

	pool := NewClientPool(tasks)
	refs := []core.BucketRef{{DatasetID: 1, SourceIndex: 0, SplitIndex: 0, Generation: 0}}
	parents := map[int64]*core.Dataset{1: {ID: 1, Kind: core.DatasetMap}}

	wire, urls, raw := pool.resolveSources(refs, parents)

	if len(wire) != 1 || wire[0].Generation != 2 {
		t.Fatalf("resolveSources wire generation = %+v, want Generation=2", wire)
	}
	if len(urls) != 1 || urls[0] != "http://slave-b:9001/bucket/1/0/0" {
		t.Fatalf("resolveSources urls = %v, want the producer's current output", urls)
	}
	if len(raw) != 1 || raw[0] {
		t.Fatalf("resolveSources raw = %v, want false for a MAP producer", raw)
	}
}

// TestResolveSourcesFlagsSourceURLParentAsRaw covers a ref whose producer
// dataset is SOURCE_URL: materializeSourceURL stamps such a task's output
// with the raw URL itself, never a framed bucket, so resolveSources must
// flag it raw for the slave to read as plain lines.
func TestResolveSourcesFlagsSourceURLParentAsRaw(t *testing.T) {
	tasks := newFakeTaskStore()
	tasks.UpdateTask(&core.Task{
		DatasetID:  2,
		SplitIndex: 0,
		Generation: 0,
		Outputs:    []string{"input.txt"},
	})

	pool := NewClientPool(tasks)
	refs := []core.BucketRef{{DatasetID: 2, SourceIndex: 0, SplitIndex: 0, Generation: 0}}
	parents := map[int64]*core.Dataset{2: {ID: 2, Kind: core.DatasetSourceURL}}

	wire, urls, raw := pool.resolveSources(refs, parents)

	if len(wire) != 1 {
		t.Fatalf("resolveSources wire = %+v, want one entry", wire)
	}
	if len(urls) != 1 || urls[0] != "input.txt" {
		t.Fatalf("resolveSources urls = %v, want the source task's raw URL", urls)
	}
	if len(raw) != 1 || !raw[0] {
		t.Fatalf("resolveSources raw = %v, want true for a SOURCE_URL producer", raw)
	}
}

// TestResolveSourcesFallsBackWhenProducerUnknown covers a source whose
// producer task cannot be found in the store (should never happen in
// practice, but resolveSources must not panic): it falls back to the ref's
// own generation and an empty URL instead.
func TestResolveSourcesFallsBackWhenProducerUnknown(t *testing.T) {
	pool := NewClientPool(newFakeTaskStore())
	refs := []core.BucketRef{{DatasetID: 99, SourceIndex: 0, SplitIndex: 0, Generation: 3}}

	wire, urls, raw := pool.resolveSources(refs, nil)

	if len(wire) != 1 || wire[0].Generation != 3 {
		t.Fatalf("resolveSources wire = %+v, want fallback Generation=3", wire)
	}
	if len(urls) != 1 || urls[0] != "" {
		t.Fatalf("resolveSources urls = %v, want empty URL for unknown producer", urls)
	}
	if len(raw) != 1 || raw[0] {
		t.Fatalf("resolveSources raw = %v, want false when the parent dataset is unknown", raw)
	}
}
