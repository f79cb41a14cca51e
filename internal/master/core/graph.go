package core

import (
	"fmt"
	"sync"
	"time"
)

// DatasetSpec is the set of attributes a caller supplies when submitting a
// new dataset (spec.md §3 "Dataset").
type DatasetSpec struct {
	Kind    DatasetKind
	Sources []int64

	NumSplits int
	OutputDir string

	Partitioner string
	Mapper      string
	Reducer     string
	Combiner    string

	KeySerializer   string
	ValueSerializer string

	URLs  []string
	Local []Record
}

// Graph owns the dataset DAG. Submission is non-blocking: it only mutates
// in-memory state guarded by a mutex (spec.md §4.1).
type Graph struct {
	mu       sync.Mutex
	store    DatasetStore
	nextID   int64
	children map[int64][]int64 // dataset -> datasets that declare it as a source
}

// NewGraph returns an empty dataset graph backed by store.
func NewGraph(store DatasetStore) *Graph {
	return &Graph{
		store:    store,
		children: make(map[int64][]int64),
	}
}

// Submit registers a new dataset node. It validates referenced parents
// exist and are not closed, and binds/validates the dataset's FanOut
// against each parent it names as a source (see SPEC_FULL.md §3).
func (g *Graph) Submit(spec DatasetSpec) (int64, error) {
	if !spec.Kind.IsSource() && spec.NumSplits <= 0 {
		return 0, ErrInvalidSplits
	}
	if spec.Kind == DatasetSourceURL && spec.NumSplits <= 0 {
		spec.NumSplits = len(spec.URLs)
	}
	if spec.Kind == DatasetSourceLocal {
		// There is exactly one in-memory capture to partition, so a
		// local_data dataset is always one zero-compute task; its `splits`
		// option (if the caller passed one) has no task-count meaning here
		// and is ignored — the partition count is FanOut, bound from the
		// first consumer exactly like any other dataset (see DESIGN.md).
		spec.NumSplits = 1
	}
	if spec.NumSplits <= 0 {
		return 0, ErrInvalidSplits
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	parents := make([]*Dataset, 0, len(spec.Sources))
	for _, pid := range spec.Sources {
		p, ok := g.store.GetDataset(pid)
		if !ok {
			return 0, fmt.Errorf("%w: parent dataset %d", ErrDatasetNotFound, pid)
		}
		if p.Closed {
			return 0, fmt.Errorf("%w: parent dataset %d", ErrDatasetClosed, pid)
		}
		parents = append(parents, p)
	}

	for _, p := range parents {
		if err := g.bindFanOut(p, spec.NumSplits); err != nil {
			return 0, fmt.Errorf("dataset %d: %w", p.ID, err)
		}
	}

	g.nextID++
	id := g.nextID

	d := &Dataset{
		ID:              id,
		Kind:            spec.Kind,
		Sources:         spec.Sources,
		NumSplits:       spec.NumSplits,
		OutputDir:       spec.OutputDir,
		Partitioner:     spec.Partitioner,
		Mapper:          spec.Mapper,
		Reducer:         spec.Reducer,
		Combiner:        spec.Combiner,
		KeySerializer:   spec.KeySerializer,
		ValueSerializer: spec.ValueSerializer,
		URLs:            spec.URLs,
		Local:           spec.Local,
		State:           DatasetSubmitted,
		SubmittedAt:     time.Now(),
		FanOut:          1,
	}
	g.store.PutDataset(d)

	for _, pid := range spec.Sources {
		g.children[pid] = append(g.children[pid], id)
	}

	return id, nil
}

// bindFanOut ties parent's FanOut to numSplits the first time parent gains
// a consumer, and rejects a second consumer that disagrees.
func (g *Graph) bindFanOut(parent *Dataset, numSplits int) error {
	if len(g.children[parent.ID]) == 0 {
		parent.FanOut = numSplits
		g.store.PutDataset(parent)
		return nil
	}
	if parent.FanOut != numSplits {
		return ErrFanOutMismatch
	}
	return nil
}

// Dataset returns the dataset with the given id.
func (g *Graph) Dataset(id int64) (*Dataset, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.store.GetDataset(id)
}

// Close marks a dataset closed. Closing an already-closed dataset is a
// no-op (spec.md §8 "Round-trip / idempotence").
func (g *Graph) Close(id int64) (*Dataset, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.store.GetDataset(id)
	if !ok {
		return nil, false
	}
	if d.Closed {
		return d, true
	}
	d.Closed = true
	d.State = DatasetClosed
	g.store.PutDataset(d)
	return d, true
}

// SetState updates a dataset's lifecycle state.
func (g *Graph) SetState(id int64, state DatasetState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.store.GetDataset(id)
	if !ok {
		return
	}
	d.State = state
	g.store.PutDataset(d)
}

// OpenConsumers reports whether any non-closed dataset still names id as a
// source, used to decide bucket GC eligibility (spec.md §3 invariants).
func (g *Graph) OpenConsumers(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, cid := range g.children[id] {
		c, ok := g.store.GetDataset(cid)
		if !ok {
			continue
		}
		if !c.Closed {
			return true
		}
	}
	return false
}

// Materialize builds the []*Task for a non-source dataset whose parents
// are all complete, or for a source dataset immediately. A map task over a
// SOURCE_URL parent takes that parent's whole-file splits round-robin
// (mapSources); every other map, reduce, or reduce-then-map task i gathers
// split i from every producer task of its parents.
// BucketRef.Generation is left at its zero value here: a producer's
// generation can advance after its consumer's task is materialized (a
// slave holding an already-complete producer can still be lost), so the
// live generation is resolved at dispatch time instead, not baked in here.
func Materialize(d *Dataset, parents map[int64]*Dataset) []*Task {
	tasks := make([]*Task, d.NumSplits)

	switch d.Kind {
	case DatasetSourceURL, DatasetSourceLocal:
		for i := range tasks {
			tasks[i] = &Task{
				DatasetID:  d.ID,
				SplitIndex: i,
				State:      TaskPending,
				CreatedAt:  time.Now(),
			}
		}
		return tasks

	case DatasetMap:
		parent := parents[d.Sources[0]]
		for i := range tasks {
			tasks[i] = &Task{
				DatasetID:  d.ID,
				SplitIndex: i,
				State:      TaskPending,
				Sources:    mapSources(parent, d.NumSplits, i),
				CreatedAt:  time.Now(),
			}
		}
		return tasks

	case DatasetReduce, DatasetReduceMap:
		for i := range tasks {
			var srcs []BucketRef
			for _, pid := range d.Sources {
				parent := parents[pid]
				for srcIdx := 0; srcIdx < parent.NumSplits; srcIdx++ {
					srcs = append(srcs, BucketRef{DatasetID: parent.ID, SourceIndex: srcIdx, SplitIndex: i})
				}
			}
			tasks[i] = &Task{
				DatasetID:  d.ID,
				SplitIndex: i,
				State:      TaskPending,
				Sources:    srcs,
				CreatedAt:  time.Now(),
			}
		}
		return tasks
	}

	return tasks
}

// mapSources computes the upstream bucket refs for map task index i out of
// numTasks total.
//
// A DatasetSourceURL parent's splits are unpartitioned whole files (each
// source task is one whole bucket at split 0, independent of any
// consumer's split count), so they are distributed round robin across
// consumer tasks — a map task may legitimately take several whole input
// files. Every other parent kind (SourceLocal included) already has its
// FanOut bound to numTasks (bindFanOut, at this consumer's own
// submission), meaning every one of its producer tasks wrote exactly
// numTasks outputs; task i must then gather split i from every producer
// task, the same full-gather rule DatasetReduce/DatasetReduceMap use.
func mapSources(parent *Dataset, numTasks, i int) []BucketRef {
	if parent.Kind == DatasetSourceURL {
		groups := groupRoundRobin(parent.NumSplits, numTasks)
		srcs := make([]BucketRef, 0, len(groups[i]))
		for _, srcIdx := range groups[i] {
			srcs = append(srcs, BucketRef{DatasetID: parent.ID, SourceIndex: srcIdx, SplitIndex: 0})
		}
		return srcs
	}

	srcs := make([]BucketRef, 0, parent.NumSplits)
	for srcIdx := 0; srcIdx < parent.NumSplits; srcIdx++ {
		srcs = append(srcs, BucketRef{DatasetID: parent.ID, SourceIndex: srcIdx, SplitIndex: i})
	}
	return srcs
}

// groupRoundRobin splits [0,n) into k groups as evenly as possible,
// round-robin, preserving order within each group.
func groupRoundRobin(n, k int) [][]int {
	if k <= 0 {
		k = 1
	}
	groups := make([][]int, k)
	for i := 0; i < n; i++ {
		groups[i%k] = append(groups[i%k], i)
	}
	return groups
}
