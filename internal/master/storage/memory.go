// Package storage holds the master's in-memory implementations of
// core.DatasetStore, core.TaskStore and core.SlaveStore, generalized from
// the teacher's InMemoryJobStore (one job/task map pair guarded by a single
// mutex) to the dataset DAG's three stores.
package storage

import (
	"sync"

	"github.com/kbecker/mrs/internal/master/core"
)

// InMemoryDatasetStore holds every dataset submitted to a job, keyed by id.
type InMemoryDatasetStore struct {
	mu       sync.RWMutex
	datasets map[int64]*core.Dataset
}

func NewInMemoryDatasetStore() *InMemoryDatasetStore {
	return &InMemoryDatasetStore{datasets: make(map[int64]*core.Dataset)}
}

func (s *InMemoryDatasetStore) PutDataset(d *core.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[d.ID] = d
}

func (s *InMemoryDatasetStore) GetDataset(id int64) (*core.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[id]
	return d, ok
}

func (s *InMemoryDatasetStore) AllDatasets() []*core.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, d)
	}
	return out
}

// InMemoryTaskStore holds every dataset's task slice, keyed by dataset id.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[int64][]*core.Task
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[int64][]*core.Task)}
}

func (s *InMemoryTaskStore) PutTasks(datasetID int64, tasks []*core.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[datasetID] = tasks
}

func (s *InMemoryTaskStore) GetTask(id core.TaskID) (*core.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks[id.DatasetID] {
		if t.SplitIndex == id.SplitIndex {
			return t, true
		}
	}
	return nil, false
}

func (s *InMemoryTaskStore) TasksForDataset(datasetID int64) []*core.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[datasetID]
}

func (s *InMemoryTaskStore) UpdateTask(t *core.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.tasks[t.DatasetID]
	for i, existing := range tasks {
		if existing.SplitIndex == t.SplitIndex {
			tasks[i] = t
			return
		}
	}
	s.tasks[t.DatasetID] = append(tasks, t)
}

// InMemorySlaveStore holds every slave currently registered with the master.
type InMemorySlaveStore struct {
	mu     sync.RWMutex
	slaves map[string]*core.SlaveInfo
}

func NewInMemorySlaveStore() *InMemorySlaveStore {
	return &InMemorySlaveStore{slaves: make(map[string]*core.SlaveInfo)}
}

func (s *InMemorySlaveStore) AddSlave(sl *core.SlaveInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slaves[sl.ID] = sl
}

func (s *InMemorySlaveStore) GetSlave(id string) (*core.SlaveInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slaves[id]
	return sl, ok
}

func (s *InMemorySlaveStore) AllSlaves() []*core.SlaveInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.SlaveInfo, 0, len(s.slaves))
	for _, sl := range s.slaves {
		out = append(out, sl)
	}
	return out
}

func (s *InMemorySlaveStore) UpdateSlave(sl *core.SlaveInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slaves[sl.ID] = sl
}

func (s *InMemorySlaveStore) RemoveSlave(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slaves, id)
}
