package core

import "errors"

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetClosed   = errors.New("dataset is closed")
	ErrInvalidSplits   = errors.New("num_splits must be positive")
	ErrFanOutMismatch  = errors.New("consumer split count does not match dataset's existing fan-out")
	ErrJobAborted      = errors.New("job aborted")
)

// DatasetStore owns the dataset graph's nodes. Implementations are only
// ever reached through Scheduler/Graph, never concurrently from outside.
type DatasetStore interface {
	PutDataset(d *Dataset)
	GetDataset(id int64) (*Dataset, bool)
	AllDatasets() []*Dataset
}

// TaskStore owns per-dataset task slices.
type TaskStore interface {
	PutTasks(datasetID int64, tasks []*Task)
	GetTask(id TaskID) (*Task, bool)
	TasksForDataset(datasetID int64) []*Task
	UpdateTask(t *Task)
}

// SlaveStore owns registered slave bookkeeping.
type SlaveStore interface {
	AddSlave(s *SlaveInfo)
	GetSlave(id string) (*SlaveInfo, bool)
	AllSlaves() []*SlaveInfo
	UpdateSlave(s *SlaveInfo)
	RemoveSlave(id string)
}
