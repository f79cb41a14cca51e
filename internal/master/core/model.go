package core

import "time"

// DatasetKind identifies how a dataset produces its records.
type DatasetKind string

const (
	DatasetSourceURL   DatasetKind = "SOURCE_URL"
	DatasetSourceLocal DatasetKind = "SOURCE_LOCAL"
	DatasetMap         DatasetKind = "MAP"
	DatasetReduce      DatasetKind = "REDUCE"
	DatasetReduceMap   DatasetKind = "REDUCE_MAP"
)

func (k DatasetKind) IsSource() bool {
	return k == DatasetSourceURL || k == DatasetSourceLocal
}

// DatasetState tracks a dataset through its lifecycle (spec.md "Lifecycles").
type DatasetState string

const (
	DatasetSubmitted DatasetState = "SUBMITTED"
	DatasetRunning   DatasetState = "RUNNING"
	DatasetComplete  DatasetState = "COMPLETE"
	DatasetClosed    DatasetState = "CLOSED"
	DatasetAborted   DatasetState = "ABORTED"
)

// Dataset is an immutable-once-submitted node of the job's dataset graph.
type Dataset struct {
	ID      int64
	Kind    DatasetKind
	Sources []int64

	NumSplits int
	// FanOut is the number of output buckets each of this dataset's tasks
	// writes. It is bound to the NumSplits of the first dataset that
	// registers this one as a source, and defaults to 1 for a dataset with
	// no consumer (see SPEC_FULL.md §3).
	FanOut int

	OutputDir string

	Partitioner string
	Mapper      string
	Reducer     string
	Combiner    string

	KeySerializer   string
	ValueSerializer string

	// URLs holds the source-from-URL addresses, one per split, when Kind
	// is DatasetSourceURL.
	URLs []string

	// Local holds the captured in-process records for a
	// source-from-local-iterator dataset. Only populated on the master.
	Local []Record

	State  DatasetState
	Closed bool

	SubmittedAt time.Time
}

// Record is an in-memory key/value pair, used for local source data and for
// the job driver's FetchAll/Data results.
type Record struct {
	Key   []byte
	Value []byte
}

// TaskState is a task's position in its lifecycle (spec.md "Lifecycles").
type TaskState string

const (
	TaskPending     TaskState = "PENDING"
	TaskAssigned    TaskState = "ASSIGNED"
	TaskRunning     TaskState = "RUNNING"
	TaskComplete    TaskState = "COMPLETE"
	TaskFailedRetry TaskState = "FAILED_RETRYABLE"
	TaskFailedFatal TaskState = "FAILED_FATAL"
)

// BucketRef names one upstream bucket a task reads from.
type BucketRef struct {
	DatasetID   int64
	SourceIndex int
	SplitIndex  int
	Generation  int
}

// Task is a schedulable unit: one split of a non-source dataset, or one
// already-complete split of a source dataset.
type Task struct {
	DatasetID  int64
	SplitIndex int

	Attempt    int
	Generation int
	State      TaskState
	AssignedTo string

	Sources []BucketRef

	// Outputs holds, once complete, one bucket URL per downstream split
	// (length equals the owning dataset's FanOut).
	Outputs []string

	CreatedAt  time.Time
	AssignedAt *time.Time
	EndedAt    *time.Time
	LastError  string
}

// ID returns the task's identity within its job: it is unique per
// (DatasetID, SplitIndex) pair regardless of attempt.
func (t *Task) ID() TaskID {
	return TaskID{DatasetID: t.DatasetID, SplitIndex: t.SplitIndex}
}

// TaskID identifies a task slot irrespective of attempt number.
type TaskID struct {
	DatasetID  int64
	SplitIndex int
}

// SlaveState tracks slave health (spec.md "Lifecycles").
type SlaveState string

const (
	SlaveHealthy   SlaveState = "HEALTHY"
	SlaveSuspected SlaveState = "SUSPECTED"
	SlaveLost      SlaveState = "LOST"
)

// SlaveInfo is everything the scheduler knows about a registered slave.
type SlaveInfo struct {
	ID       string
	Endpoint string // host:port the slave's gRPC SlaveService listens on; its bucket HTTP server has its own address
	Capacity int

	State         SlaveState
	Running       int
	LastHeartbeat time.Time
	MissedBeats   int
}

// JobAbort is returned by Wait when the job has hit a fatal failure.
type JobAbort struct {
	Reason string
}

func (a *JobAbort) Error() string {
	return "job aborted: " + a.Reason
}
