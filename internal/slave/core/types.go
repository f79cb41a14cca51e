// Package core declares the slave's own small set of types and the
// interfaces its gRPC layer and execution loop are built against,
// mirroring the shape of internal/master/core (store interfaces, no
// concrete networking) one layer down.
package core

import (
	"context"
	"fmt"

	"github.com/kbecker/mrs/internal/bucket"
)

// DatasetKind mirrors master/core.DatasetKind; redeclared here so the
// slave package does not import the master.
type DatasetKind string

const (
	DatasetSourceURL   DatasetKind = "SOURCE_URL"
	DatasetSourceLocal DatasetKind = "SOURCE_LOCAL"
	DatasetMap         DatasetKind = "MAP"
	DatasetReduce      DatasetKind = "REDUCE"
	DatasetReduceMap   DatasetKind = "REDUCE_MAP"
)

// TaskID identifies a task slot irrespective of attempt number.
type TaskID struct {
	DatasetID  int64
	SplitIndex int
}

// Source names one upstream input an assignment reads from, together with
// the URL the master resolved for it at dispatch time. Raw marks a
// SOURCE_URL parent's plain external input (a text file or bare URL) as
// opposed to a peer slave's framed bucket, so the executor knows which
// reader to use.
type Source struct {
	Ref bucket.Ref
	URL string
	Raw bool
}

// Assignment is the slave-native form of an AssignRequest (proto.AssignRequest
// translated by internal/slave/api/grpc/server.go), carrying everything the
// executor needs to run one task attempt.
type Assignment struct {
	TaskID     TaskID
	Attempt    int
	Generation int

	DatasetKind DatasetKind
	DatasetID   int64
	FanOut      int

	Partitioner string
	Mapper      string
	Reducer     string
	Combiner    string

	KeySerializer   string
	ValueSerializer string

	Sources []Source

	// SourceURL is set for DatasetSourceURL tasks: the direct URL to read.
	SourceURL string
	// LocalRecords is set for DatasetSourceLocal tasks materialized
	// remotely (not used by this runtime's master, which writes local
	// source buckets itself, but kept for executor symmetry/tests).
	LocalRecords []bucket.Record
}

// MasterClient is how the slave reaches the master. Implemented by
// internal/slave/api/grpc.MasterClient; tests substitute an in-process fake.
type MasterClient interface {
	Register(endpoint string, capacity int) (slaveID string, heartbeatInterval int, err error)
	ReportDone(slaveID string, id TaskID, attempt int, outputs []string) (ack bool, err error)
	ReportFailed(slaveID string, id TaskID, attempt int, reason string, missing *bucket.Ref) error
	Heartbeat(slaveID string, running []TaskID) (reassign []TaskID, err error)
}

// MissingInputError marks a task failure caused by a 404/410 against an
// upstream bucket (spec.md §7 "Bucket fetch error") rather than a
// mapper/reducer/partitioner error, so Worker.run can tell the master
// which producer's output could not be read.
type MissingInputError struct {
	Ref bucket.Ref
	Err error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("input missing for dataset %d source %d: %v", e.Ref.DatasetID, e.Ref.SourceIndex, e.Err)
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// Executor runs one task assignment to completion and returns the bucket
// URLs it produced, one per downstream split.
type Executor interface {
	Run(ctx context.Context, a Assignment) ([]string, error)
}
