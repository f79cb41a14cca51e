// Package mrs is the job-driver façade user programs link against
// (spec.md §4.6). It generalizes the teacher's pkg/core function shapes
// (core.MapFunc func(string,string) []KeyValue, core.ReduceFunc
// func(string,[]string) KeyValue) from strings to raw bytes, since this
// runtime's bucket wire format (internal/bucket) already carries key/value
// pairs as []byte and a user function operating on the same representation
// avoids a conversion at every record boundary.
package mrs

// Record is a key/value pair, identical in shape to bucket.Record; it is
// redeclared here so user programs importing pkg/mrs never need to import
// internal/bucket.
type Record struct {
	Key   []byte
	Value []byte
}

// MapFunc processes one input record, emitting zero or more output
// records via emit. Corresponds to spec.md §4.3 step 3.
type MapFunc func(in Record, emit func(Record)) error

// ReduceFunc processes every value observed for one key (sort-merged or
// hash-grouped per spec.md §4.3 step 4) and emits the reduction's output
// records via emit. The same signature serves as a combiner.
type ReduceFunc func(key []byte, values [][]byte, emit func(Record)) error

// PartitionFunc maps a key to a split index in [0, numSplits). The default
// is a stable hash-mod, matching the teacher's core.Partition (generalized
// from fnv32a-of-string to fnv32a-of-bytes).
type PartitionFunc func(key []byte, numSplits int) int

// Serializer is the identifier-resolved codec for a dataset's records;
// user programs register named serializers and the slave executor looks
// them up by the identifiers carried on the dataset (spec.md §3
// key_serializer/value_serializer). The identity serializer (raw bytes,
// no-op) is registered by default under "identity".
type Serializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) (any, error)
}
