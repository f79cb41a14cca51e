package mrs

import (
	"errors"
	"hash/fnv"
)

// DefaultPartitioner and IdentitySerializer name the built-ins every
// Registry is seeded with.
const (
	DefaultPartitioner = "hash"
	IdentitySerializer = "identity"
)

// HashPartition is the default partitioner: fnv32a of the key, modulo the
// split count. Directly generalizes the teacher's pkg/core.Partition
// (fnv32a-of-string %% numPartitions) to a []byte key.
func HashPartition(key []byte, numSplits int) int {
	if numSplits <= 0 {
		return 0
	}
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32()) % numSplits
}

type identitySerializer struct{}

func (identitySerializer) Marshal(v any) ([]byte, error) {
	if b, ok := v.([]byte); ok {
		return b, nil
	}
	if s, ok := v.(string); ok {
		return []byte(s), nil
	}
	return nil, errNotBytes
}

func (identitySerializer) Unmarshal(data []byte, v any) (any, error) {
	return data, nil
}

var errNotBytes = errors.New("identity serializer requires []byte or string input")
