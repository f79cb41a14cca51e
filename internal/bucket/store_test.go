package bucket

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	s, err := NewStore(t.TempDir(), "job-1")
	require.NoError(t, err)
	return s
}

func writeBucket(t *testing.T, s *Store, datasetID int64, sourceIndex, splitIndex, generation int, records ...Record) {
	w, err := s.Create(datasetID, sourceIndex, splitIndex, generation)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, w.WriteRecord(r.Key, r.Value))
	}
	require.NoError(t, w.Close())
}

func TestStoreWriteOpenRoundTrip(t *testing.T) {
	s := newTestStore(t)
	writeBucket(t, s, 1, 0, 0, 0, Record{Key: []byte("k"), Value: []byte("v")})

	rc, err := s.Open(Ref{DatasetID: 1, SourceIndex: 0, SplitIndex: 0, Generation: 0})
	require.NoError(t, err)
	defer rc.Close()

	records, err := Decode(rc)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "k", string(records[0].Key))
}

func TestStoreOpenUnknownBucket(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Open(Ref{DatasetID: 99, SourceIndex: 0, SplitIndex: 0, Generation: 0})
	require.ErrorIs(t, err, ErrUnknownBucket)
}

func TestStoreOpenStaleGenerationIsDeleted(t *testing.T) {
	s := newTestStore(t)
	writeBucket(t, s, 1, 0, 0, 0, Record{Key: []byte("old"), Value: []byte("v")})
	writeBucket(t, s, 1, 0, 0, 1, Record{Key: []byte("new"), Value: []byte("v")})

	// Generation 0's request now resolves to ErrBucketDeleted: a newer
	// attempt superseded it, it is not merely unproduced.
	_, err := s.Open(Ref{DatasetID: 1, SourceIndex: 0, SplitIndex: 0, Generation: 0})
	require.ErrorIs(t, err, ErrBucketDeleted)

	rc, err := s.Open(Ref{DatasetID: 1, SourceIndex: 0, SplitIndex: 0, Generation: 1})
	require.NoError(t, err)
	rc.Close()
}

func TestStoreCreateIsIdempotentPerAttempt(t *testing.T) {
	s := newTestStore(t)
	writeBucket(t, s, 1, 0, 0, 0, Record{Key: []byte("first"), Value: nil})
	// Re-creating the same (dataset, source, split, generation) — e.g. a
	// retry of the same attempt after a transient write error — replaces
	// the file outright rather than appending.
	writeBucket(t, s, 1, 0, 0, 0, Record{Key: []byte("second"), Value: nil})

	rc, err := s.Open(Ref{DatasetID: 1, SourceIndex: 0, SplitIndex: 0, Generation: 0})
	require.NoError(t, err)
	defer rc.Close()

	records, err := Decode(rc)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "second", string(records[0].Key))
}

func TestStoreDropRemovesBucketsAndGeneration(t *testing.T) {
	s := newTestStore(t)
	writeBucket(t, s, 1, 0, 0, 0, Record{Key: []byte("k"), Value: []byte("v")})

	require.NoError(t, s.Drop(1, 0))

	_, ok := s.CurrentGeneration(1, 0)
	require.False(t, ok, "expected generation forgotten after Drop")

	_, err := s.Open(Ref{DatasetID: 1, SourceIndex: 0, SplitIndex: 0, Generation: 0})
	require.ErrorIs(t, err, ErrUnknownBucket)
}

func TestStoreMultipleSplitsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	writeBucket(t, s, 1, 0, 0, 0, Record{Key: []byte("split0"), Value: nil})
	writeBucket(t, s, 1, 0, 1, 0, Record{Key: []byte("split1"), Value: nil})

	for split, want := range map[int]string{0: "split0", 1: "split1"} {
		rc, err := s.Open(Ref{DatasetID: 1, SourceIndex: 0, SplitIndex: split, Generation: 0})
		require.NoError(t, err)
		records, err := Decode(rc)
		rc.Close()
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, want, string(records[0].Key))
	}
}
