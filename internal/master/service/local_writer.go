package service

import (
	"fmt"

	"github.com/kbecker/mrs/internal/bucket"
	mastercore "github.com/kbecker/mrs/internal/master/core"
	"github.com/kbecker/mrs/pkg/mrs"
)

// LocalWriter implements mastercore.LocalSourceWriter: it partitions a
// source-from-local-iterator dataset's captured records by the dataset's
// own partitioner and writes them straight into the master's own bucket
// store, the zero-compute path spec.md §4.1 describes for local_data ("the
// records never leave the master process until a consumer task fetches
// them"). It mirrors writePartitions in internal/slave/service/executor.go,
// one layer up, since the master is acting as its own "slave" for this one
// dataset kind.
type LocalWriter struct {
	store    *bucket.Store
	registry *mrs.Registry
	baseURL  string
}

// NewLocalWriter builds a LocalWriter that writes to store and advertises
// bucket URLs rooted at baseURL (the master's own bucket.Server address).
func NewLocalWriter(store *bucket.Store, registry *mrs.Registry, baseURL string) *LocalWriter {
	return &LocalWriter{store: store, registry: registry, baseURL: baseURL}
}

var _ mastercore.LocalSourceWriter = (*LocalWriter)(nil)

// WriteLocal partitions d.Local into d.FanOut buckets under source index 0
// (local_data always materializes to exactly one zero-compute task, see
// graph.go's Submit) and returns one advertised URL per partition.
func (w *LocalWriter) WriteLocal(d *mastercore.Dataset) ([]string, error) {
	partitioner, err := w.registry.Partitioner(d.Partitioner)
	if err != nil {
		return nil, err
	}

	fanOut := d.FanOut
	if fanOut <= 0 {
		fanOut = 1
	}
	partitions := make([][]mastercore.Record, fanOut)
	for _, rec := range d.Local {
		p := partitioner(rec.Key, fanOut)
		partitions[p] = append(partitions[p], rec)
	}

	const sourceIndex = 0
	urls := make([]string, fanOut)
	for i, part := range partitions {
		bw, err := w.store.Create(d.ID, sourceIndex, i, 0)
		if err != nil {
			return nil, fmt.Errorf("local writer: create bucket: %w", err)
		}
		for _, rec := range part {
			if err := bw.WriteRecord(rec.Key, rec.Value); err != nil {
				bw.Close()
				return nil, fmt.Errorf("local writer: write record: %w", err)
			}
		}
		if err := bw.Close(); err != nil {
			return nil, fmt.Errorf("local writer: seal bucket: %w", err)
		}
		urls[i] = fmt.Sprintf("%s/bucket/%d/%d/%d?gen=0", w.baseURL, d.ID, sourceIndex, i)
	}
	return urls, nil
}
