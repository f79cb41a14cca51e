// Package service holds the slave's task execution and heartbeat loops —
// the slave-side counterpart to internal/master/service.
package service

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"

	"github.com/kbecker/mrs/internal/bucket"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/slave/core"
	"github.com/kbecker/mrs/pkg/mrs"
)

// Executor implements spec.md §4.3 steps 1-5: resolve functions, read
// inputs, run the user function, partition, and write sealed buckets. Map,
// reduce, and reduce-then-map share the sort-merge grouping helper below,
// matching the teacher's slices.SortFunc + linear-scan grouping in
// pkg/local/engine.go (reducePartition).
type Executor struct {
	registry *mrs.Registry
	store    *bucket.Store
	fetch    *bucket.Client
	baseURL  string
	logger   logging.Logger
}

// NewExecutor builds an Executor that writes to store and advertises
// bucket URLs rooted at baseURL (this slave's own bucket.Server address).
func NewExecutor(registry *mrs.Registry, store *bucket.Store, fetch *bucket.Client, baseURL string, logger logging.Logger) *Executor {
	return &Executor{registry: registry, store: store, fetch: fetch, baseURL: baseURL, logger: logger}
}

var _ core.Executor = (*Executor)(nil)

// Run dispatches an assignment to the matching task kind.
func (e *Executor) Run(ctx context.Context, a core.Assignment) ([]string, error) {
	switch a.DatasetKind {
	case core.DatasetMap:
		return e.runMap(ctx, a)
	case core.DatasetReduce:
		return e.runReduce(ctx, a, false)
	case core.DatasetReduceMap:
		return e.runReduce(ctx, a, true)
	default:
		return nil, fmt.Errorf("executor: dataset kind %s is not slave-executed", a.DatasetKind)
	}
}

// runMap implements spec.md §4.3 step 3: stream the task's input through
// the mapper, optionally combine per partition, then partition and flush.
func (e *Executor) runMap(ctx context.Context, a core.Assignment) ([]string, error) {
	mapper, err := e.registry.Mapper(a.Mapper)
	if err != nil {
		return nil, err
	}
	combiner, err := e.registry.Combiner(a.Combiner)
	if err != nil {
		return nil, err
	}
	partitioner, err := e.registry.Partitioner(a.Partitioner)
	if err != nil {
		return nil, err
	}

	input, err := e.readInputs(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("executor: reading map input: %w", err)
	}

	fanOut := a.FanOut
	if fanOut <= 0 {
		fanOut = 1
	}
	partitions := make([][]mrs.Record, fanOut)

	for _, rec := range input {
		if err := mapper(rec, func(out mrs.Record) {
			p := partitioner(out.Key, fanOut)
			partitions[p] = append(partitions[p], out)
		}); err != nil {
			return nil, fmt.Errorf("executor: mapper: %w", err)
		}
	}

	if combiner != nil {
		for i, part := range partitions {
			partitions[i] = combinePartition(combiner, part)
		}
	}

	return e.writePartitions(a, partitions)
}

// runReduce implements spec.md §4.3 step 4; when fuseMap is true it is the
// reduce-then-map fusion (spec.md §3 "reduce-then-map"), feeding each
// reducer output back through the mapper before the final partitioning.
func (e *Executor) runReduce(ctx context.Context, a core.Assignment, fuseMap bool) ([]string, error) {
	reducer, err := e.registry.Reducer(a.Reducer)
	if err != nil {
		return nil, err
	}
	partitioner, err := e.registry.Partitioner(a.Partitioner)
	if err != nil {
		return nil, err
	}
	var mapper mrs.MapFunc
	if fuseMap {
		mapper, err = e.registry.Mapper(a.Mapper)
		if err != nil {
			return nil, err
		}
	}

	input, err := e.readInputs(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("executor: fetching reduce input: %w", err)
	}

	groups := groupByKey(input)

	fanOut := a.FanOut
	if fanOut <= 0 {
		fanOut = 1
	}
	partitions := make([][]mrs.Record, fanOut)

	for _, g := range groups {
		err := reducer(g.Key, g.Values, func(out mrs.Record) {
			if !fuseMap {
				p := partitioner(out.Key, fanOut)
				partitions[p] = append(partitions[p], out)
				return
			}
			_ = mapper(mrs.Record{Key: out.Key, Value: out.Value}, func(mapped mrs.Record) {
				p := partitioner(mapped.Key, fanOut)
				partitions[p] = append(partitions[p], mapped)
			})
		})
		if err != nil {
			return nil, fmt.Errorf("executor: reducer: %w", err)
		}
	}

	return e.writePartitions(a, partitions)
}

// combinePartition runs the combiner over one partition's buffered
// records before they are flushed, shrinking the intermediate data the
// map task advertises (spec.md §4.1, "Combiner").
func combinePartition(combiner mrs.ReduceFunc, records []mrs.Record) []mrs.Record {
	if len(records) == 0 {
		return records
	}
	groups := groupByKey(records)
	var out []mrs.Record
	for _, g := range groups {
		_ = combiner(g.Key, g.Values, func(rec mrs.Record) {
			out = append(out, rec)
		})
	}
	return out
}

// keyGroup is one sort-merged group of values observed for a key.
type keyGroup struct {
	Key    []byte
	Values [][]byte
}

// groupByKey sorts records by key and scans linearly to group values,
// directly generalizing the teacher's pkg/local/engine.go reducePartition
// (slices.SortFunc + linear-scan grouping) from string keys to []byte.
func groupByKey(records []mrs.Record) []keyGroup {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b mrs.Record) int {
		return cmp.Compare(string(a.Key), string(b.Key))
	})

	var groups []keyGroup
	i := 0
	for i < len(sorted) {
		key := sorted[i].Key
		var values [][]byte
		for i < len(sorted) && string(sorted[i].Key) == string(key) {
			values = append(values, sorted[i].Value)
			i++
		}
		groups = append(groups, keyGroup{Key: key, Values: values})
	}
	return groups
}

// writePartitions seals fanOut buckets for this task attempt and returns
// their advertised URLs, one per downstream split (Task.Outputs' shape).
func (e *Executor) writePartitions(a core.Assignment, partitions [][]mrs.Record) ([]string, error) {
	urls := make([]string, len(partitions))
	for i, part := range partitions {
		w, err := e.store.Create(a.DatasetID, a.TaskID.SplitIndex, i, a.Generation)
		if err != nil {
			return nil, fmt.Errorf("executor: create bucket: %w", err)
		}
		for _, rec := range part {
			if err := w.WriteRecord(rec.Key, rec.Value); err != nil {
				w.Close()
				return nil, fmt.Errorf("executor: write record: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("executor: seal bucket: %w", err)
		}
		urls[i] = fmt.Sprintf("%s/bucket/%d/%d/%d?gen=%d", e.baseURL, a.DatasetID, a.TaskID.SplitIndex, i, a.Generation)
	}
	return urls, nil
}

// readInputs gathers every record this task attempt must process: a
// direct URL read for a SOURCE_URL task, inline records for a
// remotely-materialized SOURCE_LOCAL task, or, for every other Source, a
// raw line read when it names a SOURCE_URL parent's external input and a
// framed bucket fetch when it names a peer slave's output.
func (e *Executor) readInputs(ctx context.Context, a core.Assignment) ([]mrs.Record, error) {
	if a.SourceURL != "" {
		return readURL(a.SourceURL)
	}
	if len(a.LocalRecords) > 0 {
		out := make([]mrs.Record, len(a.LocalRecords))
		for i, r := range a.LocalRecords {
			out[i] = mrs.Record{Key: r.Key, Value: r.Value}
		}
		return out, nil
	}

	var all []mrs.Record
	for _, src := range a.Sources {
		if src.Raw {
			records, err := readURL(src.URL)
			if err != nil {
				return nil, fmt.Errorf("executor: reading raw source %s: %w", src.URL, err)
			}
			all = append(all, records...)
			continue
		}
		records, err := e.fetch.Fetch(ctx, src.URL, src.Ref)
		if err != nil {
			if errors.Is(err, bucket.ErrUnknownBucket) || errors.Is(err, bucket.ErrBucketDeleted) {
				return nil, &core.MissingInputError{Ref: src.Ref, Err: err}
			}
			return nil, fmt.Errorf("executor: fetch %s: %w", src.URL, err)
		}
		for _, r := range records {
			all = append(all, mrs.Record{Key: r.Key, Value: r.Value})
		}
	}
	return all, nil
}

// readURL opens a SOURCE_URL task's input directly. A bare path or
// file:// URL is read from the local filesystem line by line (grounded on
// the teacher's pkg/local/io.go ReadLines, keyed the same way:
// "filename:lineno"); an http(s) URL is streamed the same way over GET.
func readURL(raw string) ([]mrs.Record, error) {
	u, err := url.Parse(raw)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		resp, err := http.Get(raw)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		return scanLines(raw, resp.Body)
	}

	path := raw
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanLines(path, f)
}

func scanLines(name string, r io.Reader) ([]mrs.Record, error) {
	var records []mrs.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := scanner.Bytes()
		records = append(records, mrs.Record{
			Key:   []byte(fmt.Sprintf("%s:%d", name, n)),
			Value: append([]byte(nil), line...),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
