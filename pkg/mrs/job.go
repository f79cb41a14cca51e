package mrs

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kbecker/mrs/internal/bucket"
	mastercore "github.com/kbecker/mrs/internal/master/core"
)

// Job is the thin object a user program's run-method receives (spec.md
// §4.6): every method forwards directly to the in-process
// mastercore.Scheduler, since the job driver runs on the master rather
// than connecting to one over the network (SPEC_FULL.md §4.6).
type Job struct {
	scheduler *mastercore.Scheduler
	fetch     *bucket.Client
}

func newJob(scheduler *mastercore.Scheduler, fetch *bucket.Client) *Job {
	return &Job{scheduler: scheduler, fetch: fetch}
}

// dataOptions collects the recognized options spec.md §6 lists for every
// *_data call: splits, outdir, parter, combiner, key_serializer,
// value_serializer.
type dataOptions struct {
	splits          int
	outdir          string
	partitioner     string
	combiner        string
	keySerializer   string
	valueSerializer string
}

// Option configures one *_data call. Unset options take the scheduler's
// defaults (a single split, scratch output, the hash-mod partitioner, no
// combiner, identity serializers).
type Option func(*dataOptions)

// Splits sets the number of output partitions (spec.md §6 "splits").
func Splits(n int) Option { return func(o *dataOptions) { o.splits = n } }

// OutDir sets the dataset's persisted output directory (spec.md §6
// "outdir"); if never set, outputs live in per-slave scratch space.
func OutDir(path string) Option { return func(o *dataOptions) { o.outdir = path } }

// Partitioner names the registered partitioner function this dataset's
// tasks use to split their output (spec.md §6 "parter").
func Partitioner(name string) Option { return func(o *dataOptions) { o.partitioner = name } }

// Combiner names the registered reducer-shaped function run per-partition
// before a map task's buckets are flushed (spec.md §6 "combiner",
// map-like datasets only).
func Combiner(name string) Option { return func(o *dataOptions) { o.combiner = name } }

// KeySerializer and ValueSerializer name the registered codecs the slave
// resolves to encode/decode this dataset's records (spec.md §6
// "key_serializer"/"value_serializer").
func KeySerializer(name string) Option { return func(o *dataOptions) { o.keySerializer = name } }

func ValueSerializer(name string) Option { return func(o *dataOptions) { o.valueSerializer = name } }

func resolveOptions(opts []Option) dataOptions {
	o := dataOptions{splits: 1}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// expandLocalPatterns splits a file_data call's URLs into the ones
// addressed remotely and the ones that are filesystem glob patterns
// (SPEC_FULL.md §2), expanding the latter into the regular files they
// match (doublestar.FilepathGlob + an os.Lstat regular-file filter,
// grounded on the teacher's path.go FindLocalFiles). Unlike the teacher's
// version, matches are deduplicated across patterns: two file_data globs
// that overlap (e.g. "logs/*.txt" and "logs/a.txt") must not materialize
// the same input file as two separate source splits.
func expandLocalPatterns(urls []string) ([]string, error) {
	var remote []string
	var patterns []string
	for _, u := range urls {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "file://") {
			remote = append(remote, u)
			continue
		}
		patterns = append(patterns, u)
	}
	if len(patterns) == 0 {
		return remote, nil
	}

	seen := make(map[string]bool, len(patterns))
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("mrs: glob pattern %q: %w", pattern, err)
		}
		for _, name := range matches {
			info, err := os.Lstat(name)
			if err != nil || !info.Mode().IsRegular() || seen[name] {
				continue
			}
			seen[name] = true
			files = append(files, name)
		}
	}
	return append(remote, files...), nil
}

// FileData submits a source-from-URLs dataset (spec.md §6 "file_data"):
// one zero-compute task per URL, each URL fetched directly by whichever
// task first consumes it. An entry without an http(s) scheme is treated as
// a local filesystem glob pattern and expanded into the files it matches
// (SPEC_FULL.md §2, generalized from the teacher's path.go).
func (j *Job) FileData(urls []string, opts ...Option) (int64, error) {
	urls, err := expandLocalPatterns(urls)
	if err != nil {
		return 0, fmt.Errorf("mrs: expand file_data patterns: %w", err)
	}
	o := resolveOptions(opts)
	return j.scheduler.Submit(mastercore.DatasetSpec{
		Kind:            mastercore.DatasetSourceURL,
		URLs:            urls,
		NumSplits:       len(urls),
		OutputDir:       o.outdir,
		Partitioner:     o.partitioner,
		KeySerializer:   o.keySerializer,
		ValueSerializer: o.valueSerializer,
	})
}

// LocalData submits a source-from-local-iterator dataset (spec.md §6
// "local_data"): the records are captured in the master's process and
// partitioned there, never leaving the master until a consumer fetches
// them.
func (j *Job) LocalData(records []Record, opts ...Option) (int64, error) {
	o := resolveOptions(opts)
	local := make([]mastercore.Record, len(records))
	for i, r := range records {
		local[i] = mastercore.Record{Key: r.Key, Value: r.Value}
	}
	return j.scheduler.Submit(mastercore.DatasetSpec{
		Kind:            mastercore.DatasetSourceLocal,
		Local:           local,
		NumSplits:       o.splits,
		OutputDir:       o.outdir,
		Partitioner:     o.partitioner,
		KeySerializer:   o.keySerializer,
		ValueSerializer: o.valueSerializer,
	})
}

// MapData submits a map dataset over input (spec.md §6 "map_data"):
// mapper names a registered MapFunc.
func (j *Job) MapData(input int64, mapper string, opts ...Option) (int64, error) {
	o := resolveOptions(opts)
	return j.scheduler.Submit(mastercore.DatasetSpec{
		Kind:            mastercore.DatasetMap,
		Sources:         []int64{input},
		NumSplits:       o.splits,
		OutputDir:       o.outdir,
		Partitioner:     o.partitioner,
		Mapper:          mapper,
		Combiner:        o.combiner,
		KeySerializer:   o.keySerializer,
		ValueSerializer: o.valueSerializer,
	})
}

// ReduceData submits a reduce dataset over input (spec.md §6
// "reduce_data"): reducer names a registered ReduceFunc.
func (j *Job) ReduceData(input int64, reducer string, opts ...Option) (int64, error) {
	o := resolveOptions(opts)
	return j.scheduler.Submit(mastercore.DatasetSpec{
		Kind:            mastercore.DatasetReduce,
		Sources:         []int64{input},
		NumSplits:       o.splits,
		OutputDir:       o.outdir,
		Partitioner:     o.partitioner,
		Reducer:         reducer,
		KeySerializer:   o.keySerializer,
		ValueSerializer: o.valueSerializer,
	})
}

// ReduceMapData submits a fused reduce-then-map dataset over input
// (spec.md §6 "reducemap_data"): each task reduces its input splits, then
// feeds every emitted pair through mapper before partitioning for the
// downstream consumer (spec.md §4.1, eliding a round of disk+network).
func (j *Job) ReduceMapData(input int64, reducer, mapper string, opts ...Option) (int64, error) {
	o := resolveOptions(opts)
	return j.scheduler.Submit(mastercore.DatasetSpec{
		Kind:            mastercore.DatasetReduceMap,
		Sources:         []int64{input},
		NumSplits:       o.splits,
		OutputDir:       o.outdir,
		Partitioner:     o.partitioner,
		Reducer:         reducer,
		Mapper:          mapper,
		Combiner:        o.combiner,
		KeySerializer:   o.keySerializer,
		ValueSerializer: o.valueSerializer,
	})
}

// Wait blocks until at least one dataset in ids is complete or aborted, or
// timeout elapses, returning the completed subset (spec.md §6 "wait").
// timeout follows the scheduler's three-way contract: negative waits
// indefinitely, zero returns immediately with whatever is already
// complete (spec.md §8's timeout=0 boundary), positive bounds the wait.
// Callers wanting "no timeout" (spec.md §6's timeout=None) must pass a
// negative duration, not zero — those are distinct spec values.
func (j *Job) Wait(ids []int64, timeout time.Duration) ([]int64, error) {
	return j.scheduler.Wait(ids, timeout)
}

// Progress reports a dataset's fraction of complete tasks (spec.md §6
// "progress").
func (j *Job) Progress(id int64) (float64, error) {
	return j.scheduler.Progress(id)
}

// Close marks a dataset closed, making its buckets eligible for GC once
// no open consumer remains (spec.md §6 "close").
func (j *Job) Close(id int64) error {
	return j.scheduler.Close(id)
}

// FetchAll reads every record of a completed dataset, concatenated split
// order (spec.md §6 "fetchall"; §9's Open Question on fetchall ordering is
// resolved as split-order concatenation, see DESIGN.md).
func (j *Job) FetchAll(id int64) ([]Record, error) {
	var out []Record
	for rec, err := range j.data(id) {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Data returns a lazy finite sequence over a completed dataset's records,
// in split order (spec.md §6 "data"). Iteration stops at the first fetch
// error; range over the sequence and check the yielded error each step.
func (j *Job) Data(id int64) func(func(Record, error) bool) {
	return j.data(id)
}

func (j *Job) data(id int64) func(func(Record, error) bool) {
	return func(yield func(Record, error) bool) {
		tasks := j.scheduler.TasksForDataset(id)
		for _, t := range tasks {
			recs, err := j.fetchTask(id, t)
			if err != nil {
				yield(Record{}, err)
				return
			}
			for _, r := range recs {
				if !yield(r, nil) {
					return
				}
			}
		}
	}
}

// fetchTask reads the records one task of dataset id produced, or nil if
// the task has no output (a still-pending task in a partially-complete
// dataset).
func (j *Job) fetchTask(id int64, t *mastercore.Task) ([]Record, error) {
	if len(t.Outputs) == 0 {
		return nil, nil
	}
	ref := bucket.Ref{DatasetID: id, SourceIndex: t.SplitIndex, SplitIndex: 0, Generation: t.Generation}
	recs, err := j.fetch.Fetch(context.Background(), t.Outputs[0], ref)
	if err != nil {
		return nil, fmt.Errorf("mrs: fetch dataset %d split %d: %w", id, t.SplitIndex, err)
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = Record{Key: r.Key, Value: r.Value}
	}
	return out, nil
}
