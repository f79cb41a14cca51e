package mrs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MapReduceProgram is the generic UserProgram the launchers (cmd/master,
// cmd/bypass) hand to Run when the user only registered a named
// map/reduce pair rather than writing a custom run-method: file_data the
// input pattern, map_data, reduce_data, wait, then write one part file
// per output split (spec.md §6's basic pipeline, generalized from the
// teacher's pkg/local.Engine.Run/writeResults one-shot pipeline to submit
// through the job driver instead of running in-process).
type MapReduceProgram struct {
	Name    string
	Inputs  []string
	OutDir  string
	Splits  int
	Timeout time.Duration
}

var _ UserProgram = MapReduceProgram{}

func (p MapReduceProgram) Run(job *Job) error {
	splits := p.Splits
	if splits <= 0 {
		splits = 1
	}

	src, err := job.FileData(p.Inputs)
	if err != nil {
		return fmt.Errorf("mrs: file_data: %w", err)
	}

	mapped, err := job.MapData(src, p.Name, Splits(splits))
	if err != nil {
		return fmt.Errorf("mrs: map_data: %w", err)
	}

	reduced, err := job.ReduceData(mapped, p.Name, Splits(splits))
	if err != nil {
		return fmt.Errorf("mrs: reduce_data: %w", err)
	}

	if _, err := job.Wait([]int64{reduced}, waitForever(p.Timeout)); err != nil {
		return fmt.Errorf("mrs: wait: %w", err)
	}

	if p.OutDir == "" {
		_, err := job.FetchAll(reduced)
		return err
	}

	return writeReducedSplits(job, reduced, p.OutDir)
}

// waitForever maps a user-facing Timeout onto Job.Wait's three-way
// contract (negative forever, zero immediate, positive bounded). An unset
// Timeout means "no timeout" (spec.md §6's timeout=None), which is the
// negative sentinel, not the zero value Timeout defaults to — zero is
// spec.md §8's distinct "return immediately" boundary and would make Run
// fetch an incomplete dataset the instant it's submitted.
func waitForever(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return -1
	}
	return timeout
}

// writeReducedSplits writes one part-NNNN.tsv file per output split of a
// completed dataset, mirroring the teacher's pkg/local.Engine.writeResults
// naming convention.
func writeReducedSplits(job *Job, datasetID int64, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mrs: create output directory: %w", err)
	}

	tasks := job.scheduler.TasksForDataset(datasetID)
	for _, t := range tasks {
		if len(t.Outputs) == 0 {
			continue
		}
		records, err := job.fetchTask(datasetID, t)
		if err != nil {
			return err
		}

		partPath := filepath.Join(outDir, fmt.Sprintf("part-%04d.tsv", t.SplitIndex))
		f, err := os.Create(partPath)
		if err != nil {
			return fmt.Errorf("mrs: create %s: %w", partPath, err)
		}
		for _, r := range records {
			if _, err := fmt.Fprintf(f, "%s\t%s\n", r.Key, r.Value); err != nil {
				f.Close()
				return err
			}
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
