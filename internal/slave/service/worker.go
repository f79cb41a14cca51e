package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbecker/mrs/internal/bucket"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/slave/core"
)

// BucketDropper removes a completed task's on-disk bucket once the master
// has decided no consumer can still need it (spec.md §4.5 "drop_bucket").
// Implemented by internal/bucket.Store.
type BucketDropper interface {
	Drop(datasetID int64, sourceIndex int) error
}

// Worker is the slave-side counterpart to the master's Scheduler: it is
// handed assignments pushed over gRPC (spec.md §4.2 is push, not
// pull — this is why it has no teacher equivalent of PullTask), runs each
// on its own goroutine, reports the outcome back to the master, sends
// periodic heartbeats, and answers the master's cancellation calls. It
// generalizes the teacher's internal/worker/service/worker.go task loop
// from a pull-based polling loop to a push-based assignment map, while
// keeping the same heartbeat-ticker idiom and logging shape.
type Worker struct {
	slaveID string
	client  core.MasterClient
	exec    core.Executor
	drop    BucketDropper
	logger  logging.Logger

	mu      sync.Mutex
	running map[core.TaskID]context.CancelFunc
}

// NewWorker builds a Worker that executes assignments with exec and
// reports outcomes to the master through client.
func NewWorker(slaveID string, client core.MasterClient, exec core.Executor, drop BucketDropper, logger logging.Logger) *Worker {
	return &Worker{
		slaveID: slaveID,
		client:  client,
		exec:    exec,
		drop:    drop,
		logger:  logger,
		running: make(map[core.TaskID]context.CancelFunc),
	}
}

// Assign starts executing a assigned task in the background and returns
// immediately, matching spec.md §4.2's "assign... accepted" handshake:
// acceptance just means the slave took ownership, not that it finished.
func (w *Worker) Assign(ctx context.Context, a core.Assignment) bool {
	taskID := a.TaskID

	w.mu.Lock()
	if _, busy := w.running[taskID]; busy {
		w.mu.Unlock()
		return false
	}
	runCtx, cancel := context.WithCancel(context.Background())
	w.running[taskID] = cancel
	w.mu.Unlock()

	w.logger.Info("task assigned", "dataset_id", a.DatasetID, "split_index", taskID.SplitIndex, "attempt", a.Attempt)

	go w.run(runCtx, a)
	return true
}

func (w *Worker) run(ctx context.Context, a core.Assignment) {
	taskID := a.TaskID
	defer func() {
		w.mu.Lock()
		delete(w.running, taskID)
		w.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("task panicked", "dataset_id", a.DatasetID, "split_index", taskID.SplitIndex, "panic", fmt.Sprintf("%v", r))
			if reportErr := w.client.ReportFailed(w.slaveID, taskID, a.Attempt, fmt.Sprintf("panic: %v", r), nil); reportErr != nil {
				w.logger.Error("failed to report task failure", "error", reportErr)
			}
		}
	}()

	outputs, err := w.exec.Run(ctx, a)
	if err != nil {
		if ctx.Err() != nil {
			w.logger.Debug("task cancelled", "dataset_id", a.DatasetID, "split_index", taskID.SplitIndex)
			return
		}
		w.logger.Error("task failed", "dataset_id", a.DatasetID, "split_index", taskID.SplitIndex, "error", err)

		var missing *core.MissingInputError
		var ref *bucket.Ref
		if errors.As(err, &missing) {
			ref = &missing.Ref
		}
		if reportErr := w.client.ReportFailed(w.slaveID, taskID, a.Attempt, err.Error(), ref); reportErr != nil {
			w.logger.Error("failed to report task failure", "error", reportErr)
		}
		return
	}

	w.logger.Info("task complete", "dataset_id", a.DatasetID, "split_index", taskID.SplitIndex)
	if _, reportErr := w.client.ReportDone(w.slaveID, taskID, a.Attempt, outputs); reportErr != nil {
		w.logger.Error("failed to report task completion", "error", reportErr)
	}
}

// Cancel stops a running task's executor goroutine, if it is still running
// (spec.md §4.5 "cancel", used when a job aborts).
func (w *Worker) Cancel(id core.TaskID) {
	w.mu.Lock()
	cancel, ok := w.running[id]
	if ok {
		delete(w.running, id)
	}
	w.mu.Unlock()
	if ok {
		cancel()
	}
}

// DropBucket removes the bucket a completed task produced (spec.md §4.5
// "drop_bucket", triggered by the master's GC on dataset close).
func (w *Worker) DropBucket(id core.TaskID) error {
	return w.drop.Drop(id.DatasetID, id.SplitIndex)
}

// Running reports the task ids currently executing, for the heartbeat loop.
func (w *Worker) Running() []core.TaskID {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids := make([]core.TaskID, 0, len(w.running))
	for id := range w.running {
		ids = append(ids, id)
	}
	return ids
}

// RunHeartbeatLoop periodically reports this slave's running task set to
// the master and cancels any the master says it should drop (spec.md §4.5
// "heartbeat... reassign_list"), mirroring the teacher's
// runHeartbeatLoop ticker idiom.
func (w *Worker) RunHeartbeatLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reassign, err := w.client.Heartbeat(w.slaveID, w.Running())
			if err != nil {
				w.logger.Error("failed to send heartbeat", "error", err)
				continue
			}
			for _, id := range reassign {
				w.Cancel(id)
			}
		}
	}
}
