package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kbecker/mrs/internal/bucket"
	"github.com/kbecker/mrs/internal/shared/logging"
	"github.com/kbecker/mrs/internal/slave/core"
)

var logSilence = slog.LevelError + 4

type mockMasterClient struct {
	mu sync.Mutex

	doneCalls   []core.TaskID
	doneOutputs map[core.TaskID][]string
	ackDone     bool

	failedCalls   []core.TaskID
	failedReason  string
	failedMissing *bucket.Ref

	heartbeats int
	reassign   []core.TaskID
	hbErr      error
}

func (m *mockMasterClient) Register(endpoint string, capacity int) (string, int, error) {
	return "slave-x", 1, nil
}

func (m *mockMasterClient) ReportDone(slaveID string, id core.TaskID, attempt int, outputs []string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doneCalls = append(m.doneCalls, id)
	if m.doneOutputs == nil {
		m.doneOutputs = make(map[core.TaskID][]string)
	}
	m.doneOutputs[id] = outputs
	return m.ackDone, nil
}

func (m *mockMasterClient) ReportFailed(slaveID string, id core.TaskID, attempt int, reason string, missing *bucket.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failedCalls = append(m.failedCalls, id)
	m.failedReason = reason
	m.failedMissing = missing
	return nil
}

func (m *mockMasterClient) Heartbeat(slaveID string, running []core.TaskID) ([]core.TaskID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heartbeats++
	return m.reassign, m.hbErr
}

type mockExecutor struct {
	mu      sync.Mutex
	block   chan struct{}
	outputs []string
	err     error
	runs    []core.Assignment
}

func (m *mockExecutor) Run(ctx context.Context, a core.Assignment) ([]string, error) {
	m.mu.Lock()
	m.runs = append(m.runs, a)
	m.mu.Unlock()
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.outputs, m.err
}

type noopDropper struct{}

func (noopDropper) Drop(datasetID int64, sourceIndex int) error { return nil }

func newTestWorker(client core.MasterClient, exec core.Executor) *Worker {
	return NewWorker("slave-x", client, exec, noopDropper{}, logging.NewSlogLogger(logSilence))
}

func TestWorkerAssignRunsAndReportsDone(t *testing.T) {
	client := &mockMasterClient{ackDone: true}
	exec := &mockExecutor{outputs: []string{"http://x/bucket/1/0/0"}}
	w := newTestWorker(client, exec)

	id := core.TaskID{DatasetID: 1, SplitIndex: 0}
	accepted := w.Assign(context.Background(), core.Assignment{TaskID: id, Attempt: 1})
	if !accepted {
		t.Fatal("expected assignment to be accepted")
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		client.mu.Lock()
		n := len(client.doneCalls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.doneCalls) != 1 || client.doneCalls[0] != id {
		t.Fatalf("expected one ReportDone for %v, got %v", id, client.doneCalls)
	}
	if len(client.failedCalls) != 0 {
		t.Fatalf("expected no failures, got %v", client.failedCalls)
	}
}

func TestWorkerAssignReportsFailure(t *testing.T) {
	client := &mockMasterClient{}
	exec := &mockExecutor{err: errors.New("mapper blew up")}
	w := newTestWorker(client, exec)

	id := core.TaskID{DatasetID: 2, SplitIndex: 0}
	w.Assign(context.Background(), core.Assignment{TaskID: id, Attempt: 1})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		client.mu.Lock()
		n := len(client.failedCalls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.failedCalls) != 1 || client.failedCalls[0] != id {
		t.Fatalf("expected one ReportFailed for %v, got %v", id, client.failedCalls)
	}
	if client.failedReason != "mapper blew up" {
		t.Fatalf("expected reason to be propagated, got %q", client.failedReason)
	}
	if client.failedMissing != nil {
		t.Fatalf("expected no missing-input ref for a plain mapper error, got %+v", client.failedMissing)
	}
}

// TestWorkerAssignReportsMissingInputRef covers the executor surfacing a
// bucket fetch 404/410 as a *core.MissingInputError: the worker must
// extract and forward the producer ref so the master can invalidate and
// re-run that producer instead of only retrying this task.
func TestWorkerAssignReportsMissingInputRef(t *testing.T) {
	client := &mockMasterClient{}
	ref := bucket.Ref{DatasetID: 7, SourceIndex: 0, SplitIndex: 0, Generation: 1}
	exec := &mockExecutor{err: &core.MissingInputError{Ref: ref, Err: bucket.ErrUnknownBucket}}
	w := newTestWorker(client, exec)

	id := core.TaskID{DatasetID: 8, SplitIndex: 0}
	w.Assign(context.Background(), core.Assignment{TaskID: id, Attempt: 1})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		client.mu.Lock()
		n := len(client.failedCalls)
		client.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if client.failedMissing == nil || *client.failedMissing != ref {
		t.Fatalf("expected missing-input ref %+v to be forwarded, got %+v", ref, client.failedMissing)
	}
}

func TestWorkerAssignRejectsDuplicateWhileRunning(t *testing.T) {
	block := make(chan struct{})
	client := &mockMasterClient{ackDone: true}
	exec := &mockExecutor{block: block, outputs: []string{"u"}}
	w := newTestWorker(client, exec)

	id := core.TaskID{DatasetID: 3, SplitIndex: 0}
	if !w.Assign(context.Background(), core.Assignment{TaskID: id, Attempt: 1}) {
		t.Fatal("expected first assignment to be accepted")
	}
	if w.Assign(context.Background(), core.Assignment{TaskID: id, Attempt: 1}) {
		t.Fatal("expected duplicate assignment to be rejected while running")
	}
	close(block)
}

func TestWorkerCancelStopsRunningTask(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	client := &mockMasterClient{}
	exec := &mockExecutor{block: block}
	w := newTestWorker(client, exec)

	id := core.TaskID{DatasetID: 4, SplitIndex: 0}
	w.Assign(context.Background(), core.Assignment{TaskID: id, Attempt: 1})

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(w.Running()) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(w.Running()) != 1 {
		t.Fatal("expected task to be running before cancel")
	}

	w.Cancel(id)

	deadline = time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(w.Running()) == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(w.Running()) != 0 {
		t.Fatal("expected task to be removed from running set after cancel")
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.doneCalls) != 0 || len(client.failedCalls) != 0 {
		t.Fatalf("cancelled task must not report done or failed, got done=%v failed=%v", client.doneCalls, client.failedCalls)
	}
}

func TestWorkerHeartbeatLoopSendsAndCancelsReassigned(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	id := core.TaskID{DatasetID: 5, SplitIndex: 0}
	client := &mockMasterClient{reassign: []core.TaskID{id}}
	exec := &mockExecutor{block: block}
	w := newTestWorker(client, exec)

	w.Assign(context.Background(), core.Assignment{TaskID: id, Attempt: 1})

	ctx, cancel := context.WithCancel(context.Background())
	go w.RunHeartbeatLoop(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		client.mu.Lock()
		n := client.heartbeats
		client.mu.Unlock()
		if n > 0 && len(w.Running()) == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if len(w.Running()) != 0 {
		t.Fatal("expected reassigned task to be cancelled after heartbeat reply")
	}
}
