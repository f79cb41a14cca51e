package core

import (
	"container/heap"
	"errors"
	"sort"
)

// ErrQueueEmpty is returned when Pop() or Peek() is called on an empty queue.
var ErrQueueEmpty = errors.New("ready queue is empty")

// ReadyQueue holds tasks that are eligible to run (all of their sources are
// complete) but not yet assigned, ordered FIFO per spec.md §4.2 ("oldest
// task... ties broken by task id"). It is a thin min-heap over insertion
// sequence, generalized from the teacher's fixed two-priority
// TaskPriorityQueue (map-before-reduce) to an arbitrary number of datasets:
// instead of a priority enum we order purely by submission sequence, and
// the scheduler's locality picker (scheduler.go) chooses which ready task
// to hand to a given idle slave.
type ReadyQueue struct {
	items readyHeap
	seq   uint64
}

// NewReadyQueue returns an empty queue.
func NewReadyQueue() *ReadyQueue {
	q := &ReadyQueue{}
	heap.Init(&q.items)
	return q
}

// Push enqueues a task. Not safe for concurrent use; callers serialize
// access by holding the scheduler's mutex.
func (q *ReadyQueue) Push(t *Task) {
	heap.Push(&q.items, &readyItem{task: t, sequence: q.seq})
	q.seq++
}

// Remove drops a task (by TaskID) from the queue if present, e.g. when a
// dataset is closed while some of its tasks are still pending.
func (q *ReadyQueue) Remove(id TaskID) bool {
	for i, it := range q.items {
		if it.task.ID() == id {
			heap.Remove(&q.items, i)
			return true
		}
	}
	return false
}

// Peek returns the oldest ready task without removing it.
func (q *ReadyQueue) Peek() (*Task, error) {
	if q.items.Len() == 0 {
		return nil, ErrQueueEmpty
	}
	return q.items[0].task, nil
}

// PeekAt returns the i'th-oldest ready task (0 is oldest), for scanning past
// a task the locality picker decided not to assign yet.
func (q *ReadyQueue) PeekAt(i int) (*Task, error) {
	if i < 0 || i >= q.items.Len() {
		return nil, ErrQueueEmpty
	}
	sorted := append([]*readyItem(nil), q.items...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].sequence < sorted[b].sequence })
	return sorted[i].task, nil
}

// RemoveAt removes the i'th-oldest ready task.
func (q *ReadyQueue) RemoveAt(i int) (*Task, error) {
	if i < 0 || i >= q.items.Len() {
		return nil, ErrQueueEmpty
	}
	sorted := append([]*readyItem(nil), q.items...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].sequence < sorted[b].sequence })
	it := heap.Remove(&q.items, sorted[i].index).(*readyItem)
	return it.task, nil
}

// Pop removes and returns the oldest ready task.
func (q *ReadyQueue) Pop() (*Task, error) {
	if q.items.Len() == 0 {
		return nil, ErrQueueEmpty
	}
	it := heap.Pop(&q.items).(*readyItem)
	return it.task, nil
}

// Len reports the number of ready tasks.
func (q *ReadyQueue) Len() int {
	return q.items.Len()
}

type readyItem struct {
	task     *Task
	sequence uint64
	index    int
}

type readyHeap []*readyItem

func (h readyHeap) Len() int { return len(h) }

func (h readyHeap) Less(i, j int) bool {
	return h[i].sequence < h[j].sequence
}

func (h readyHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *readyHeap) Push(x any) {
	it := x.(*readyItem)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}
