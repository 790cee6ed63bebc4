package threadpool

import (
	"sync"

	"github.com/aradilov/ringbuffer"
)

// segmentSize is the capacity of each ring segment; must be a power of 2.
const segmentSize = 64

// taskQueue is an unbounded FIFO of tasks shared by all workers.
//
// Storage is a chain of bounded MPMC rings: push fills the tail ring and
// appends a new one when it is full, pop drains the head ring and drops it
// once exhausted. The rings are lock-free on their own, but every access here
// happens under mu so that the contents and the stopping flag change together.
type taskQueue struct {
	mu       sync.Mutex
	cond     sync.Cond
	segments []*ringbuffer.MPMC[*task]
	size     int
	stopping bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{}
	q.cond.L = &q.mu
	q.segments = []*ringbuffer.MPMC[*task]{ringbuffer.NewMPMC[*task](segmentSize)}
	return q
}

// push appends t and wakes one waiting worker. It fails with ErrPoolStopped
// once stop has been called.
func (q *taskQueue) push(t *task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopping {
		return ErrPoolStopped
	}

	tail := q.segments[len(q.segments)-1]
	if !tail.Enqueue(t) {
		tail = ringbuffer.NewMPMC[*task](segmentSize)
		if !tail.Enqueue(t) {
			panic("unreached: enqueue into empty segment")
		}
		q.segments = append(q.segments, tail)
	}
	q.size++
	q.cond.Signal()
	return nil
}

// pop blocks until a task is available or the queue is stopping.
// It returns false only when stopping is set and nothing is left to drain.
func (q *taskQueue) pop() (*task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.stopping {
		q.cond.Wait()
	}
	if q.size == 0 {
		return nil, false
	}

	for {
		if t, ok := q.segments[0].Dequeue(); ok {
			q.size--
			return t, true
		}
		if len(q.segments) == 1 {
			panic("BUG: taskQueue size is positive but all segments are empty")
		}
		q.segments[0] = nil
		q.segments = q.segments[1:]
	}
}

// stop sets the stopping flag and wakes every waiter. It reports whether this
// call performed the transition.
func (q *taskQueue) stop() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopping {
		return false
	}
	q.stopping = true
	q.cond.Broadcast()
	return true
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

func (q *taskQueue) isStopping() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopping
}
