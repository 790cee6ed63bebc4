package threadpool

import (
	"sync"
	"sync/atomic"
	"time"
)

// Task lifecycle; a task leaves statusQueued exactly once.
const (
	statusFree     = 0
	statusQueued   = 1
	statusProgress = 2
	statusDone     = 3
)

// task is a queued unit of work: a closure that already carries its bound
// arguments and the writer side of its Future.
type task struct {
	run      func() (panicked bool, err error)
	status   atomic.Uint64
	queuedAt time.Time
}

var taskPool sync.Pool

func acquireTask(run func() (bool, error)) *task {
	t, _ := taskPool.Get().(*task)
	if t == nil {
		t = &task{}
	}
	t.run = run
	t.queuedAt = time.Now()
	t.status.Store(statusQueued)
	return t
}

// releaseTask can only be called by the worker that moved the task to statusDone,
// or by Submit when push was rejected.
func releaseTask(t *task) {
	t.run = nil
	t.queuedAt = time.Time{}
	t.status.Store(statusFree)
	taskPool.Put(t)
}
