package threadpool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// New starts a ThreadPool with exactly workers worker goroutines and returns its reference.
// A pool with zero workers is legal: it accepts submissions but never runs them.
func New(workers int, opts ...Option) *ThreadPool {
	if workers < 0 {
		panic("BUG: ThreadPool workers must be >= 0")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if o.name != "" {
		logger = logger.With("pool", o.name)
	}

	p := &ThreadPool{
		name:         o.name,
		logger:       logger,
		logAllErrors: o.logAllErrors,
		metrics:      o.metrics,
		workers:      workers,
		queue:        newTaskQueue(),
		done:         make(chan struct{}),
	}

	p.wg.Add(workers)
	p.alive.Store(int32(workers))
	p.metrics.workers(p.name, workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	p.logger.Info("threadpool started", "workers", workers)
	return p
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	// Submitted counts every Submit call that reached the queue, Rejected included.
	Submitted uint64
	Rejected  uint64
	// Completed counts executed tasks whatever their outcome; Failed is the
	// subset that returned an error or panicked, Panicked the subset that panicked.
	Completed uint64
	Failed    uint64
	Panicked  uint64

	Queued  int
	Busy    int32
	Workers int32
}

// ThreadPool runs submitted tasks on a fixed set of worker goroutines that
// share one FIFO queue.
type ThreadPool struct {
	name         string
	logger       *slog.Logger
	logAllErrors bool
	metrics      *Metrics

	workers int
	queue   *taskQueue
	wg      sync.WaitGroup
	done    chan struct{}

	submitted atomic.Uint64
	rejected  atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64

	busy  atomic.Int32
	alive atomic.Int32
}

// Stats returns a snapshot of the current pool counters.
func (p *ThreadPool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Rejected:  p.rejected.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Panicked:  p.panicked.Load(),
		Queued:    p.queue.len(),
		Busy:      p.busy.Load(),
		Workers:   p.alive.Load(),
	}
}

// Workers returns the worker count the pool was created with.
func (p *ThreadPool) Workers() int {
	return p.workers
}

// Name returns the name set by WithName.
func (p *ThreadPool) Name() string {
	return p.name
}

// Stopped reports whether teardown has begun.
func (p *ThreadPool) Stopped() bool {
	return p.queue.isStopping()
}

// Done returns a channel closed once every worker has exited after teardown.
func (p *ThreadPool) Done() <-chan struct{} {
	return p.done
}

// Submit schedules fn and returns the Future that will hold its result.
// It never blocks: the queue is unbounded. Once teardown has begun it returns
// ErrPoolStopped and fn is never run.
//
// An error returned by fn, or a *PanicError if fn panics, is stored in the
// Future and does not affect the pool or other tasks.
func Submit[T any](p *ThreadPool, fn func() (T, error)) (*Future[T], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	f := newFuture[T]()
	err := p.enqueue(func() (bool, error) {
		v, panicked, err := call(fn)
		f.complete(v, err)
		return panicked, err
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// SubmitValue is Submit for callables that do not return an error.
func SubmitValue[T any](p *ThreadPool, fn func() T) (*Future[T], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return Submit(p, func() (T, error) {
		return fn(), nil
	})
}

// Go schedules fn for its side effects. The returned Future resolves once fn
// has returned, or holds a *PanicError if it panicked.
func (p *ThreadPool) Go(fn func()) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return Submit(p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

// call runs fn and turns a panic into a *PanicError. panicked is set only by
// the recover branch, so an error value returned by fn is never mistaken for one.
func call[T any](fn func() (T, error)) (v T, panicked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, panicked, err = zero, true, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	v, err = fn()
	return v, false, err
}

func (p *ThreadPool) enqueue(run func() (bool, error)) error {
	p.submitted.Add(1)
	p.metrics.submitted(p.name)

	t := acquireTask(run)
	p.metrics.enqueuing(p.name)
	if err := p.queue.push(t); err != nil {
		releaseTask(t)
		p.rejected.Add(1)
		p.metrics.rejected(p.name)
		return err
	}
	return nil
}

// worker pulls tasks until the queue reports shutdown, which only happens
// once stopping is set and the queue is drained.
func (p *ThreadPool) worker(id int) {
	defer func() {
		p.alive.Add(-1)
		p.metrics.workers(p.name, -1)
		p.wg.Done()
	}()

	for {
		t, ok := p.queue.pop()
		if !ok {
			return
		}
		p.execute(id, t)
	}
}

func (p *ThreadPool) execute(id int, t *task) {
	// Only the worker that popped t moves it out of statusQueued.
	if !t.status.CompareAndSwap(statusQueued, statusProgress) {
		panic(fmt.Sprintf("BUG: task dequeued with status %d", t.status.Load()))
	}

	p.busy.Add(1)
	start := time.Now()
	p.metrics.started(p.name, start.Sub(t.queuedAt))

	panicked, err := t.run()

	took := time.Since(start)
	t.status.Store(statusDone)
	releaseTask(t)
	p.busy.Add(-1)

	outcome := OutcomeOK
	if panicked {
		outcome = OutcomePanic
		p.failed.Add(1)
		p.panicked.Add(1)
		pe := err.(*PanicError)
		p.logger.Error("threadpool: task panicked", "worker", id, "panic", pe.Value, "stack", string(pe.Stack))
	} else if err != nil {
		outcome = OutcomeError
		p.failed.Add(1)
		if p.logAllErrors {
			p.logger.Warn("threadpool: task failed", "worker", id, "error", err)
		}
	}
	p.completed.Add(1)
	p.metrics.finished(p.name, outcome, took)
}

// Shutdown begins teardown and waits until every worker has drained the
// queue and exited, or until ctx is done. Submissions made after Shutdown has
// begun fail with ErrPoolStopped; tasks queued before it are all executed.
//
// When ctx ends first the context error is returned and the workers keep
// draining in the background; Done reports when they are finished.
// Shutdown must not be called from inside a task.
func (p *ThreadPool) Shutdown(ctx context.Context) error {
	if p.queue.stop() {
		p.logger.Info("threadpool stopping", "queued", p.queue.len())
		go func() {
			p.wg.Wait()
			p.logger.Info("threadpool stopped", "completed", p.completed.Load())
			close(p.done)
		}()
	}

	// A finished drain wins over an expired ctx.
	select {
	case <-p.done:
		return nil
	default:
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("threadpool: shutdown: %w", ctx.Err())
	}
}

// Close is Shutdown without a deadline. It may be called more than once;
// every call returns after the drain has finished.
func (p *ThreadPool) Close() error {
	return p.Shutdown(context.Background())
}
