package threadpool

import (
	"context"
	"sync"
	"time"
)

// Future is the completion handle of a submitted task. It is written exactly
// once by the worker that runs the task and may be read any number of times,
// from any number of goroutines; every read returns the same outcome.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// complete stores the outcome. Only the first call has any effect.
func (f *Future[T]) complete(v T, err error) bool {
	won := false
	f.once.Do(func() {
		f.value = v
		f.err = err
		won = true
		close(f.done)
	})
	return won
}

// Get blocks until the task has finished and returns its value, or the error
// it returned, or a *PanicError if it panicked.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// GetContext is like Get but gives up when ctx is done. Giving up does not
// affect the task.
func (f *Future[T]) GetContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// GetTimeout is like Get but returns ErrTimeout if the outcome is not
// available within d.
func (f *Future[T]) GetTimeout(d time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	timer := acquireTimer(d)
	defer releaseTimer(timer)

	select {
	case <-f.done:
		return f.value, f.err
	case <-timer.C:
		var zero T
		return zero, ErrTimeout
	}
}

// Done returns a channel that is closed once the outcome is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone reports whether the outcome is available without blocking.
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
