package threadpool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped is returned by Submit once teardown of the pool has begun.
	// The rejected work is never queued.
	ErrPoolStopped = errors.New("threadpool: submit on stopped pool")

	// ErrNilFunc is returned by Submit for a nil callable.
	ErrNilFunc = errors.New("threadpool: nil func")

	// ErrTimeout is returned by Future.GetTimeout when the outcome was not
	// written in time. The task itself keeps running.
	ErrTimeout = errors.New("threadpool: timeout")
)

// PanicError is the failure stored in a Future when its callable panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("threadpool: task panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error, so
// errors.Is works for panic(err).
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
