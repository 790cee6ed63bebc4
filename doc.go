// Package threadpool provides a fixed-size worker pool.
//
// A ThreadPool owns a fixed number of worker goroutines that pull tasks from
// one unbounded FIFO queue. Submit wraps a callable into a task and returns a
// Future holding its value or failure:
//
//	p := threadpool.New(4)
//	defer p.Close()
//
//	f, err := threadpool.Submit(p, func() (int, error) { return 42, nil })
//	if err != nil {
//		return err // ErrPoolStopped
//	}
//	v, err := f.Get()
//
// Close stops accepting work, lets the workers drain everything already
// queued and waits for them to exit.
package threadpool
