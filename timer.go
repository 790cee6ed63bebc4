package threadpool

import (
	"sync"
	"time"
)

// timerPool backs Future.GetTimeout so bounded reads do not allocate a timer each.
var timerPool sync.Pool

func acquireTimer(d time.Duration) *time.Timer {
	if d < 0 {
		d = 0
	}
	t, _ := timerPool.Get().(*time.Timer)
	if t == nil {
		return time.NewTimer(d)
	}
	t.Reset(d)
	return t
}

// releaseTimer stops t and drains a value that fired but was never received,
// so the next Reset starts from a clean channel.
func releaseTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
