package threadpool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopTask() *task {
	return acquireTask(func() (bool, error) { return false, nil })
}

func TestTaskQueue_FIFOAcrossSegments(t *testing.T) {
	q := newTaskQueue()

	const n = segmentSize*3 + 5
	pushed := make([]*task, 0, n)
	for i := 0; i < n; i++ {
		tk := noopTask()
		require.NoError(t, q.push(tk))
		pushed = append(pushed, tk)
	}
	assert.Equal(t, n, q.len())
	assert.Len(t, q.segments, 4)

	for i := 0; i < n; i++ {
		tk, ok := q.pop()
		require.True(t, ok)
		require.Same(t, pushed[i], tk, "position %d", i)
	}
	assert.Zero(t, q.len())
	assert.Len(t, q.segments, 1)
}

func TestTaskQueue_InterleavedPushPop(t *testing.T) {
	q := newTaskQueue()

	var want []*task
	for round := 0; round < 10; round++ {
		for i := 0; i < segmentSize-1; i++ {
			tk := noopTask()
			require.NoError(t, q.push(tk))
			want = append(want, tk)
		}
		for i := 0; i < segmentSize/2; i++ {
			tk, ok := q.pop()
			require.True(t, ok)
			require.Same(t, want[0], tk)
			want = want[1:]
		}
	}
	for len(want) > 0 {
		tk, ok := q.pop()
		require.True(t, ok)
		require.Same(t, want[0], tk)
		want = want[1:]
	}
}

func TestTaskQueue_PushAfterStopIsRejected(t *testing.T) {
	q := newTaskQueue()

	assert.True(t, q.stop())
	assert.False(t, q.stop())

	assert.ErrorIs(t, q.push(noopTask()), ErrPoolStopped)
	assert.Zero(t, q.len())
}

func TestTaskQueue_StopDrainsBeforeShutdownSignal(t *testing.T) {
	q := newTaskQueue()

	require.NoError(t, q.push(noopTask()))
	require.NoError(t, q.push(noopTask()))
	q.stop()

	_, ok := q.pop()
	assert.True(t, ok)
	_, ok = q.pop()
	assert.True(t, ok)
	_, ok = q.pop()
	assert.False(t, ok)
}

func TestTaskQueue_PopBlocksUntilPush(t *testing.T) {
	q := newTaskQueue()

	got := make(chan *task, 1)
	go func() {
		tk, _ := q.pop()
		got <- tk
	}()

	select {
	case <-got:
		t.Fatalf("pop returned on an empty queue")
	case <-time.After(20 * time.Millisecond):
	}

	want := noopTask()
	require.NoError(t, q.push(want))
	select {
	case tk := <-got:
		assert.Same(t, want, tk)
	case <-time.After(time.Second):
		t.Fatalf("pop was not woken by push")
	}
}

func TestTaskQueue_StopWakesAllWaiters(t *testing.T) {
	q := newTaskQueue()

	const waiters = 4
	exited := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			_, ok := q.pop()
			exited <- ok
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.stop()

	for i := 0; i < waiters; i++ {
		select {
		case ok := <-exited:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatalf("waiter %d not woken by stop", i)
		}
	}
}
