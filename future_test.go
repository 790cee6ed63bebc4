package threadpool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_CompleteOnlyOnce(t *testing.T) {
	f := newFuture[int]()

	assert.True(t, f.complete(1, nil))
	assert.False(t, f.complete(2, errors.New("late")))

	v, err := f.Get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestFuture_ManyReadersSeeSameOutcome(t *testing.T) {
	want := errors.New("boom")
	f := newFuture[string]()

	const readers = 16
	var wg sync.WaitGroup
	errs := make([]error, readers)
	vals := make([]string, readers)
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			vals[i], errs[i] = f.Get()
		}()
	}

	time.Sleep(10 * time.Millisecond)
	assert.False(t, f.IsDone())
	f.complete("partial", want)
	wg.Wait()

	for i := 0; i < readers; i++ {
		assert.ErrorIs(t, errs[i], want)
		assert.Equal(t, "partial", vals[i])
	}
}

func TestFuture_GetContextCanceled(t *testing.T) {
	f := newFuture[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.GetContext(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	f.complete(3, nil)
	v, err := f.GetContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestFuture_GetTimeout(t *testing.T) {
	f := newFuture[int]()

	start := time.Now()
	_, err := f.GetTimeout(30 * time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.complete(9, nil)
	}()
	v, err := f.GetTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 9, v)

	// already resolved: no timer involved
	v, err = f.GetTimeout(0)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}

func TestFuture_DoneChannel(t *testing.T) {
	f := newFuture[struct{}]()

	select {
	case <-f.Done():
		t.Fatalf("Done closed before completion")
	default:
	}

	f.complete(struct{}{}, nil)
	<-f.Done()
	assert.True(t, f.IsDone())
}
