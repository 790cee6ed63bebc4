package threadpool_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	threadpool "github.com/NoobFreshMeat/Std-MultiThreadTest"
)

func Example() {
	p := threadpool.New(4, threadpool.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	futures := make([]*threadpool.Future[int], 0, 8)
	for i := 0; i < 8; i++ {
		f, err := threadpool.SubmitValue(p, func() int { return i * i })
		if err != nil {
			panic(err)
		}
		futures = append(futures, f)
	}

	squares := make([]int, 0, len(futures))
	for _, f := range futures {
		v, _ := f.Get()
		squares = append(squares, v)
	}
	fmt.Println(squares)

	_ = p.Close()
	_, err := p.Go(func() {})
	fmt.Println(errors.Is(err, threadpool.ErrPoolStopped))
	// Output:
	// [0 1 4 9 16 25 36 49]
	// true
}

func ExampleFuture_Get_error() {
	p := threadpool.New(1, threadpool.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	defer p.Close()

	errNotFound := errors.New("not found")
	f, _ := threadpool.Submit(p, func() (string, error) { return "", errNotFound })

	_, err := f.Get()
	fmt.Println(errors.Is(err, errNotFound))
	// Output: true
}
