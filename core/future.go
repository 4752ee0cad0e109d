package core

import (
	"context"
	"sync"
)

// Future is a single assignment result. The first Resolve or Reject wins and
// every later call is ignored.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func NewResolvedFuture[T any](value T) *Future[T] {
	future := NewFuture[T]()
	future.Resolve(value)
	return future
}

func NewRejectedFuture[T any](err error) *Future[T] {
	future := NewFuture[T]()
	future.Reject(err)
	return future
}

func (f *Future[T]) Resolve(value T) bool {
	return f.settle(value, nil)
}

func (f *Future[T]) Reject(err error) bool {
	var zero T
	return f.settle(zero, err)
}

func (f *Future[T]) settle(value T, err error) bool {
	if f == nil {
		return false
	}
	settled := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		settled = true
		close(f.done)
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the future settles or ctx is done. Abandoning the wait
// does not affect the future.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
