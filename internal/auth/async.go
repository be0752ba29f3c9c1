package auth

import "context"

// result carries the outcome of work run by async.
type result[T any] struct {
	value T
	err   error
}

// async runs fn on its own goroutine. The channel is buffered so the
// goroutine finishes even when nobody receives.
func async[T any](fn func() (T, error)) <-chan result[T] {
	ch := make(chan result[T], 1)
	go func() {
		v, err := fn()
		ch <- result[T]{value: v, err: err}
	}()
	return ch
}

// await blocks until ch delivers or ctx is done.
func await[T any](ctx context.Context, ch <-chan result[T]) (T, error) {
	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// run executes fn asynchronously unless ctx is already done, then awaits it.
func run[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return await(ctx, async(fn))
}
