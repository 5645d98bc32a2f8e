package future

import (
	"context"

	"github.com/amp-labs/asyncore/logger"
)

// Async runs f in a goroutine and forgets it; panics are recovered and
// logged, there is no way to observe completion or a result.
func Async(f func()) {
	fut := Go[struct{}](func() (struct{}, error) {
		f()

		return struct{}{}, nil
	})

	fut.OnError(func(err error) {
		logger.Get().Error("future.Async", "error", err)
	})
}

// AsyncWithError is Async for an f that can return an error; the error (or
// a recovered panic) is logged, never propagated anywhere observable.
func AsyncWithError(f func() error) {
	fut := Go[struct{}](func() (struct{}, error) {
		err := f()

		return struct{}{}, err
	})

	fut.OnError(func(err error) {
		logger.Get().Error("future.Async", "error", err)
	})
}

// AsyncContext is Async threading ctx through to f.
func AsyncContext(ctx context.Context, f func(ctx context.Context)) {
	fut := GoContext[struct{}](ctx, func(ctx context.Context) (struct{}, error) {
		f(ctx)

		return struct{}{}, nil
	})

	fut.OnError(func(err error) {
		logger.Get(ctx).Error("future.AsyncContext", "error", err)
	})
}

// AsyncContextWithError combines AsyncContext and AsyncWithError.
func AsyncContextWithError(ctx context.Context, f func(ctx context.Context) error) {
	fut := GoContext[struct{}](ctx, func(ctx context.Context) (struct{}, error) {
		err := f(ctx)

		return struct{}{}, err
	})

	fut.OnError(func(err error) {
		logger.Get(ctx).Error("future.AsyncContext", "error", err)
	})
}
