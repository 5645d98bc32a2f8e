package future

import (
	"context"
	"errors"

	"github.com/amp-labs/asyncore/try"
)

var (
	errNilFuture   = errors.New("nil future")
	errNilFunction = errors.New("nil function")
)

// tryResult is a local alias kept for readability in this file; it is the
// same value try.Try[T] returns from OnResult.
type tryResult[T any] = try.Try[T]

// Map transforms a successful future's value with f, producing a new future.
// Errors from fut propagate unchanged; errors from f become the new
// future's error.
func Map[A, B any](fut *Future[A], f func(A) (B, error)) *Future[B] {
	return MapWithExecutor[A, B](fut, goroutineExecutor[B]{}, f)
}

// MapWithExecutor is Map, but runs f via executor instead of a bare goroutine.
func MapWithExecutor[A, B any](fut *Future[A], executor Executor[B], f func(A) (B, error)) *Future[B] {
	out, promise := New[B]()

	if fut == nil {
		promise.Failure(errNilFuture)

		return out
	}

	if f == nil {
		promise.Failure(errNilFunction)

		return out
	}

	fut.OnResult(func(result tryResult[A]) {
		if result.IsFailure() {
			promise.Failure(result.Error)

			return
		}

		executor.Go(promise, func() (B, error) {
			return f(result.Value)
		})
	})

	return out
}

// MapContext is the context-aware variant of Map.
func MapContext[A, B any](
	ctx context.Context, fut *Future[A], f func(context.Context, A) (B, error),
) *Future[B] {
	return MapContextWithExecutor[A, B](ctx, fut, goroutineExecutor[B]{}, f)
}

// MapContextWithExecutor is MapContext, run via executor.
func MapContextWithExecutor[A, B any](
	ctx context.Context, fut *Future[A], executor Executor[B], f func(context.Context, A) (B, error),
) *Future[B] {
	out, promise := New[B]()

	if fut == nil {
		promise.Failure(errNilFuture)

		return out
	}

	if f == nil {
		promise.Failure(errNilFunction)

		return out
	}

	if ctx == nil {
		ctx = context.Background()
	}

	fut.OnResult(func(result tryResult[A]) {
		if result.IsFailure() {
			promise.Failure(result.Error)

			return
		}

		executor.GoContext(ctx, promise, func(ctx context.Context) (B, error) {
			return f(ctx, result.Value)
		})
	})

	return out
}

// FlatMap chains a second future off the successful value of fut. Errors
// from either future propagate to the result.
func FlatMap[A, B any](fut *Future[A], f func(A) *Future[B]) *Future[B] {
	return FlatMapWithExecutor[A, B](fut, goroutineExecutor[B]{}, f)
}

// FlatMapWithExecutor is FlatMap, but runs f and awaits the inner future via
// executor instead of a bare goroutine.
func FlatMapWithExecutor[A, B any](fut *Future[A], executor Executor[B], f func(A) *Future[B]) *Future[B] {
	out, promise := New[B]()

	if fut == nil {
		promise.Failure(errNilFuture)

		return out
	}

	if f == nil {
		promise.Failure(errNilFunction)

		return out
	}

	fut.OnResult(func(result tryResult[A]) {
		if result.IsFailure() {
			promise.Failure(result.Error)

			return
		}

		executor.Go(promise, func() (B, error) {
			inner := f(result.Value)
			if inner == nil {
				var zero B

				return zero, errNilFuture
			}

			return inner.Await()
		})
	})

	return out
}

// FlatMapContext is the context-aware variant of FlatMap.
func FlatMapContext[A, B any](
	ctx context.Context, fut *Future[A], f func(A) *Future[B],
) *Future[B] {
	return FlatMapContextWithExecutor[A, B](ctx, fut, goroutineExecutor[B]{}, f)
}

// FlatMapContextWithExecutor is FlatMapContext, run via executor. f itself
// does not take a context parameter; only the await step is
// executor-scheduled.
func FlatMapContextWithExecutor[A, B any](
	ctx context.Context, fut *Future[A], executor Executor[B], f func(A) *Future[B],
) *Future[B] {
	out, promise := New[B]()

	if fut == nil {
		promise.Failure(errNilFuture)

		return out
	}

	if f == nil {
		promise.Failure(errNilFunction)

		return out
	}

	if ctx == nil {
		ctx = context.Background()
	}

	fut.OnResult(func(result tryResult[A]) {
		if result.IsFailure() {
			promise.Failure(result.Error)

			return
		}

		executor.GoContext(ctx, promise, func(ctx context.Context) (B, error) {
			inner := f(result.Value)
			if inner == nil {
				var zero B

				return zero, errNilFuture
			}

			return inner.AwaitContext(ctx)
		})
	})

	return out
}

// AndThen runs f after fut succeeds, discarding fut's value, and resolves
// with f's result. It is FlatMap with the input value dropped.
func AndThen[A, B any](fut *Future[A], f func() *Future[B]) *Future[B] {
	return FlatMap(fut, func(A) *Future[B] { return f() })
}

// AndThenValue runs f after fut succeeds, discarding fut's value, and
// resolves with f's (value, error) pair run on a new goroutine.
func AndThenValue[A, B any](fut *Future[A], f func() (B, error)) *Future[B] {
	return Map(fut, func(A) (B, error) { return f() })
}

// errFilterRejected is returned by Filter when the predicate rejects the value.
var errFilterRejected = errors.New("value rejected by filter")

// Filter keeps a successful future's value only if predicate returns true;
// otherwise the future fails with errFilterRejected.
func Filter[A any](fut *Future[A], predicate func(A) bool) *Future[A] {
	return Map(fut, func(value A) (A, error) {
		if predicate == nil || predicate(value) {
			return value, nil
		}

		var zero A

		return zero, errFilterRejected
	})
}

// Recover substitutes a value computed from the error when fut fails,
// letting a failed future "recover" into a successful one.
func Recover[A any](fut *Future[A], f func(error) A) *Future[A] {
	out, promise := New[A]()

	if fut == nil {
		promise.Failure(errNilFuture)

		return out
	}

	fut.OnResult(func(result tryResult[A]) {
		if result.IsSuccess() || f == nil {
			promise.Complete(result.Value, result.Error)

			return
		}

		promise.Success(f(result.Error))
	})

	return out
}

// RecoverWith is Recover, but the substitute is itself a Future, allowing
// recovery to be asynchronous.
func RecoverWith[A any](fut *Future[A], f func(error) *Future[A]) *Future[A] {
	out, promise := New[A]()

	if fut == nil {
		promise.Failure(errNilFuture)

		return out
	}

	fut.OnResult(func(result tryResult[A]) {
		if result.IsSuccess() || f == nil {
			promise.Complete(result.Value, result.Error)

			return
		}

		inner := f(result.Error)
		if inner == nil {
			promise.Failure(errNilFuture)

			return
		}

		inner.OnResult(func(innerResult tryResult[A]) {
			promise.Complete(innerResult.Value, innerResult.Error)
		})
	})

	return out
}

// RecoverValue substitutes a fixed value when fut fails.
func RecoverValue[A any](fut *Future[A], value A) *Future[A] {
	return Recover(fut, func(error) A { return value })
}

// Combine waits for all futures and collects their values in order. It
// short-circuits: on the first input-order error it stops awaiting the
// remaining futures (which keep running in the background) and fails
// immediately. An empty input list resolves to a nil slice.
func Combine[A any](futs ...*Future[A]) *Future[[]A] {
	return CombineWithExecutor[A](goroutineExecutor[[]A]{}, futs...)
}

// CombineWithExecutor is Combine, but the final join/await step runs via
// executor instead of a bare goroutine. The executor is not invoked at all
// for an empty input list.
func CombineWithExecutor[A any](executor Executor[[]A], futs ...*Future[A]) *Future[[]A] {
	out, promise := New[[]A]()

	if len(futs) == 0 {
		promise.Success(nil)

		return out
	}

	executor.Go(promise, func() ([]A, error) {
		results := make([]A, len(futs))

		for i, fut := range futs {
			value, err := fut.Await()
			if err != nil {
				return nil, err
			}

			results[i] = value
		}

		return results, nil
	})

	return out
}

// CombineContext is the context-aware variant of Combine.
func CombineContext[A any](ctx context.Context, futs ...*Future[A]) *Future[[]A] {
	return CombineContextWithExecutor[A](ctx, goroutineExecutor[[]A]{}, futs...)
}

// CombineContextWithExecutor is CombineContext, run via executor.
func CombineContextWithExecutor[A any](
	ctx context.Context, executor Executor[[]A], futs ...*Future[A],
) *Future[[]A] {
	out, promise := New[[]A]()

	if len(futs) == 0 {
		promise.Success(nil)

		return out
	}

	if ctx == nil {
		ctx = context.Background()
	}

	executor.GoContext(ctx, promise, func(ctx context.Context) ([]A, error) {
		results := make([]A, len(futs))

		for i, fut := range futs {
			value, err := fut.AwaitContext(ctx)
			if err != nil {
				return nil, err
			}

			results[i] = value
		}

		return results, nil
	})

	return out
}

// CombineNoShortCircuit waits for all futures regardless of failures and
// joins every error together (via errors.Join) instead of returning only
// the first one. On any failure the result value is nil. An empty input
// list resolves to an empty (non-nil) slice.
func CombineNoShortCircuit[A any](futs ...*Future[A]) *Future[[]A] {
	return CombineNoShortCircuitWithExecutor[A](goroutineExecutor[[]A]{}, futs...)
}

// CombineNoShortCircuitWithExecutor is CombineNoShortCircuit, run via executor.
func CombineNoShortCircuitWithExecutor[A any](executor Executor[[]A], futs ...*Future[A]) *Future[[]A] {
	out, promise := New[[]A]()

	if len(futs) == 0 {
		promise.Success([]A{})

		return out
	}

	executor.Go(promise, func() ([]A, error) {
		return awaitAllNoShortCircuit(futs, func(fut *Future[A]) (A, error) { return fut.Await() })
	})

	return out
}

// CombineContextNoShortCircuit is the context-aware variant of
// CombineNoShortCircuit.
func CombineContextNoShortCircuit[A any](ctx context.Context, futs ...*Future[A]) *Future[[]A] {
	return CombineContextNoShortCircuitWithExecutor[A](ctx, goroutineExecutor[[]A]{}, futs...)
}

// CombineContextNoShortCircuitWithExecutor is CombineContextNoShortCircuit,
// run via executor.
func CombineContextNoShortCircuitWithExecutor[A any](
	ctx context.Context, executor Executor[[]A], futs ...*Future[A],
) *Future[[]A] {
	out, promise := New[[]A]()

	if len(futs) == 0 {
		promise.Success([]A{})

		return out
	}

	if ctx == nil {
		ctx = context.Background()
	}

	executor.GoContext(ctx, promise, func(ctx context.Context) ([]A, error) {
		return awaitAllNoShortCircuit(futs, func(fut *Future[A]) (A, error) { return fut.AwaitContext(ctx) })
	})

	return out
}

func awaitAllNoShortCircuit[A any](futs []*Future[A], await func(*Future[A]) (A, error)) ([]A, error) {
	results := make([]A, len(futs))
	errs := make([]error, len(futs))
	failed := false

	for i, fut := range futs {
		value, err := await(fut)
		results[i] = value
		errs[i] = err

		if err != nil {
			failed = true
		}
	}

	if !failed {
		return results, nil
	}

	return nil, errors.Join(errs...)
}

// Sequence calls the makers in futs one at a time, waiting for each future
// to complete before calling the next maker, and fails fast on the first
// error (or nil future): the makers after it are never called.
func Sequence[A any](futs ...func() *Future[A]) *Future[[]A] {
	out, promise := New[[]A]()

	go func() {
		results := make([]A, 0, len(futs))

		for _, mk := range futs {
			fut := mk()
			if fut == nil {
				promise.Failure(errNilFuture)

				return
			}

			value, err := fut.Await()
			if err != nil {
				promise.Failure(err)

				return
			}

			results = append(results, value)
		}

		promise.Success(results)
	}()

	return out
}
