// Package future implements a composable Future/Promise pair for asynchronous
// computation, modeled after the asynqro future/promise design: a Future is
// the read-only consumer handle to a one-shot result, a Promise is the
// write-only producer handle that fills it exactly once.
package future

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/amp-labs/asyncore/try"
	"go.uber.org/atomic"
)

// callbackWithContext pairs a context-aware callback with the context it
// should be invoked with.
type callbackWithContext[T any] struct {
	Context  context.Context //nolint:containedctx // stored for deferred invocation
	Callback func(context.Context, T)
}

// Future represents the read-only side of a one-shot asynchronous result.
//
// A Future starts Pending and transitions to Succeeded or Failed exactly
// once. Callbacks registered before completion are queued and invoked when
// the future completes; callbacks registered after completion are invoked
// immediately (inline with registration, from a new goroutine) so that
// "register then complete" and "complete then register" behave the same way.
type Future[T any] struct {
	mu   sync.Mutex
	once sync.Once

	resultReady chan struct{}
	result      try.Try[T]

	successCallbacks    []func(T)
	errorCallbacks      []func(error)
	resultCallbacks     []func(try.Try[T])
	successCtxCallbacks []callbackWithContext[T]
	errorCtxCallbacks   []callbackWithContext[error]
	resultCtxCallbacks  []callbackWithContext[try.Try[T]]

	promise *Promise[T]
}

// New creates a linked Future/Promise pair. Optional cancelFuncs are invoked
// (at most once, in order) when Cancel is called on the returned future
// before it completes.
func New[T any](cancelFuncs ...func()) (*Future[T], *Promise[T]) {
	fut := &Future[T]{
		resultReady: make(chan struct{}),
	}

	p := &Promise[T]{
		future:      fut,
		canceled:    atomic.NewBool(false),
		cancelFuncs: cancelFuncs,
	}

	fut.promise = p

	return fut, p
}

// Completed reports whether the future has been fulfilled, either
// successfully or with an error.
func (f *Future[T]) Completed() bool {
	select {
	case <-f.resultReady:
		return true
	default:
		return false
	}
}

// Succeeded reports whether the future completed successfully. It returns
// false if the future is still pending or failed.
func (f *Future[T]) Succeeded() bool {
	if !f.Completed() {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result.IsSuccess()
}

// Failed reports whether the future completed with an error.
func (f *Future[T]) Failed() bool {
	if !f.Completed() {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result.IsFailure()
}

// Await blocks until the future completes and returns its value and error.
func (f *Future[T]) Await() (T, error) { //nolint:ireturn
	<-f.resultReady

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result.Get()
}

// AwaitContext blocks until the future completes or ctx is done, whichever
// happens first. A nil context behaves like Await. If ctx finishes first,
// the zero value and ctx.Err() are returned; the future itself keeps running
// and can still be awaited later.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) { //nolint:ireturn
	if ctx == nil {
		return f.Await()
	}

	select {
	case <-f.resultReady:
		f.mu.Lock()
		defer f.mu.Unlock()

		return f.result.Get()
	case <-ctx.Done():
		var zero T

		return zero, ctx.Err()
	}
}

// Wait blocks until the future completes or the timeout elapses. It returns
// true if the future completed within the timeout.
func (f *Future[T]) Wait(timeout time.Duration) bool {
	select {
	case <-f.resultReady:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Result returns the future's value if it has already succeeded. The second
// return value is false if the future is pending or failed.
func (f *Future[T]) Result() (T, bool) { //nolint:ireturn
	if !f.Succeeded() {
		var zero T

		return zero, false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result.Value, true
}

// FailureReason returns the error the future failed with, or nil if it is
// pending or succeeded.
func (f *Future[T]) FailureReason() error {
	if !f.Failed() {
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result.Error
}

// ToChannel returns a channel that receives exactly one value (the future's
// result) and is then closed.
func (f *Future[T]) ToChannel() <-chan try.Try[T] {
	ch := make(chan try.Try[T], 1)

	f.OnResult(func(result try.Try[T]) {
		ch <- result
		close(ch)
	})

	return ch
}

// ToChannelContext behaves like ToChannel, but also resolves early with
// ctx.Err() if ctx finishes before the future does. A nil context behaves
// like ToChannel.
func (f *Future[T]) ToChannelContext(ctx context.Context) <-chan try.Try[T] {
	if ctx == nil {
		return f.ToChannel()
	}

	ch := make(chan try.Try[T], 1)

	var once sync.Once

	send := func(result try.Try[T]) {
		once.Do(func() {
			ch <- result
			close(ch)
		})
	}

	f.OnResult(send)

	go func() {
		select {
		case <-ctx.Done():
			var zero T

			send(try.Try[T]{Value: zero, Error: ctx.Err()})
		case <-f.resultReady:
		}
	}()

	return ch
}

// Cancel requests cancellation of the future. It invokes any cancel funcs
// registered via New, at most once. Cancellation is cooperative: it does not
// by itself complete the future, it only signals producers (typically via a
// linked context) that the result is no longer wanted. Safe to call multiple
// times and after completion.
func (f *Future[T]) Cancel() {
	f.promise.cancel()
}

// IsCancelled reports whether Cancel has been called on this future.
func (f *Future[T]) IsCancelled() bool {
	return f.promise.IsCancelled()
}

// registerOrInvoke appends a pending-state registration under the lock, or
// invokes it immediately if the future is already complete.
func (f *Future[T]) registerOrInvoke(register func(), invoke func(try.Try[T])) {
	f.mu.Lock()

	select {
	case <-f.resultReady:
		result := f.result
		f.mu.Unlock()
		invoke(result)

		return
	default:
	}

	register()
	f.mu.Unlock()
}

// OnSuccess registers a callback to be invoked with the value when the
// future succeeds. Nil callbacks are ignored. If the future has already
// succeeded, the callback runs immediately (from a new goroutine).
func (f *Future[T]) OnSuccess(callback func(T)) *Future[T] {
	if callback == nil {
		return f
	}

	f.registerOrInvoke(
		func() { f.successCallbacks = append(f.successCallbacks, callback) },
		func(result try.Try[T]) {
			if result.IsSuccess() {
				invokeCallback("OnSuccess", callback, result.Value)
			}
		},
	)

	return f
}

// OnError registers a callback to be invoked with the error when the future
// fails. Nil callbacks are ignored. If the future has already failed, the
// callback runs immediately (from a new goroutine).
func (f *Future[T]) OnError(callback func(error)) *Future[T] {
	if callback == nil {
		return f
	}

	f.registerOrInvoke(
		func() { f.errorCallbacks = append(f.errorCallbacks, callback) },
		func(result try.Try[T]) {
			if result.IsFailure() {
				invokeCallback("OnError", callback, result.Error)
			}
		},
	)

	return f
}

// OnResult registers a callback to be invoked with the full result
// (value+error) whenever the future completes, success or failure.
func (f *Future[T]) OnResult(callback func(try.Try[T])) *Future[T] {
	if callback == nil {
		return f
	}

	f.registerOrInvoke(
		func() { f.resultCallbacks = append(f.resultCallbacks, callback) },
		func(result try.Try[T]) { invokeCallback("OnResult", callback, result) },
	)

	return f
}

// OnSuccessContext is the context-aware variant of OnSuccess. A nil context
// is replaced with context.Background() at invocation time.
func (f *Future[T]) OnSuccessContext(ctx context.Context, callback func(context.Context, T)) *Future[T] {
	if callback == nil {
		return f
	}

	cb := callbackWithContext[T]{Context: ctx, Callback: callback}

	f.registerOrInvoke(
		func() { f.successCtxCallbacks = append(f.successCtxCallbacks, cb) },
		func(result try.Try[T]) {
			if result.IsSuccess() {
				invokeCallbackContext(ctx, "OnSuccessContext", callback, result.Value)
			}
		},
	)

	return f
}

// OnErrorContext is the context-aware variant of OnError.
func (f *Future[T]) OnErrorContext(ctx context.Context, callback func(context.Context, error)) *Future[T] {
	if callback == nil {
		return f
	}

	cb := callbackWithContext[error]{Context: ctx, Callback: callback}

	f.registerOrInvoke(
		func() { f.errorCtxCallbacks = append(f.errorCtxCallbacks, cb) },
		func(result try.Try[T]) {
			if result.IsFailure() {
				invokeCallbackContext(ctx, "OnErrorContext", callback, result.Error)
			}
		},
	)

	return f
}

// OnResultContext is the context-aware variant of OnResult.
func (f *Future[T]) OnResultContext(ctx context.Context, callback func(context.Context, try.Try[T])) *Future[T] {
	if callback == nil {
		return f
	}

	cb := callbackWithContext[try.Try[T]]{Context: ctx, Callback: callback}

	f.registerOrInvoke(
		func() { f.resultCtxCallbacks = append(f.resultCtxCallbacks, cb) },
		func(result try.Try[T]) { invokeCallbackContext(ctx, "OnResultContext", callback, result) },
	)

	return f
}

// ForEach registers a callback invoked on success, ignoring the value. It is
// a convenience wrapper over OnSuccess for side-effecting consumers.
func (f *Future[T]) ForEach(callback func()) *Future[T] {
	return f.OnSuccess(func(T) { callback() })
}

// Executor controls where the work backing a Future runs. The zero-value
// goroutineExecutor (used by Go/GoContext) spawns a bare goroutine; tests
// substitute executors that run synchronously.
type Executor[T any] interface {
	Go(promise *Promise[T], callback func() (T, error))
	GoContext(ctx context.Context, promise *Promise[T], callback func(ctx context.Context) (T, error))
}

type goroutineExecutor[T any] struct{}

func (goroutineExecutor[T]) Go(promise *Promise[T], callback func() (T, error)) {
	go func() {
		defer recoverInto(promise)

		value, err := callback()
		promise.Complete(value, err)
	}()
}

func (goroutineExecutor[T]) GoContext(
	ctx context.Context, promise *Promise[T], callback func(ctx context.Context) (T, error),
) {
	go func() {
		defer recoverInto(promise)

		value, err := callback(ctx)
		promise.Complete(value, err)
	}()
}

// recoverInto completes promise with a panic-recovery error if the calling
// goroutine is unwinding from a panic.
func recoverInto[T any](promise *Promise[T]) {
	if r := recover(); r != nil {
		var zero T

		promise.Complete(zero, panicError(r, debug.Stack()))
	}
}

// Go runs f in a new goroutine and returns a Future for its result. Panics
// inside f are recovered and turned into a failed future.
func Go[T any](f func() (T, error)) *Future[T] {
	return GoWithExecutor[T](goroutineExecutor[T]{}, f)
}

// GoContext runs f in a new goroutine, passing it ctx, and returns a Future
// for its result.
func GoContext[T any](ctx context.Context, f func(ctx context.Context) (T, error)) *Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	return GoContextWithExecutor[T](ctx, goroutineExecutor[T]{}, f)
}

// GoWithExecutor runs f via the given executor instead of a bare goroutine.
func GoWithExecutor[T any](executor Executor[T], f func() (T, error)) *Future[T] {
	fut, promise := New[T]()
	executor.Go(promise, f)

	return fut
}

// GoContextWithExecutor runs f via the given executor instead of a bare
// goroutine, passing it ctx. Calling the returned Future's Cancel method
// cancels the derived context passed to f.
func GoContextWithExecutor[T any](
	ctx context.Context, executor Executor[T], f func(ctx context.Context) (T, error),
) *Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	cctx, cancel := context.WithCancel(ctx)

	fut, promise := New[T](cancel)
	executor.GoContext(cctx, promise, f)

	return fut
}

func panicError(r any, stack []byte) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("recovered from panic: %w\nstack trace:\n%s", err, string(stack))
	}

	return fmt.Errorf("recovered from panic: %v\nstack trace:\n%s", r, string(stack))
}
