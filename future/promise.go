package future

import (
	"github.com/amp-labs/asyncore/try"
	"go.uber.org/atomic"
)

// Promise is the write-only producer side of a Future: it holds a reference
// to the Future it fills, not the other way around, so a Future can be
// handed out freely without exposing the ability to complete it.
type Promise[T any] struct {
	future      *Future[T]
	canceled    *atomic.Bool
	cancelFuncs []func()
}

// IsCancelled reports whether Cancel has been called on the associated future.
func (p *Promise[T]) IsCancelled() bool {
	return p.canceled.Load()
}

// cancel runs the registered cancel funcs exactly once, even under concurrent calls.
func (p *Promise[T]) cancel() {
	if p.canceled.CompareAndSwap(false, true) {
		for _, cancel := range p.cancelFuncs {
			cancel()
		}
	}
}

// fulfill stores result, unblocks every waiter, and fires callbacks. Only
// the first call (guarded by the future's sync.Once) has any effect.
func (p *Promise[T]) fulfill(result try.Try[T]) {
	defer func() { _ = recover() }() // guards against a stray double-close

	p.future.once.Do(func() {
		p.future.mu.Lock()

		successCallbacks := p.future.successCallbacks
		errorCallbacks := p.future.errorCallbacks
		resultCallbacks := p.future.resultCallbacks
		successCtxCallbacks := p.future.successCtxCallbacks
		errorCtxCallbacks := p.future.errorCtxCallbacks
		resultCtxCallbacks := p.future.resultCtxCallbacks

		p.future.successCallbacks = nil
		p.future.errorCallbacks = nil
		p.future.resultCallbacks = nil
		p.future.successCtxCallbacks = nil
		p.future.errorCtxCallbacks = nil
		p.future.resultCtxCallbacks = nil

		p.future.result = result
		close(p.future.resultReady)

		p.future.mu.Unlock()

		invokeResultCallbacks(resultCallbacks, resultCtxCallbacks, result)

		if result.Error == nil {
			invokeSuccessCallbacks(successCallbacks, successCtxCallbacks, result.Value)
		} else {
			invokeErrorCallbacks(errorCallbacks, errorCtxCallbacks, result.Error)
		}
	})
}

// invokeResultCallbacks invokes every OnResult/OnResultContext callback.
// Called without the future's mutex held, so callbacks may block freely.
func invokeResultCallbacks[T any](
	resultCallbacks []func(try.Try[T]),
	resultCtxCallbacks []callbackWithContext[try.Try[T]],
	result try.Try[T],
) {
	for _, callback := range resultCallbacks {
		invokeCallback("OnResult", callback, result)
	}

	for _, cb := range resultCtxCallbacks {
		invokeCallbackContext(cb.Context, "OnResultContext", cb.Callback, result)
	}
}

// invokeSuccessCallbacks invokes every OnSuccess/OnSuccessContext callback.
// Only called when result.Error == nil.
func invokeSuccessCallbacks[T any](
	successCallbacks []func(T),
	successCtxCallbacks []callbackWithContext[T],
	result T,
) {
	for _, callback := range successCallbacks {
		invokeCallback("OnSuccess", callback, result)
	}

	for _, cb := range successCtxCallbacks {
		invokeCallbackContext(cb.Context, "OnSuccessContext", cb.Callback, result)
	}
}

// invokeErrorCallbacks invokes every OnError/OnErrorContext callback. Only
// called when result.Error != nil.
func invokeErrorCallbacks(
	errorCallbacks []func(error),
	errorCtxCallbacks []callbackWithContext[error],
	result error,
) {
	for _, callback := range errorCallbacks {
		invokeCallback("OnError", callback, result)
	}

	for _, cb := range errorCtxCallbacks {
		invokeCallbackContext(cb.Context, "OnErrorContext", cb.Callback, result)
	}
}

// Success fulfills the promise with a successful value, unless the calling
// goroutine's thread-local failure slot is set, in which case the
// completion is recorded as a failure carrying that stashed Failure instead
// and the slot is cleared. This lets a producer several frames removed from
// Success (one that only has a bare T to return, via WithFailureValue) still
// fail the promise even though the failure never flowed back as an explicit
// error. Safe to call from any goroutine; only the first call to
// Success/Failure/Complete on a given promise has any effect.
func (p *Promise[T]) Success(value T) {
	if failure, ok := LastFailure(); ok {
		ResetLastFailure()
		p.Failure(failure)

		return
	}

	p.fulfill(try.Try[T]{Value: value, Error: nil})
}

// Failure fulfills the promise with an error, using the zero value of T.
// Safe to call from any goroutine; only the first call to
// Success/Failure/Complete on a given promise has any effect.
func (p *Promise[T]) Failure(err error) {
	var zero T

	p.fulfill(try.Try[T]{Value: zero, Error: err})
}

// Complete fulfills the promise from a (value, error) pair, following Go's
// standard error-handling convention: Failure(err) if err != nil, otherwise
// Success(value). This is what Go/GoContext use internally.
func (p *Promise[T]) Complete(value T, err error) {
	if err != nil {
		p.Failure(err)
	} else {
		p.Success(value)
	}
}

// Future returns the Future this promise fulfills.
func (p *Promise[T]) Future() *Future[T] {
	return p.future
}

// Filled reports whether the promise has already been fulfilled.
func (p *Promise[T]) Filled() bool {
	return p.future.Completed()
}
