package future

// errCanceled is the default failure reason used by CancelableFuture.Cancel
// when the caller does not supply one, matching asynqro's
// Failure("Canceled", 0, 0) default.
var errCanceled = FailureFromString("Canceled") //nolint:gochecknoglobals // immutable value, mirrors a constant

// CancelableFuture pairs a Future with the Promise needed to cancel it,
// giving the holder (as opposed to arbitrary callers of Future.Cancel) the
// ability to unilaterally fail the future with a cancellation reason.
type CancelableFuture[T any] struct {
	fut     *Future[T]
	promise *Promise[T]
}

// NewCancelable creates a CancelableFuture backed by a fresh Future/Promise
// pair.
func NewCancelable[T any]() *CancelableFuture[T] {
	fut, promise := New[T]()

	return &CancelableFuture[T]{fut: fut, promise: promise}
}

// Future returns the read-only Future view.
func (c *CancelableFuture[T]) Future() *Future[T] {
	return c.fut
}

// Promise returns the write-only Promise view, for producers that complete
// the future normally.
func (c *CancelableFuture[T]) Promise() *Promise[T] {
	return c.promise
}

// Cancel fails the future with reason, or with the default "Canceled"
// failure if reason is nil. It is a no-op if the future has already
// completed.
func (c *CancelableFuture[T]) Cancel(reason error) {
	if reason == nil {
		reason = errCanceled
	}

	c.promise.Failure(reason)
	c.fut.Cancel()
}
