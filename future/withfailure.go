package future

// WithFailure marks a Failure for use where Go's type system has no
// implicit-conversion equivalent of asynqro's WithFailure trick: a producer
// function declared as func() (T, error) returns Sink[T](WithFailure{...})
// in its failure path instead of a zero value and a plain error, keeping the
// rich Failure information intact end to end.
type WithFailure struct {
	Failure Failure
}

// NewWithFailure wraps failure for use as a producer's failure return.
func NewWithFailure(failure Failure) WithFailure {
	return WithFailure{Failure: failure}
}

// WithFailureValue returns the zero value of T paired with failure as an
// error. It is the generic sink a producer uses in place of returning
// (T, error) directly: `return future.WithFailureValue[T](failure)`. It also
// stashes failure in the calling goroutine's thread-local failure slot, so
// that a caller several frames up who only has a bare T to work with (no
// error channel threaded through) still has a way to recover the failure:
// see ThreadLocalFailureSlot and Promise.Success's invariant I5 check.
func WithFailureValue[T any](failure Failure) (T, error) { //nolint:ireturn
	SetLastFailure(failure)

	var zero T

	return zero, failure
}

// WithFailureFuture builds an already-failed Future[T] from failure.
func WithFailureFuture[T any](failure Failure) *Future[T] {
	fut, promise := New[T]()
	promise.Failure(failure)

	return fut
}

// Sink is the generic equivalent of a WithFailure implicit conversion: it
// returns WithFailure.Failure as the (T, error) pair a producer function
// declared func() (T, error) is expected to return.
func Sink[T any](w WithFailure) (T, error) { //nolint:ireturn
	return WithFailureValue[T](w.Failure)
}

// SinkFuture is the generic equivalent of a WithFailure implicit conversion
// into an already-failed Future[T].
func SinkFuture[T any](w WithFailure) *Future[T] {
	return WithFailureFuture[T](w.Failure)
}
