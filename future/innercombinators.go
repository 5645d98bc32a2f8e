package future

import "github.com/amp-labs/asyncore/internal/containeralgo"

// InnerMap transforms each element of a future holding a slice, producing a
// future of the mapped slice.
func InnerMap[A, B any](fut *Future[[]A], f func(A) B) *Future[[]B] {
	return Map(fut, func(in []A) ([]B, error) {
		return containeralgo.Map(in, f), nil
	})
}

// InnerFilter keeps only the elements of a future-held slice that satisfy
// predicate.
func InnerFilter[A any](fut *Future[[]A], predicate func(A) bool) *Future[[]A] {
	return Map(fut, func(in []A) ([]A, error) {
		return containeralgo.Filter(in, predicate), nil
	})
}

// InnerReduce folds a future-held slice into a single value.
func InnerReduce[A, B any](fut *Future[[]A], initial B, f func(B, A) B) *Future[B] {
	return Map(fut, func(in []A) (B, error) {
		return containeralgo.Reduce(in, initial, f), nil
	})
}

// InnerReduceByMutation is InnerReduce using an in-place accumulator mutator.
func InnerReduceByMutation[A, B any](fut *Future[[]A], initial B, f func(*B, A)) *Future[B] {
	return Map(fut, func(in []A) (B, error) {
		return containeralgo.ReduceByMutation(in, initial, f), nil
	})
}

// InnerFlatten concatenates a future holding a slice of slices into a future
// holding a single flat slice.
func InnerFlatten[A any](fut *Future[[][]A]) *Future[[]A] {
	return Map(fut, func(in [][]A) ([]A, error) {
		return containeralgo.Flatten(in), nil
	})
}
