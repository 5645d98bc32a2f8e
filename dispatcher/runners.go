package dispatcher

import (
	"context"

	"github.com/amp-labs/asyncore/future"
	"github.com/amp-labs/asyncore/logger"
	"github.com/amp-labs/asyncore/metrics"
)

// Run submits f to d under restriction/restrictor and returns a Future for
// its result. Go can't overload by return-type shape the way the original
// C++ run()/runAndForget() pair did, so RunAndForget below is the
// fire-and-forget counterpart instead of a second Run overload.
func Run[T any](d *Dispatcher, restriction Restriction, restrictor string, f func() (T, error)) *future.Future[T] {
	fut, promise := future.New[T]()

	err := d.submit(restriction, restrictor, func() {
		value, err := f()
		if err != nil {
			metrics.DispatcherTasksFailed.WithLabelValues(d.name, restriction.String()).Inc()
		}

		promise.Complete(value, err)
	})
	if err != nil {
		promise.Failure(err)
	}

	return fut
}

// RunContext is Run, threading ctx to f and to the returned future's Cancel.
func RunContext[T any](
	d *Dispatcher, ctx context.Context, restriction Restriction, restrictor string,
	f func(context.Context) (T, error),
) *future.Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}

	cctx, cancel := context.WithCancel(ctx)
	fut, promise := future.New[T](cancel)

	err := d.submit(restriction, restrictor, func() {
		value, err := f(cctx)
		promise.Complete(value, err)
	})
	if err != nil {
		promise.Failure(err)
	}

	return fut
}

// RunFuture is Run for producers that are themselves already asynchronous:
// f returns a Future directly instead of a value. The worker that runs f
// stays occupied until the inner future completes, and the returned future
// resolves with the inner future's value or error.
func RunFuture[T any](d *Dispatcher, restriction Restriction, restrictor string, f func() *future.Future[T]) *future.Future[T] {
	return Run(d, restriction, restrictor, func() (T, error) {
		inner := f()
		if inner == nil {
			var zero T

			return zero, errNilProducer
		}

		return inner.Await()
	})
}

// RunAndForget submits f to d under restriction/restrictor without tracking
// its result. Panics and errors are logged, never propagated.
func RunAndForget(d *Dispatcher, restriction Restriction, restrictor string, f func() error) {
	id := correlationID()

	err := d.submit(restriction, restrictor, func() {
		if runErr := f(); runErr != nil {
			logger.Get().Error("dispatcher.RunAndForget task failed", "task_id", id, "error", runErr)
		}
	})
	if err != nil {
		logger.Get().Error("dispatcher.RunAndForget could not submit task", "task_id", id, "error", err)
	}
}

// SubmitSequence runs makers one at a time on d, in order, stopping at the
// first error. Each maker is itself dispatched through d, so later makers
// still compete for worker capacity with everything else submitted to d.
func SubmitSequence[T any](
	d *Dispatcher, restriction Restriction, restrictor string, makers ...func() (T, error),
) *future.Future[[]T] {
	steps := make([]func() *future.Future[T], len(makers))

	for i, mk := range makers {
		steps[i] = func() *future.Future[T] { return Run(d, restriction, restrictor, mk) }
	}

	return future.Sequence(steps...)
}

// SubmitClustered partitions inputs into contiguous clusters of at least
// minClusterSize items apiece, runs f once per cluster through d under the
// same restriction/restrictor, and concatenates the per-cluster results back
// into input order. The number of clusters is capped at
// d.RestrictorCapacity(restriction, restrictor), so a cluster never competes
// with more concurrent work than the restrictor would otherwise allow.
// Short-circuits on the first cluster error, like future.Combine.
func SubmitClustered[I, R any](
	d *Dispatcher, restriction Restriction, restrictor string, minClusterSize int,
	inputs []I, f func([]I) ([]R, error),
) *future.Future[[]R] {
	if len(inputs) == 0 {
		fut, promise := future.New[[]R]()
		promise.Success(nil)

		return fut
	}

	capacity := d.RestrictorCapacity(restriction, restrictor)
	clusters := partitionIntoClusters(inputs, minClusterSize, capacity)

	futs := make([]*future.Future[[]R], len(clusters))

	for i, cluster := range clusters {
		cluster := cluster

		futs[i] = Run(d, restriction, restrictor, func() ([]R, error) {
			return f(cluster)
		})
	}

	return future.Map(future.Combine(futs...), concatClusters[R])
}

// clusterSizes computes the clustered-partitioning rule: with n inputs, a
// minimum cluster size of minClusterSize, and a restrictor capacity of
// capacity, it produces min(capacity, max(1, n/minClusterSize)) contiguous
// cluster sizes that differ from one another by at most one and are each
// at least minClusterSize — except when n < minClusterSize, which yields a
// single cluster of size n.
func clusterSizes(n, minClusterSize, capacity int) []int {
	if minClusterSize < 1 {
		minClusterSize = 1
	}

	if n < minClusterSize {
		return []int{n}
	}

	numClusters := n / minClusterSize
	if numClusters < 1 {
		numClusters = 1
	}

	if capacity > 0 && numClusters > capacity {
		numClusters = capacity
	}

	base, extra := n/numClusters, n%numClusters
	sizes := make([]int, numClusters)

	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}

	return sizes
}

func partitionIntoClusters[I any](inputs []I, minClusterSize, capacity int) [][]I {
	sizes := clusterSizes(len(inputs), minClusterSize, capacity)
	clusters := make([][]I, len(sizes))
	offset := 0

	for i, size := range sizes {
		clusters[i] = inputs[offset : offset+size]
		offset += size
	}

	return clusters
}

func concatClusters[R any](chunks [][]R) ([]R, error) {
	total := 0
	for _, c := range chunks {
		total += len(c)
	}

	result := make([]R, 0, total)
	for _, c := range chunks {
		result = append(result, c...)
	}

	return result, nil
}

var errNilProducer = future.FailureFromString("nil future producer")
