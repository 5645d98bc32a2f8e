// Package dispatcher implements a bounded worker pool with pluggable
// per-task restriction policies. Unlike a plain worker pool, the scheduler
// tracks per-restrictor usage so that, for example, all "Intensive" tasks
// on one Dispatcher never exceed IntensiveCapacity() (the number of logical
// CPUs unless ASYNCORE_INTENSIVE_CAPACITY is set) regardless of how many
// other tasks are queued, and "ThreadBound" tasks
// sharing a key always land on the same worker goroutine.
package dispatcher

import (
	"fmt"
	"runtime"
	"time"

	"github.com/amp-labs/asyncore/envutil"
	"github.com/amp-labs/asyncore/errors"
	"github.com/amp-labs/asyncore/internal/spinlock"
	"github.com/amp-labs/asyncore/lazy"
	"github.com/amp-labs/asyncore/logger"
	"github.com/amp-labs/asyncore/metrics"
	"github.com/amp-labs/asyncore/shutdown"
	"github.com/google/uuid"
)

// envDispatcherCapacity overrides DefaultCapacity for the default dispatcher.
const envDispatcherCapacity = "ASYNCORE_DISPATCHER_CAPACITY"

// envIntensiveCapacity overrides IntensiveCapacity's runtime.NumCPU() reading.
const envIntensiveCapacity = "ASYNCORE_INTENSIVE_CAPACITY"

// DefaultCustomCapacity is the capacity given to a Custom restrictor that
// was never registered via AddCustomRestrictor.
const DefaultCustomCapacity = 16

// DefaultCapacity is the dispatcher's total worker capacity when none is
// configured.
const DefaultCapacity = 64

// IntensiveCapacity returns the shared capacity for all Intensive-restricted
// tasks: ASYNCORE_INTENSIVE_CAPACITY if set, otherwise the number of logical
// CPUs, at least 1.
func IntensiveCapacity() int {
	fallback := runtime.NumCPU()
	if fallback < 1 {
		fallback = 1
	}

	return envutil.Int[int](envIntensiveCapacity).ValueOrElse(fallback)
}

// Dispatcher is a bounded, lazily-grown pool of worker goroutines that
// schedules queued tasks according to their Restriction.
type Dispatcher struct {
	lock spinlock.SpinLock

	name     string
	capacity int

	workers          []*worker
	waitingWorkers   map[int]struct{}
	waitingBound     map[int]struct{}
	tasks            []taskInfo
	workerBindings   map[string]int
	boundWorkers     map[int]int
	restrictorUsage  map[Restriction]map[string]int
	customCapacities map[string]int
	stopped          bool
}

// New creates an independent Dispatcher with the given total capacity. Most
// callers should use Default instead; New exists for tests and for
// applications that need more than one isolated pool.
func New(capacity int) *Dispatcher {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &Dispatcher{
		name:             uuid.NewString(),
		capacity:         capacity,
		waitingWorkers:   make(map[int]struct{}),
		waitingBound:     make(map[int]struct{}),
		workerBindings:   make(map[string]int),
		boundWorkers:     make(map[int]int),
		restrictorUsage:  make(map[Restriction]map[string]int),
		customCapacities: make(map[string]int),
	}
}

var defaultDispatcher = lazy.New(func() *Dispatcher { //nolint:gochecknoglobals // process-wide singleton, same pattern as bgworker's workerPool
	capacity := envutil.Int[int](envDispatcherCapacity).ValueOrElse(DefaultCapacity)
	d := New(capacity)
	d.name = "default"

	shutdown.BeforeShutdown(func() {
		logger.Get().Debug("shutting down default task dispatcher")
		d.Shutdown(5 * time.Second) //nolint:mnd // generous drain window for in-flight tasks
	})

	return d
})

// Default returns the process-wide Dispatcher singleton, created lazily on
// first use.
func Default() *Dispatcher {
	return defaultDispatcher.Get()
}

// Capacity returns the dispatcher's total worker capacity.
func (d *Dispatcher) Capacity() int {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.capacity
}

// SetCapacity grows the dispatcher's capacity. It never shrinks capacity
// below the number of workers already started.
func (d *Dispatcher) SetCapacity(capacity int) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if len(d.workers) <= capacity {
		d.capacity = capacity
	}
}

// RestrictorCapacity returns the maximum number of tasks that may run
// concurrently under restriction/restrictor.
func (d *Dispatcher) RestrictorCapacity(restriction Restriction, restrictor string) int {
	switch restriction {
	case ThreadBound:
		return 1
	case Intensive:
		return IntensiveCapacity()
	case None:
		return d.Capacity()
	case Custom:
		if restrictor == "" {
			return d.Capacity()
		}

		d.lock.Lock()
		defer d.lock.Unlock()

		if cap, ok := d.customCapacities[restrictor]; ok {
			return cap
		}

		return DefaultCustomCapacity
	default:
		return d.Capacity()
	}
}

// AddCustomRestrictor registers (or updates) the capacity for a named Custom
// restrictor. capacity is clamped to [1, dispatcher capacity].
func (d *Dispatcher) AddCustomRestrictor(restrictor string, capacity int) error {
	if restrictor == "" {
		return fmt.Errorf("%w: empty restrictor name", errors.ErrWrongType)
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	if capacity < 1 {
		capacity = 1
	}

	if capacity > d.capacity {
		capacity = d.capacity
	}

	d.customCapacities[restrictor] = capacity

	return nil
}

// submit queues run under the given restriction/restrictor and (re)runs the
// scheduler. Returns ErrDispatcherStopped if Shutdown has already completed.
func (d *Dispatcher) submit(restriction Restriction, restrictor string, run func()) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.stopped {
		return errors.ErrDispatcherStopped
	}

	d.tasks = append(d.tasks, taskInfo{run: run, restriction: restriction, restrictor: restrictor})
	metrics.DispatcherTasksSubmitted.WithLabelValues(d.name, restriction.String()).Inc()

	d.schedule(-1)
	d.reportGaugesLocked()

	return nil
}

// reportGaugesLocked refreshes the gauge metrics from current dispatcher
// state. It must be called while holding d.lock.
func (d *Dispatcher) reportGaugesLocked() {
	metrics.DispatcherWorkersAlive.WithLabelValues(d.name).Set(float64(len(d.workers)))
	metrics.DispatcherWorkersIdle.WithLabelValues(d.name).Set(float64(len(d.waitingWorkers) + len(d.waitingBound)))
	metrics.DispatcherWorkersBound.WithLabelValues(d.name).Set(float64(len(d.boundWorkers)))
	metrics.DispatcherTasksPending.WithLabelValues(d.name).Set(float64(len(d.tasks)))
}

// taskFinished is invoked by a worker goroutine after it completes a task.
func (d *Dispatcher) taskFinished(workerID int, task taskInfo) {
	d.lock.Lock()
	defer d.lock.Unlock()

	if task.restriction != ThreadBound {
		if restrictor := task.schedulingRestrictor(); restrictor != "" {
			usage := d.restrictorUsage[task.restriction]
			if usage[restrictor] <= 1 {
				delete(usage, restrictor)
			} else {
				usage[restrictor]--
			}

			metrics.DispatcherRestrictorInUse.
				WithLabelValues(d.name, task.restriction.String(), restrictor).
				Set(float64(usage[restrictor]))
		}
	}

	if _, bound := d.boundWorkers[workerID]; bound {
		d.waitingBound[workerID] = struct{}{}
		d.schedule(-1)
	} else {
		d.waitingWorkers[workerID] = struct{}{}
		d.schedule(workerID)
	}

	d.reportGaugesLocked()
}

// schedule assigns at most one queued task to a waiting worker. It must be
// called while holding d.lock.
func (d *Dispatcher) schedule(forcedWorkerID int) {
	if d.stopped {
		return
	}

	if len(d.waitingWorkers) == 0 {
		if len(d.workers) < d.capacity {
			id := len(d.workers)
			w := newWorker(id)
			w.start(d.taskFinished)
			d.workers = append(d.workers, w)
			d.waitingWorkers[id] = struct{}{}
		} else {
			if len(d.waitingBound) == 0 {
				return
			}

			boundID := firstOf(d.waitingBound)
			delete(d.waitingBound, boundID)
			d.waitingWorkers[boundID] = struct{}{}
		}
	}

	workerID := -1
	if _, ok := d.waitingWorkers[forcedWorkerID]; forcedWorkerID >= 0 && ok {
		workerID = forcedWorkerID
	} else {
		workerID = firstOf(d.waitingWorkers)
	}

	for i, task := range d.tasks {
		if d.tryScheduleTask(task, workerID) {
			d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)

			return
		}
	}
}

// tryScheduleTask attempts to place task on workerID, honoring its
// restriction. It must be called while holding d.lock.
func (d *Dispatcher) tryScheduleTask(task taskInfo, workerID int) bool {
	switch task.restriction {
	case ThreadBound:
		return d.tryScheduleThreadBound(task, workerID)
	case None:
		// no restrictor bookkeeping
	default:
		restrictor := task.schedulingRestrictor()
		if restrictor != "" {
			// Same rules as RestrictorCapacity, which cannot be called here
			// because it takes d.lock, already held by the caller.
			capacityLeft := d.capacity

			switch task.restriction {
			case Intensive:
				capacityLeft = IntensiveCapacity()
			case Custom:
				capacityLeft = DefaultCustomCapacity
				if c, ok := d.customCapacities[restrictor]; ok {
					capacityLeft = c
				}
			}

			capacityLeft -= d.restrictorUsage[task.restriction][restrictor]

			if capacityLeft <= 0 {
				return false
			}

			if d.restrictorUsage[task.restriction] == nil {
				d.restrictorUsage[task.restriction] = make(map[string]int)
			}

			d.restrictorUsage[task.restriction][restrictor]++

			metrics.DispatcherRestrictorInUse.
				WithLabelValues(d.name, task.restriction.String(), restrictor).
				Set(float64(d.restrictorUsage[task.restriction][restrictor]))
		}
	}

	if workerID < 0 {
		return false
	}

	delete(d.waitingWorkers, workerID)
	delete(d.waitingBound, workerID)
	d.workers[workerID].assign(task)

	return true
}

func (d *Dispatcher) tryScheduleThreadBound(task taskInfo, workerID int) bool {
	if bound, ok := d.workerBindings[task.restrictor]; ok {
		workerID = bound

		_, waiting := d.waitingWorkers[workerID]
		_, waitingBound := d.waitingBound[workerID]

		if !waiting && !waitingBound {
			return false
		}
	} else {
		if len(d.boundWorkers) < d.capacity {
			if _, alreadyBound := d.boundWorkers[workerID]; alreadyBound {
				workerID = findUnbound(d.waitingWorkers, d.boundWorkers)
			}
		} else {
			workerID = leastBound(d.waitingBound, d.boundWorkers, -1)
			workerID = leastBound(d.waitingWorkers, d.boundWorkers, workerID)
		}

		if workerID < 0 {
			return false
		}

		d.boundWorkers[workerID]++
		d.workerBindings[task.restrictor] = workerID
	}

	if workerID < 0 {
		return false
	}

	delete(d.waitingWorkers, workerID)
	delete(d.waitingBound, workerID)
	d.workers[workerID].assign(task)

	return true
}

func firstOf(set map[int]struct{}) int {
	for id := range set {
		return id
	}

	return -1
}

func findUnbound(waiting map[int]struct{}, bound map[int]int) int {
	for id := range waiting {
		if _, isBound := bound[id]; !isBound {
			return id
		}
	}

	return -1
}

func leastBound(candidates map[int]struct{}, bound map[int]int, acc int) int {
	for id := range candidates {
		if acc < 0 || bound[acc] > bound[id] {
			acc = id
		}
	}

	return acc
}

// Shutdown poisons every worker, waits up to timeout for them to drain, and
// terminates any stragglers by simply abandoning them (Go has no
// QThread::terminate equivalent; abandoned goroutines are left to finish or
// block forever, which is why callers should keep tasks short-lived and
// context-aware).
func (d *Dispatcher) Shutdown(timeout time.Duration) {
	d.lock.Lock()
	d.stopped = true
	workers := append([]*worker(nil), d.workers...)
	d.reportGaugesLocked()

	// Poisoning happens under d.lock so it can't race a concurrent
	// taskFinished->schedule->assign on the same worker: assign's channel
	// send and poisonPill's channel close would otherwise be able to
	// interleave and panic with "send on closed channel".
	for _, w := range workers {
		w.poisonPill()
	}

	d.lock.Unlock()

	deadline := time.After(timeout)

	for _, w := range workers {
		select {
		case <-w.done:
		case <-deadline:
			logger.Get().Warn("dispatcher shutdown timed out waiting for worker", "worker_id", w.id)

			return
		}
	}
}

// correlationID produces a short identifier used to tag submitted tasks in
// logs.
func correlationID() string {
	return uuid.NewString()
}
