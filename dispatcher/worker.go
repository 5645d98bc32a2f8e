package dispatcher

import (
	"runtime/debug"

	"github.com/amp-labs/asyncore/logger"
	"github.com/amp-labs/asyncore/utils"
	"go.uber.org/atomic"
)

// worker is one pool goroutine. It blocks on nextTask until it is handed a
// task or poisoned, using a channel in place of a wait-condition+mutex pair.
type worker struct {
	id       int
	nextTask chan taskInfo
	poisoned atomic.Bool
	done     chan struct{}
}

func newWorker(id int) *worker {
	return &worker{
		id:       id,
		nextTask: make(chan taskInfo, 1),
		done:     make(chan struct{}),
	}
}

// start launches the worker's run loop. onFinished is called after every
// task completes (including panics, which are recovered) so the dispatcher
// can reschedule.
func (w *worker) start(onFinished func(workerID int, task taskInfo)) {
	go func() {
		defer close(w.done)

		for {
			task, ok := <-w.nextTask
			if !ok || w.poisoned.Load() {
				return
			}

			w.runTask(task)
			onFinished(w.id, task)
		}
	}()
}

func (w *worker) runTask(task taskInfo) {
	defer func() {
		if r := recover(); r != nil {
			if err := utils.GetPanicRecoveryError(r, debug.Stack()); err != nil {
				logger.Get().Error("panic recovered in dispatcher worker", "worker_id", w.id, "error", err)
			}
		}
	}()

	task.run()
}

// assign hands task to the worker. The caller must only call assign on a
// worker it has already removed from the waiting set.
func (w *worker) assign(task taskInfo) {
	w.nextTask <- task
}

// poisonPill stops the worker after its current task (if any) finishes.
func (w *worker) poisonPill() {
	w.poisoned.Store(true)
	close(w.nextTask)
}
