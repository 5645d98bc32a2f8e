// Package metrics exposes Prometheus instrumentation for the dispatcher
// package: promauto gauge/counter vectors labeled by a logical name.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ( //nolint:gochecknoglobals
	DispatcherWorkersAlive = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "asyncore_dispatcher_workers_alive",
		Help: "The number of worker goroutines currently started in the dispatcher.",
	}, []string{"dispatcher"})

	DispatcherWorkersIdle = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "asyncore_dispatcher_workers_idle",
		Help: "The number of worker goroutines currently waiting for a task.",
	}, []string{"dispatcher"})

	DispatcherWorkersBound = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "asyncore_dispatcher_workers_bound",
		Help: "The number of worker goroutines currently pinned to a ThreadBound restrictor key.",
	}, []string{"dispatcher"})

	DispatcherTasksPending = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "asyncore_dispatcher_tasks_pending",
		Help: "The number of tasks queued but not yet assigned to a worker.",
	}, []string{"dispatcher"})

	DispatcherTasksSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asyncore_dispatcher_tasks_submitted_total",
		Help: "The total number of tasks submitted to the dispatcher.",
	}, []string{"dispatcher", "restriction"})

	DispatcherTasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asyncore_dispatcher_tasks_failed_total",
		Help: "The total number of tasks that completed with an error or panic.",
	}, []string{"dispatcher", "restriction"})

	DispatcherRestrictorInUse = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "asyncore_dispatcher_restrictor_in_use",
		Help: "The number of tasks currently running under a given restriction/restrictor pair.",
	}, []string{"dispatcher", "restriction", "restrictor"})
)
