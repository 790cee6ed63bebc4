package threadpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Task outcome labels of Metrics.TasksCompleted.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomePanic = "panic"
)

// Metrics holds the Prometheus collectors of one or more pools, keyed by the
// pool name (see WithName).
type Metrics struct {
	TasksSubmitted *prometheus.CounterVec
	TasksRejected  *prometheus.CounterVec
	TasksCompleted *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	QueueWait      *prometheus.HistogramVec
	QueuedTasks    *prometheus.GaugeVec
	BusyWorkers    *prometheus.GaugeVec
	Workers        *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TasksSubmitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "tasks_submitted_total",
			Help:      "Total number of submissions, rejected ones included",
		}, []string{"pool"}),
		TasksRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "tasks_rejected_total",
			Help:      "Total number of submissions rejected because the pool was stopping",
		}, []string{"pool"}),
		TasksCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "tasks_completed_total",
			Help:      "Total number of executed tasks by outcome",
		}, []string{"pool", "outcome"}),
		TaskDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "task_duration_seconds",
			Help:      "Task execution time",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pool"}),
		QueueWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "queue_wait_seconds",
			Help:      "Time a task spent queued before a worker picked it up",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pool"}),
		QueuedTasks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "queued_tasks",
			Help:      "Number of tasks waiting in the queue",
		}, []string{"pool"}),
		BusyWorkers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "busy_workers",
			Help:      "Number of workers currently executing a task",
		}, []string{"pool"}),
		Workers: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "threadpool",
			Name:      "workers",
			Help:      "Number of live worker goroutines",
		}, []string{"pool"}),
	}
}

// The methods below are nil-safe so the pool can call them unconditionally.

// enqueuing runs before push so the queued gauge never goes negative when a
// worker picks the task up immediately.
func (m *Metrics) enqueuing(pool string) {
	if m == nil {
		return
	}
	m.QueuedTasks.WithLabelValues(pool).Inc()
}

func (m *Metrics) submitted(pool string) {
	if m == nil {
		return
	}
	m.TasksSubmitted.WithLabelValues(pool).Inc()
}

func (m *Metrics) rejected(pool string) {
	if m == nil {
		return
	}
	m.QueuedTasks.WithLabelValues(pool).Dec()
	m.TasksRejected.WithLabelValues(pool).Inc()
}

func (m *Metrics) started(pool string, wait time.Duration) {
	if m == nil {
		return
	}
	m.QueuedTasks.WithLabelValues(pool).Dec()
	m.BusyWorkers.WithLabelValues(pool).Inc()
	m.QueueWait.WithLabelValues(pool).Observe(wait.Seconds())
}

func (m *Metrics) finished(pool, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.BusyWorkers.WithLabelValues(pool).Dec()
	m.TasksCompleted.WithLabelValues(pool, outcome).Inc()
	m.TaskDuration.WithLabelValues(pool).Observe(took.Seconds())
}

func (m *Metrics) workers(pool string, delta int) {
	if m == nil {
		return
	}
	m.Workers.WithLabelValues(pool).Add(float64(delta))
}
