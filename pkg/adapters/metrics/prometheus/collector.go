package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements MetricsCollector using Prometheus
type Collector struct {
	workflowsExecuted *prometheus.CounterVec
	workflowDuration  *prometheus.HistogramVec
	matches           *prometheus.CounterVec
	semanticFailures  *prometheus.CounterVec
	stageProduced     *prometheus.CounterVec
	stageFailed       *prometheus.CounterVec
	workerPoolIdle    prometheus.Gauge
	workerPoolBusy    prometheus.Gauge
	workerPoolStopped prometheus.Gauge
	queueDepth        prometheus.Gauge
}

// NewCollector creates a new Prometheus metrics collector
func NewCollector() *Collector {
	return &Collector{
		workflowsExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_workflows_executed_total",
				Help: "Total number of workflow executions",
			},
			[]string{"workflow", "status"},
		),
		workflowDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atelier_workflow_duration_seconds",
				Help:    "Workflow execution duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"workflow"},
		),
		matches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_matches_total",
				Help: "Total number of intent matches by deciding tier",
			},
			[]string{"tier", "matched"},
		),
		semanticFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_semantic_failures_total",
				Help: "Total number of semantic matcher failures",
			},
			[]string{"kind"},
		),
		stageProduced: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_stages_produced_total",
				Help: "Total number of stage artifacts produced",
			},
			[]string{"workflow"},
		),
		stageFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atelier_stages_failed_total",
				Help: "Total number of failed stages",
			},
			[]string{"workflow"},
		),
		workerPoolIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "atelier_worker_pool_idle",
				Help: "Number of idle workers",
			},
		),
		workerPoolBusy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "atelier_worker_pool_busy",
				Help: "Number of busy workers",
			},
		),
		workerPoolStopped: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "atelier_worker_pool_stopped",
				Help: "Number of stopped workers",
			},
		),
		queueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "atelier_queue_depth",
				Help: "Current depth of the worker queue",
			},
		),
	}
}

// RecordWorkflowExecuted records one workflow execution
func (c *Collector) RecordWorkflowExecuted(workflowID, status string, duration time.Duration) {
	c.workflowsExecuted.WithLabelValues(workflowID, status).Inc()
	c.workflowDuration.WithLabelValues(workflowID).Observe(duration.Seconds())
}

// RecordMatch records one intent match decision
func (c *Collector) RecordMatch(tier string, matched bool) {
	m := "false"
	if matched {
		m = "true"
	}
	c.matches.WithLabelValues(tier, m).Inc()
}

// RecordSemanticFailure records one semantic tier failure
func (c *Collector) RecordSemanticFailure(kind string) {
	c.semanticFailures.WithLabelValues(kind).Inc()
}

// RecordStageFanout records the outcome of a stage plan
func (c *Collector) RecordStageFanout(workflowID string, produced, failed int) {
	c.stageProduced.WithLabelValues(workflowID).Add(float64(produced))
	c.stageFailed.WithLabelValues(workflowID).Add(float64(failed))
}

// RecordWorkerPoolStatus records worker pool status
func (c *Collector) RecordWorkerPoolStatus(idle, busy, stopped int) {
	c.workerPoolIdle.Set(float64(idle))
	c.workerPoolBusy.Set(float64(busy))
	c.workerPoolStopped.Set(float64(stopped))
}

// RecordQueueDepth records the current worker queue depth
func (c *Collector) RecordQueueDepth(depth int) {
	c.queueDepth.Set(float64(depth))
}
