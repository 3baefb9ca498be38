package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "clipforge"

	jobsSubmittedTotal = "jobs_submitted_total"
	jobsFinishedTotal  = "jobs_finished_total"

	sourceLabel = "source"
	statusLabel = "status"
)

// JobsSubmittedTotal counts accepted submissions partitioned by video source.
var JobsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      jobsSubmittedTotal,
		Help:      "Total number of processing jobs submitted, partitioned by source.",
	},
	[]string{sourceLabel},
)

// JobsFinishedTotal counts jobs that reached a terminal state.
var JobsFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      jobsFinishedTotal,
		Help:      "Total number of processing jobs that reached a terminal status.",
	},
	[]string{statusLabel},
)

func IncreaseJobsSubmittedTotal(source string) {
	JobsSubmittedTotal.WithLabelValues(source).Inc()
}

func IncreaseJobsFinishedTotal(status string) {
	JobsFinishedTotal.WithLabelValues(status).Inc()
}

type PrometheusMetricsHandler struct {
	registry *prometheus.Registry
}

func NewPrometheusMetricsHandler() *PrometheusMetricsHandler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(JobsSubmittedTotal)
	registry.MustRegister(JobsFinishedTotal)

	return &PrometheusMetricsHandler{registry: registry}
}

func (p *PrometheusMetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
