// Package metrics exposes Prometheus collectors for the generation workflow.
// Labels are limited to small fixed sets; ids never become label values.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
)

const namespace = "animations"

type Collector struct {
	generations     *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	upstreamErrors  *prometheus.CounterVec
	quotaRejections *prometheus.CounterVec
	duration        prometheus.Histogram
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil Collector is valid and records nothing.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Finished generation workflows, by terminal status.",
		}, []string{"status"}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Persisted animation status transitions, by target status.",
		}, []string{"to"}),
		upstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Render service failures, by stage and kind.",
		}, []string{"stage", "kind"}),
		quotaRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Generation requests refused for quota, by plan.",
		}, []string{"plan"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Wall time of a generation workflow from creation to terminal status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency, by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (c *Collector) Transition(to domain.Status) {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues(string(to)).Inc()
}

func (c *Collector) Finished(status domain.Status, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.generations.WithLabelValues(string(status)).Inc()
	c.duration.Observe(elapsed.Seconds())
}

func (c *Collector) UpstreamError(stage models.Stage, kind string) {
	if c == nil {
		return
	}
	c.upstreamErrors.WithLabelValues(string(stage), kind).Inc()
}

func (c *Collector) QuotaRejected(plan models.Plan) {
	if c == nil {
		return
	}
	c.quotaRejections.WithLabelValues(string(plan)).Inc()
}

// ObserveRequest records one served HTTP request. route must be the router
// pattern, not the raw path.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
