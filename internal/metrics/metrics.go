// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by middleware and services.
type Recorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
	RecordTaskMoved(from, to string)
	RecordCreated(entity string)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	taskMoves    *prometheus.CounterVec
	created      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowspace_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowspace_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		taskMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowspace_task_moves_total",
			Help: "Kanban card moves by source and target column.",
		}, []string{"from", "to"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowspace_entities_created_total",
			Help: "Created entities by kind.",
		}, []string{"entity"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.taskMoves,
		c.created,
	)

	return c
}

// RecordHTTPRequest records one served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTaskMoved records a status change of a task.
func (c *Collector) RecordTaskMoved(from, to string) {
	c.taskMoves.WithLabelValues(from, to).Inc()
}

// RecordCreated records the creation of an entity.
func (c *Collector) RecordCreated(entity string) {
	c.created.WithLabelValues(entity).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
func (Nop) RecordTaskMoved(string, string)                      {}
func (Nop) RecordCreated(string)                                {}
