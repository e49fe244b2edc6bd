package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fightintel"

// Collector exposes Prometheus metrics for HTTP traffic and the analysis pipeline.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	oracleDuration *prometheus.HistogramVec
	oracleCalls    *prometheus.CounterVec
	toolCalls      *prometheus.CounterVec
	agentRuns      *prometheus.CounterVec
	agentSteps     prometheus.Histogram
	batchEntries   *prometheus.CounterVec
}

// NewCollector registers every metric on a private registry.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "path", "status"}),
		oracleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "call_duration_seconds",
			Help:      "Latency distribution for language model calls.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		}, []string{"provider", "status"}),
		oracleCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "oracle",
			Name:      "calls_total",
			Help:      "Total number of language model calls by outcome.",
		}, []string{"provider", "status"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "tool_invocations_total",
			Help:      "Tool invocations requested by the agent.",
		}, []string{"tool"}),
		agentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "runs_total",
			Help:      "Completed agent runs by stop reason.",
		}, []string{"stop_reason"}),
		agentSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "agent",
			Name:      "iterations",
			Help:      "Oracle turns used per agent run.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6, 8, 10, 15},
		}),
		batchEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "entries_total",
			Help:      "Event file entries by outcome.",
		}, []string{"outcome"}),
	}

	collectors := []prometheus.Collector{
		c.requestDuration, c.requestTotal,
		c.oracleDuration, c.oracleCalls,
		c.toolCalls, c.agentRuns, c.agentSteps,
		c.batchEntries,
	}
	for _, col := range collectors {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
// Requests routed by chi are labelled with their route pattern.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// ObserveOracleCall records one backend attempt.
func (c *Collector) ObserveOracleCall(provider, status string, latency time.Duration) {
	c.oracleCalls.WithLabelValues(provider, status).Inc()
	c.oracleDuration.WithLabelValues(provider, status).Observe(latency.Seconds())
}

// ObserveTool counts a tool invocation.
func (c *Collector) ObserveTool(tool string) {
	c.toolCalls.WithLabelValues(tool).Inc()
}

// ObserveAgentRun records how an agent run ended.
func (c *Collector) ObserveAgentRun(stopReason string, iterations int) {
	c.agentRuns.WithLabelValues(stopReason).Inc()
	c.agentSteps.Observe(float64(iterations))
}

// ObserveBatchEntry counts a processed, skipped or failed event entry.
func (c *Collector) ObserveBatchEntry(outcome string) {
	c.batchEntries.WithLabelValues(outcome).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
