package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "alarm_gateway_"

var (
	registerOnce sync.Once
	registry     = prometheus.NewRegistry()

	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	actionsAppended *prometheus.CounterVec
	handlerErrors   *prometheus.CounterVec
)

// Init registers the gateway collectors. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status",
			},
			[]string{"route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)
		actionsAppended = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "actions_appended_total",
				Help: "Rows appended to the action log by event",
			},
			[]string{"event"},
		)
		handlerErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "handler_errors_total",
				Help: "Handler failures by error kind",
			},
			[]string{"kind"},
		)

		registry.MustRegister(
			httpRequests,
			httpLatency,
			actionsAppended,
			handlerErrors,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// ObserveRequest records one served request
func ObserveRequest(route string, status int, elapsed time.Duration) {
	if httpRequests == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ActionAppended counts a row written to the action log
func ActionAppended(event string) {
	if actionsAppended == nil {
		return
	}
	actionsAppended.WithLabelValues(event).Inc()
}

// HandlerError counts a handler failure
func HandlerError(kind string) {
	if handlerErrors == nil {
		return
	}
	handlerErrors.WithLabelValues(kind).Inc()
}

// Handler exposes the registry in the prometheus text format
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// Gatherer returns the registry, for tests
func Gatherer() prometheus.Gatherer {
	return registry
}
