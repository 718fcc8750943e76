package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
	rewardTotal     prometheus.Counter
	casConflicts    prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	transitionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestion_transitions_total",
		Help: "Total workflow transitions applied",
	}, []string{"action", "to"})

	rewardTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rewards_granted_total",
		Help: "Total rewards granted",
	})

	casConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "suggestion_version_conflicts_total",
		Help: "Total optimistic concurrency conflicts on suggestion writes",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, transitionTotal, rewardTotal, casConflicts, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		transitionTotal: transitionTotal,
		rewardTotal:     rewardTotal,
		casConflicts:    casConflicts,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveTransition records an applied workflow transition.
func (m *MetricsService) ObserveTransition(action, to string) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(action, to).Inc()
}

// ObserveReward records a granted reward.
func (m *MetricsService) ObserveReward() {
	if m == nil {
		return
	}
	m.rewardTotal.Inc()
}

// ObserveVersionConflict records an optimistic concurrency failure.
func (m *MetricsService) ObserveVersionConflict() {
	if m == nil {
		return
	}
	m.casConflicts.Inc()
}
