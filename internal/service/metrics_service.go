package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	fanoutWrites    *prometheus.CounterVec
	trackingStreams prometheus.Gauge
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

	fanoutWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fanout_set_writes_total",
		Help: "Total assignment set unions performed by the fan-out engine",
	}, []string{"trigger"})

	trackingStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tracking_streams_active",
		Help: "Number of live tracking subscriptions currently open",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, fanoutWrites, trackingStreams, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		fanoutWrites:    fanoutWrites,
		trackingStreams: trackingStreams,
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

// RecordFanout counts assignment set unions by trigger ("homework" or "student").
func (m *MetricsService) RecordFanout(trigger string, writes int) {
	if m == nil || writes <= 0 {
		return
	}
	m.fanoutWrites.WithLabelValues(trigger).Add(float64(writes))
}

// StreamOpened and StreamClosed track the live tracking subscription gauge.
func (m *MetricsService) StreamOpened() {
	if m == nil {
		return
	}
	m.trackingStreams.Inc()
}

func (m *MetricsService) StreamClosed() {
	if m == nil {
		return
	}
	m.trackingStreams.Dec()
}
