package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the spreadsheet sync loops. It satisfies the mirror's Metrics
// interface.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	pushTotal          *prometheus.CounterVec
	pullTotal          *prometheus.CounterVec
	projectionDuration prometheus.Histogram
	queueDepth         *prometheus.GaugeVec
}

// NewMetricsService registers all collectors on a private registry.
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

	pushTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_push_total",
		Help: "Audit queue entries pushed to the sheet, by table and result",
	}, []string{"table", "result"})

	pullTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheet_pull_total",
		Help: "Sheet edit notifications processed, by result",
	}, []string{"result"})

	projectionDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sheet_projection_duration_seconds",
		Help:    "Time spent projecting one row to the sheet",
		Buckets: prometheus.DefBuckets,
	})

	queueDepth := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "audit_queue_depth",
		Help: "Pending audit entries awaiting projection, by table",
	}, []string{"table"})

	registry.MustRegister(
		requestDuration, requestTotal,
		pushTotal, pullTotal, projectionDuration, queueDepth,
	)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		pushTotal:          pushTotal,
		pullTotal:          pullTotal,
		projectionDuration: projectionDuration,
		queueDepth:         queueDepth,
	}
}

// Handler exposes the scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveRequest records one served HTTP request.
func (m *MetricsService) ObserveRequest(method, path, status string, seconds float64) {
	m.requestDuration.WithLabelValues(method, path, status).Observe(seconds)
	m.requestTotal.WithLabelValues(method, path, status).Inc()
}

// PushProcessed implements the mirror's Metrics interface.
func (m *MetricsService) PushProcessed(table string, success bool) {
	m.pushTotal.WithLabelValues(table, resultLabel(success)).Inc()
}

// PullProcessed implements the mirror's Metrics interface.
func (m *MetricsService) PullProcessed(success bool) {
	m.pullTotal.WithLabelValues(resultLabel(success)).Inc()
}

// ProjectionObserved implements the mirror's Metrics interface.
func (m *MetricsService) ProjectionObserved(seconds float64) {
	m.projectionDuration.Observe(seconds)
}

// ObserveQueueDepth records the pending entry count for one table.
func (m *MetricsService) ObserveQueueDepth(table string, depth int64) {
	m.queueDepth.WithLabelValues(table).Set(float64(depth))
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
