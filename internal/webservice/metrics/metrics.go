// Package metrics provides middleware and collectors for the web service metrics, to be interpreted by Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ubuntu/appliance-insights/internal/report"
)

type label string

// LabelPath is the label used for the path in metrics.
const LabelPath label = "path"

// EndpointMiddleware is a observer for collecting HTTP request metrics specific to endpoints.
type EndpointMiddleware struct {
	buckets  []float64
	registry prometheus.Registerer
}

// NewEndpointMiddleware creates a new EndpointMiddleware with the provided registry.
func NewEndpointMiddleware(registry prometheus.Registerer) *EndpointMiddleware {
	return &EndpointMiddleware{
		// Requests read one small local file. Max of 10.24.
		buckets:  prometheus.ExponentialBuckets(0.005, 2, 12),
		registry: registry,
	}
}

// Wrap is a middleware function that wraps an HTTP handler to collect metrics from an endpoint.
// Each handlerName must only be wrapped once per registry.
func (m *EndpointMiddleware) Wrap(handlerName string, handler http.Handler) http.HandlerFunc {
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"handler": handlerName}, m.registry)
	labels := []string{"method", "code", string(LabelPath)}

	requestsTotal := promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_endpoint_requests_total",
			Help: "Tracks the number of HTTP requests to the endpoint.",
		}, labels,
	)
	requestDuration := promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_endpoint_request_duration_seconds",
			Help:    "Tracks the latencies for HTTP requests to the endpoint.",
			Buckets: m.buckets,
		},
		labels,
	)
	responseSize := promauto.With(reg).NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_endpoint_response_size_bytes",
			Help: "Tracks the size of HTTP responses of the endpoint.",
		},
		labels,
	)

	base := promhttp.InstrumentHandlerCounter(
		requestsTotal,
		promhttp.InstrumentHandlerDuration(
			requestDuration,
			promhttp.InstrumentHandlerResponseSize(
				responseSize,
				handler,
				promhttp.WithLabelFromCtx(string(LabelPath), pathLabelFromCtx),
			),
			promhttp.WithLabelFromCtx(string(LabelPath), pathLabelFromCtx),
		),
		promhttp.WithLabelFromCtx(string(LabelPath), pathLabelFromCtx),
	)

	return base.ServeHTTP
}

func pathLabelFromCtx(ctx context.Context) string {
	if path, ok := ctx.Value(LabelPath).(string); ok {
		return path
	}
	return "unknown"
}

// ApplyLabels applies the path label to the request context.
func ApplyLabels(r *http.Request) {
	ctx := context.WithValue(r.Context(), LabelPath, r.URL.Path)
	*r = *r.WithContext(ctx)
}

// HandlerApplyLabels is a middleware helper function to apply labels to an HTTP handler.
func HandlerApplyLabels(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ApplyLabels(r)
		handler.ServeHTTP(w, r)
	})
}

// Report read results.
const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

// ReportReads tracks how reading the reports from disk went.
type ReportReads struct {
	reads      *prometheus.CounterVec
	appliances prometheus.Gauge
}

// NewReportReads creates and registers the report read collectors.
func NewReportReads(registry prometheus.Registerer) *ReportReads {
	return &ReportReads{
		reads: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "report_reads_total",
				Help: "Tracks the number of report reads by report and result.",
			}, []string{"report", "result"},
		),
		appliances: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "report_explanation_appliances",
				Help: "Number of appliances found in the last explanation report read.",
			},
		),
	}
}

// ObserveRead records the outcome of reading the named report.
func (r *ReportReads) ObserveRead(name string, err error) {
	result := resultOK
	switch {
	case errors.Is(err, report.ErrReportNotFound):
		result = resultNotFound
	case err != nil:
		result = resultError
	}
	r.reads.WithLabelValues(name, result).Inc()
}

// SetAppliances records the number of appliances of the last explanation report read.
func (r *ReportReads) SetAppliances(n int) {
	r.appliances.Set(float64(n))
}
