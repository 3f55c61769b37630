package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts endpoint calls and failures by route pattern.
type Metrics struct {
	Calls  *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myapp_endpoint_calls_total",
			Help: "Total number of calls per endpoint.",
		}, []string{"endpoint"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myapp_errors_total",
			Help: "Total number of error responses per endpoint.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.Calls, m.Errors)
	return m
}

// countCalls increments the call counter once the route is resolved.
func (m *Metrics) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(res, req)
		m.Calls.WithLabelValues(endpoint(req)).Inc()
	})
}

func (m *Metrics) countError(req *http.Request) {
	m.Errors.WithLabelValues(endpoint(req)).Inc()
}

// endpoint is the matched route pattern, so ids in paths or query strings do
// not become label values.
func endpoint(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
