// Package metrics exposes the site's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UnknownSection replaces section ids that are not in the menu so that
// arbitrary ?page= values cannot grow the label set.
const UnknownSection = "unknown"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	reg           *prometheus.Registry
	pageViews     *prometheus.CounterVec
	backendErrors *prometheus.CounterVec
	requests      prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		pageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorsite_page_views_total",
			Help: "Page views by navigation section.",
		}, []string{"section"}),
		backendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tutorsite_backend_errors_total",
			Help: "Failed storage operations by operation name.",
		}, []string{"op"}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tutorsite_student_requests_total",
			Help: "Student topic requests submitted.",
		}),
	}
	reg.MustRegister(
		m.pageViews,
		m.backendErrors,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// PageView counts a view of section. known is false for sections that are
// not in the menu.
func (m *Metrics) PageView(section string, known bool) {
	if m == nil {
		return
	}
	if !known {
		section = UnknownSection
	}
	m.pageViews.WithLabelValues(section).Inc()
}

// BackendError counts a failed storage operation.
func (m *Metrics) BackendError(op string) {
	if m == nil {
		return
	}
	m.backendErrors.WithLabelValues(op).Inc()
}

// RequestSubmitted counts a stored student request.
func (m *Metrics) RequestSubmitted() {
	if m == nil {
		return
	}
	m.requests.Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
