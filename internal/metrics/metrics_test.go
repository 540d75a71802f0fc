package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPageView(t *testing.T) {
	m := New()
	m.PageView("grammar", true)
	m.PageView("grammar", true)
	m.PageView("../../etc/passwd", false)

	if got := testutil.ToFloat64(m.pageViews.WithLabelValues("grammar")); got != 2 {
		t.Errorf("expected 2 grammar views, got %v", got)
	}
	if got := testutil.ToFloat64(m.pageViews.WithLabelValues(UnknownSection)); got != 1 {
		t.Errorf("expected 1 unknown view, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.PageView("home", true)
	m.BackendError("fetch_resources")
	m.RequestSubmitted()
}

func TestHandler(t *testing.T) {
	m := New()
	m.BackendError("fetch_categories")
	m.RequestSubmitted()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(w.Body)

	for _, want := range []string{
		`tutorsite_backend_errors_total{op="fetch_categories"} 1`,
		`tutorsite_student_requests_total 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}
