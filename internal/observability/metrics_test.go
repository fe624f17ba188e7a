package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	_ = metrics.Jobs().Track("bir:form2550m:generate").End(nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	metrics.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	body := rr.Body.String()
	if !strings.Contains(body, "odyssey_jobs_total") {
		t.Fatalf("expected body to contain odyssey_jobs_total, got: %s", body)
	}
	if !strings.Contains(body, "odyssey_bir_or_numbers_issued_total 0") {
		t.Fatalf("expected body to contain the OR counter, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/bir/vat")

	req := httptest.NewRequest(http.MethodGet, "/bir/vat", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsRR := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	metricsBody := metricsRR.Body.String()
	if !strings.Contains(metricsBody, "http_requests_total{code=\"418\",route=\"/bir/vat\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "http_request_duration_seconds_bucket{route=\"/bir/vat\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}

func TestBIRCounters(t *testing.T) {
	metrics := NewMetrics()

	metrics.ObserveORIssued()
	metrics.ObserveORIssued()
	metrics.ObserveReceiptValidation(true)
	metrics.ObserveReceiptValidation(false)
	metrics.ObserveReceiptValidation(false)
	metrics.ObserveFormGenerated("2550M")

	if got := testutil.ToFloat64(metrics.orIssued); got != 2 {
		t.Fatalf("expected 2 OR numbers, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.receiptChecks.WithLabelValues("invalid")); got != 2 {
		t.Fatalf("expected 2 invalid receipts, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.receiptChecks.WithLabelValues("valid")); got != 1 {
		t.Fatalf("expected 1 valid receipt, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.formsGenerated.WithLabelValues("2550M")); got != 1 {
		t.Fatalf("expected 1 form, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveORIssued()
	metrics.ObserveReceiptValidation(false)
	metrics.ObserveFormGenerated("alphalist")
	if metrics.Jobs() != nil {
		t.Fatal("expected nil job metrics")
	}

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
