package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesLedgerMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveLoad("dir", nil, map[string]int{"transactionaccountingline": 2, "account": 0})
	metrics.ObserveLoad("postgres", errors.New("boom"), nil)
	metrics.ObserveReport("trial-balance", time.Now(), nil)
	metrics.SetDatasets(3)
	metrics.ObserveCacheLookup(true)

	body := scrape(t, metrics)
	for _, want := range []string{
		`glreport_dataset_loads_total{outcome="ok",source="dir"} 1`,
		`glreport_dataset_loads_total{outcome="error",source="postgres"} 1`,
		`glreport_normalize_rows_dropped_total{table="transactionaccountingline"} 2`,
		`glreport_reports_total{outcome="ok",report="trial-balance"} 1`,
		`glreport_datasets_active 3`,
		`glreport_filter_options_cache_lookups_total{result="hit"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %s, got: %s", want, body)
		}
	}
	if strings.Contains(body, `table="account"`) {
		t.Fatalf("zero drops must not create a series")
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/datasets/{id}")

	req := httptest.NewRequest(http.MethodGet, "/datasets/abc", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `glreport_http_requests_total{code="418",route="/datasets/{id}"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `glreport_http_request_duration_seconds_bucket{route="/datasets/{id}"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestNilMetricsIsInert(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveLoad("dir", nil, nil)
	metrics.ObserveReport("x", time.Now(), nil)
	metrics.SetDatasets(1)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
