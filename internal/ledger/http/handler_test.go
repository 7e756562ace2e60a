package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/ledger/ledgertest"
	"github.com/odyssey-erp/glreport/internal/ledger/options"
	"github.com/odyssey-erp/glreport/internal/ledger/schema"
	"github.com/odyssey-erp/glreport/internal/observability"
)

type testServer struct {
	handler *Handler
	cache   *options.MemoryCache
	router  chi.Router
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	cache := options.NewMemoryCache(time.Minute)
	engine := ledger.NewEngine(nil)
	h := NewHandler(nil, engine, options.NewProvider(cache, nil), observability.NewMetrics(), cfg)
	r := chi.NewRouter()
	h.MountRoutes(r)
	return &testServer{handler: h, cache: cache, router: r}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func sampleUpload(t *testing.T, skip ...string) (*bytes.Buffer, string) {
	t.Helper()
	omit := map[string]bool{}
	for _, s := range skip {
		omit[s] = true
	}
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for name, content := range ledgertest.SampleCSV {
		if omit[name] {
			continue
		}
		part, err := mw.CreateFormFile(name, name+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (s *testServer) upload(t *testing.T) datasetResponse {
	t.Helper()
	body, ct := sampleUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/datasets/", body)
	req.Header.Set("Content-Type", ct)
	rr := s.do(t, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var out datasetResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

type datasetResponse struct {
	ID       string         `json:"id"`
	Counts   map[string]int `json:"counts"`
	Warnings []string       `json:"warnings"`
}

type reportResponse struct {
	Kind     string              `json:"kind"`
	Name     string              `json:"name"`
	Filters  []string            `json:"filters"`
	Warnings []string            `json:"warnings"`
	Empty    bool                `json:"empty"`
	Message  string              `json:"message"`
	Columns  []string            `json:"columns"`
	Rows     []map[string]string `json:"rows"`
}

func TestUploadAndGetDataset(t *testing.T) {
	s := newTestServer(t, Config{MaxDatasets: 2})
	ds := s.upload(t)
	require.NotEmpty(t, ds.ID)
	require.Equal(t, 10, ds.Counts[schema.TableAccountingLine])
	require.Equal(t, []string{"1 accounting lines have missing account references"}, ds.Warnings)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), ds.ID)
}

func TestUploadRejectsMissingTable(t *testing.T) {
	s := newTestServer(t, Config{})
	body, ct := sampleUpload(t, schema.TableAccount)
	req := httptest.NewRequest(http.MethodPost, "/datasets/", body)
	req.Header.Set("Content-Type", ct)
	rr := s.do(t, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Body.String(), "account")
}

func TestUploadRejectsUnknownField(t *testing.T) {
	s := newTestServer(t, Config{})
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("ledger", "ledger.csv")
	require.NoError(t, err)
	_, _ = part.Write([]byte("id\n1\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/datasets/", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := s.do(t, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "unknown table")
}

func TestUploadTooLarge(t *testing.T) {
	s := newTestServer(t, Config{MaxUploadBytes: 64})
	body, ct := sampleUpload(t)
	req := httptest.NewRequest(http.MethodPost, "/datasets/", body)
	req.Header.Set("Content-Type", ct)
	rr := s.do(t, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestReportJSON(t *testing.T) {
	s := newTestServer(t, Config{})
	ds := s.upload(t)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/reports/tb", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var rep reportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	require.Equal(t, "trial-balance", rep.Kind)
	require.Equal(t, "Trial Balance", rep.Name)
	require.Len(t, rep.Rows, 9)
	require.Equal(t, []string{"subsidiary_name", "account_name", "account_type", "total_amount"}, rep.Columns)
	require.Empty(t, rep.Filters)

	url := "/datasets/" + ds.ID + "/reports/profit-loss?exclude_nonposting=true&subsidiary=1,2&period=Jan+2024"
	rr = s.do(t, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	require.Equal(t, []string{"Posting only", "Subsidiaries: 1,2", "Periods: Jan 2024"}, rep.Filters)
	require.False(t, rep.Empty)
}

func TestReportEmptyResult(t *testing.T) {
	s := newTestServer(t, Config{})
	ds := s.upload(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/reports/bs?subsidiary=42", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var rep reportResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rep))
	require.True(t, rep.Empty)
	require.Equal(t, ledger.NoDataMessage, rep.Message)
	require.Empty(t, rep.Rows)
}

func TestReportCSV(t *testing.T) {
	s := newTestServer(t, Config{})
	ds := s.upload(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/reports/pl-period?format=csv&granularity=year&metadata=1", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "profit-loss-periodic-")
	body := rr.Body.String()
	require.True(t, strings.HasPrefix(body, "# Report: "), body)
	require.Contains(t, body, "\r\n")
	require.Contains(t, body, "fiscal_year,account_type,total_amount\r\n")
}

func TestReportRejectsBadInput(t *testing.T) {
	s := newTestServer(t, Config{})
	ds := s.upload(t)
	base := "/datasets/" + ds.ID + "/reports/"
	cases := map[string]int{
		base + "cash-flow":                        http.StatusNotFound,
		base + "tb?subsidiary=abc":                http.StatusBadRequest,
		base + "tb?exclude_nonposting=maybe":      http.StatusBadRequest,
		base + "pl-period?granularity=week":       http.StatusBadRequest,
		base + "tb?format=xml":                    http.StatusBadRequest,
		"/datasets/missing/reports/trial-balance": http.StatusNotFound,
	}
	for url, status := range cases {
		rr := s.do(t, httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, status, rr.Code, url)
	}
}

func TestCSVExportsAreRateLimited(t *testing.T) {
	s := newTestServer(t, Config{ExportRatePerMinute: 1})
	ds := s.upload(t)
	url := "/datasets/" + ds.ID + "/reports/tb?format=csv"
	require.Equal(t, http.StatusOK, s.do(t, httptest.NewRequest(http.MethodGet, url, nil)).Code)
	require.Equal(t, http.StatusTooManyRequests, s.do(t, httptest.NewRequest(http.MethodGet, url, nil)).Code)
	// JSON stays available.
	require.Equal(t, http.StatusOK, s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/reports/tb", nil)).Code)
}

func TestFiltersAndValidation(t *testing.T) {
	s := newTestServer(t, Config{})
	ds := s.upload(t)

	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/filters", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var opts options.Options
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opts))
	require.Len(t, opts.Subsidiaries, 2)
	require.Equal(t, []int64{10, 20}, opts.Departments)

	rr = s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/validation", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var v struct {
		Result struct {
			NullAccounts      int `json:"null_accounts"`
			TotalTransactions int `json:"total_transactions"`
		} `json:"result"`
		HasGaps bool `json:"has_referential_gaps"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	require.Equal(t, 1, v.Result.NullAccounts)
	require.Equal(t, 4, v.Result.TotalTransactions)
	require.True(t, v.HasGaps)
}

func TestDeleteInvalidatesFilterCache(t *testing.T) {
	s := newTestServer(t, Config{})
	ds := s.upload(t)
	rr := s.do(t, httptest.NewRequest(http.MethodGet, "/datasets/"+ds.ID+"/filters", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	stored, ok := s.handler.Registry().Get(ds.ID)
	require.True(t, ok)
	gen := stored.Store.Generation()
	_, cached, _ := s.cache.Get(context.Background(), gen)
	require.True(t, cached)

	rr = s.do(t, httptest.NewRequest(http.MethodDelete, "/datasets/"+ds.ID+"/", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	_, cached, _ = s.cache.Get(context.Background(), gen)
	require.False(t, cached)

	rr = s.do(t, httptest.NewRequest(http.MethodDelete, "/datasets/"+ds.ID+"/", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
