package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
	"github.com/odyssey-erp/glreport/internal/ledger/reports"
	"github.com/odyssey-erp/glreport/internal/platform/httpx"
)

type reportView struct {
	Dataset  string              `json:"dataset"`
	Kind     ledger.ReportKind   `json:"kind"`
	Name     string              `json:"name"`
	Filters  []string            `json:"filters"`
	Warnings []string            `json:"warnings"`
	Empty    bool                `json:"empty"`
	Message  string              `json:"message,omitempty"`
	Columns  []string            `json:"columns"`
	Rows     []map[string]string `json:"rows"`
	Totals   []export.Total      `json:"totals"`
	Report   ledger.Report       `json:"report"`
}

func wantsCSV(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("format"), "csv")
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dataset(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	kind, err := ledger.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %w", httpx.ErrNotFound, err))
		return
	}
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format != "" && format != "json" && format != "csv" {
		h.respondError(w, r, fmt.Errorf("format %q: %w", format, httpx.ErrValidation))
		return
	}
	filter, err := ParseFilter(q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	g, err := reports.ParseGranularity(q.Get("granularity"))
	if err != nil {
		h.respondError(w, r, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
		return
	}

	rep, err := h.engine.Generate(ds.Store, ledger.Request{Kind: kind, Filter: filter, Granularity: g})
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidRequest) {
			err = fmt.Errorf("%w: %w", httpx.ErrValidation, err)
		}
		h.respondError(w, r, err)
		return
	}
	table := rep.Table()
	filters := filter.Describe()
	warnings := ds.Warnings()

	if format == "csv" {
		metadata, _ := strconv.ParseBool(q.Get("metadata"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.csv"`, kind, shortID(ds.ID)))
		if err := export.WriteCSV(w, table, export.Options{Metadata: metadata, Filters: filters, Warnings: warnings}); err != nil {
			h.logger.Error("stream csv", slog.String("dataset", ds.ID), slog.String("report", string(kind)), slog.Any("error", err))
		}
		return
	}

	view := reportView{
		Dataset:  ds.ID,
		Kind:     kind,
		Name:     rep.Name(),
		Filters:  nonNil(filters),
		Warnings: nonNil(warnings),
		Empty:    rep.Empty(),
		Columns:  table.Headers,
		Rows:     table.Records(),
		Totals:   table.Totals,
		Report:   rep,
	}
	if rep.Empty() {
		view.Message = ledger.NoDataMessage
	}
	httpx.JSON(w, http.StatusOK, view)
}

// ParseFilter reads filter query parameters. Integer sets accept repeated
// parameters and comma separated lists; text sets only repeated parameters.
func ParseFilter(q url.Values) (query.Filter, error) {
	var f query.Filter
	if raw := q.Get("exclude_nonposting"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("exclude_nonposting %q: %w", raw, httpx.ErrValidation)
		}
		f.ExcludeNonPosting = v
	}
	var err error
	if f.Subsidiaries, err = parseInts(q, "subsidiary"); err != nil {
		return f, err
	}
	if f.Departments, err = parseInts(q, "department"); err != nil {
		return f, err
	}
	f.Periods = parseStrings(q, "period")
	f.AccountTypes = parseStrings(q, "account_type")
	return f.Normalize(), nil
}

func parseInts(q url.Values, key string) ([]int64, error) {
	var out []int64
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			v, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s %q: %w", key, part, httpx.ErrValidation)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func parseStrings(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		if v := strings.TrimSpace(raw); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
