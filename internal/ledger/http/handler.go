package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/ledger/normalize"
	"github.com/odyssey-erp/glreport/internal/ledger/options"
	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
	"github.com/odyssey-erp/glreport/internal/observability"
	"github.com/odyssey-erp/glreport/internal/platform/httpx"
)

// Config bounds what the handler accepts.
type Config struct {
	MaxDatasets         int
	MaxUploadBytes      int64
	ExportRatePerMinute int
}

// Handler wires dataset, filter, validation and report endpoints.
type Handler struct {
	logger      *slog.Logger
	engine      *ledger.Engine
	registry    *Registry
	options     *options.Provider
	metrics     *observability.Metrics
	maxUpload   int64
	exportLimit func(http.Handler) http.Handler
}

// NewHandler constructs the handler. Datasets evicted from its registry have
// their cached filter options invalidated.
func NewHandler(logger *slog.Logger, engine *ledger.Engine, provider *options.Provider, metrics *observability.Metrics, cfg Config) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = options.NewProvider(nil, logger)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 256 << 20
	}
	if cfg.ExportRatePerMinute <= 0 {
		cfg.ExportRatePerMinute = 30
	}
	h := &Handler{
		logger:    logger,
		engine:    engine,
		options:   provider,
		metrics:   metrics,
		maxUpload: cfg.MaxUploadBytes,
		exportLimit: httprate.Limit(cfg.ExportRatePerMinute, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint)),
	}
	h.registry = NewRegistry(cfg.MaxDatasets, h.evicted)
	return h
}

func (h *Handler) evicted(ds *ledger.Dataset) {
	if err := h.options.Invalidate(context.Background(), ds.Store.Generation()); err != nil {
		h.logger.Warn("invalidate filter options", slog.String("dataset", ds.ID), slog.Any("error", err))
	}
	h.logger.Info("dataset released", slog.String("dataset", ds.ID))
}

// Register adds an already loaded dataset, for example one preloaded at startup.
func (h *Handler) Register(ds *ledger.Dataset) {
	h.metrics.SetDatasets(h.registry.Put(ds))
}

// Registry exposes the dataset registry.
func (h *Handler) Registry() *Registry { return h.registry }

// MountRoutes registers the dataset routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/datasets", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleUpload)
		r.Route("/{datasetID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Delete("/", h.handleDelete)
			r.Get("/filters", h.handleFilters)
			r.Get("/validation", h.handleValidation)
			r.With(h.limitExports).Get("/reports/{kind}", h.handleReport)
		})
	})
}

// limitExports rate limits CSV downloads only.
func (h *Handler) limitExports(next http.Handler) http.Handler {
	limited := h.exportLimit(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantsCSV(r) {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type datasetView struct {
	*ledger.Dataset
	Warnings []string `json:"warnings"`
}

func viewOf(ds *ledger.Dataset) datasetView {
	warnings := ds.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	return datasetView{Dataset: ds, Warnings: warnings}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	list := h.registry.List()
	out := make([]datasetView, len(list))
	for i, ds := range list {
		out[i] = viewOf(ds)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"datasets": out})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	set, overrides, err := h.parseUpload(w, r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	ds, err := h.engine.LoadSet("upload", set, overrides)
	if err != nil {
		h.respondError(w, r, classifyLoadError(err))
		return
	}
	h.Register(ds)
	w.Header().Set("Location", "/datasets/"+ds.ID)
	httpx.JSON(w, http.StatusCreated, viewOf(ds))
}

func (h *Handler) dataset(r *http.Request) (*ledger.Dataset, error) {
	id := chi.URLParam(r, "datasetID")
	ds, ok := h.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("dataset %q: %w", id, httpx.ErrNotFound)
	}
	return ds, nil
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dataset(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(ds))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "datasetID")
	if !h.registry.Delete(id) {
		h.respondError(w, r, fmt.Errorf("dataset %q: %w", id, httpx.ErrNotFound))
		return
	}
	h.metrics.SetDatasets(h.registry.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleFilters(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dataset(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	opts, err := h.options.Get(r.Context(), ds.Store)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, opts)
}

func (h *Handler) handleValidation(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dataset(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	warnings := ds.Validation.Warnings()
	if warnings == nil {
		warnings = []string{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"dataset":                ds.ID,
		"result":                 ds.Validation,
		"has_referential_gaps":   ds.Validation.HasReferentialGaps(),
		"warnings":               warnings,
		"synthetic_period":       ds.Stats.SyntheticPeriod,
		"rows_dropped_on_import": ds.Stats.Dropped(),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrTooLarge) {
		h.logger.Error("ledger request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

// classifyLoadError marks input problems as validation failures.
func classifyLoadError(err error) error {
	var cfgErr *normalize.ConfigError
	switch {
	case errors.As(err, &cfgErr),
		errors.Is(err, normalize.ErrMissingTable),
		errors.Is(err, tabular.ErrNoHeader),
		errors.Is(err, tabular.ErrUnsupportedEncoding),
		errors.Is(err, tabular.ErrUnsupportedFormat):
		return fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	return err
}
