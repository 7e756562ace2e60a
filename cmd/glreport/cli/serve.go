package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/odyssey-erp/glreport/internal/app"
	"github.com/odyssey-erp/glreport/internal/ledger"
	ledgerhttp "github.com/odyssey-erp/glreport/internal/ledger/http"
	"github.com/odyssey-erp/glreport/internal/ledger/options"
	"github.com/odyssey-erp/glreport/internal/observability"
	"github.com/odyssey-erp/glreport/internal/platform/cache"
)

// ServeOptions defines the flags of the serve command.
type ServeOptions struct {
	// Source, when set, is loaded once at startup and registered.
	Source SourceOptions
	Addr   string
	IO
}

// Server bundles the API dependencies so tests can drive the handler
// without binding a port.
type Server struct {
	Handler http.Handler
	Ledger  *ledgerhttp.Handler
	Engine  *ledger.Engine
	close   func()
}

// Close releases the cache client.
func (s *Server) Close() {
	if s.close != nil {
		s.close()
	}
}

// NewServer wires engine, filter option cache and router from cfg.
func NewServer(ctx context.Context, cfg *app.Config, logger *slog.Logger, metrics *observability.Metrics) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine := ledger.NewEngine(logger, ledger.WithMetrics(metrics))

	var optCache options.Cache = options.NewMemoryCache(cfg.FilterCacheTTL)
	closeFn := func() {}
	if cfg.RedisAddr != "" {
		client, err := cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		optCache = options.NewRedisCache(client, cfg.FilterCacheTTL)
		closeFn = func() {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}
	provider := options.NewProvider(optCache, logger, options.WithLookupObserver(metrics.ObserveCacheLookup))
	handler := ledgerhttp.NewHandler(logger, engine, provider, metrics, ledgerhttp.Config{
		MaxDatasets:         cfg.MaxDatasets,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		ExportRatePerMinute: cfg.ExportRatePerMinute,
	})
	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		LedgerHandler: handler,
		Metrics:       metrics,
	})
	return &Server{Handler: router, Ledger: handler, Engine: engine, close: closeFn}, nil
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, cfg *app.Config, logger *slog.Logger, opts ServeOptions) int {
	streams := opts.IO.withDefaults()
	metrics := observability.NewMetrics()
	srv, err := NewServer(ctx, cfg, logger, metrics)
	if err != nil {
		_, _ = fmt.Fprintf(streams.Stderr, "serve: %v\n", err)
		return ExitFailure
	}
	defer srv.Close()

	if !opts.Source.Empty() {
		c, _ := NewLedgerCLI(srv.Engine, logger)
		ds, code := c.load(ctx, "serve", opts.Source, streams)
		if code != ExitOK {
			return code
		}
		srv.Ledger.Register(ds)
		logger.Info("dataset preloaded", slog.String("dataset", ds.ID), slog.String("source", ds.Source))
	}

	addr := cfg.AppAddr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			return ExitFailure
		}
		return ExitOK
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
		return ExitFailure
	}
	logger.Info("http server stopped")
	return ExitOK
}
