// Package ledger wires source loading, normalization and report generation
// into one engine. Every report call takes the dataset it reads explicitly.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/normalize"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
	"github.com/odyssey-erp/glreport/internal/ledger/reports"
	"github.com/odyssey-erp/glreport/internal/ledger/schema"
	"github.com/odyssey-erp/glreport/internal/ledger/source"
	"github.com/odyssey-erp/glreport/internal/ledger/store"
	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
	"github.com/odyssey-erp/glreport/internal/ledger/validation"
	"github.com/odyssey-erp/glreport/internal/observability"
)

// NoDataMessage is shown in place of a report whose filters match no rows.
const NoDataMessage = "No data for the selected filters."

var (
	// ErrUnknownReport is returned for report kinds the engine cannot build.
	ErrUnknownReport = errors.New("ledger: unknown report")
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("ledger: invalid request")
)

// ReportKind names a report.
type ReportKind string

const (
	KindTrialBalance          ReportKind = "trial-balance"
	KindProfitAndLoss         ReportKind = "profit-loss"
	KindPeriodicProfitAndLoss ReportKind = "profit-loss-periodic"
	KindBalanceSheet          ReportKind = "balance-sheet"
)

// Kinds lists every report kind.
var Kinds = []ReportKind{KindTrialBalance, KindProfitAndLoss, KindPeriodicProfitAndLoss, KindBalanceSheet}

var kindAliases = map[string]ReportKind{
	"tb":        KindTrialBalance,
	"pl":        KindProfitAndLoss,
	"pnl":       KindProfitAndLoss,
	"pl-period": KindPeriodicProfitAndLoss,
	"bs":        KindBalanceSheet,
}

// ParseKind accepts a report kind or its short alias.
func ParseKind(s string) (ReportKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownReport, s)
}

// Request selects one report over a dataset.
type Request struct {
	Kind        ReportKind          `json:"kind" validate:"required,oneof=trial-balance profit-loss profit-loss-periodic balance-sheet"`
	Filter      query.Filter        `json:"filter"`
	Granularity reports.Granularity `json:"granularity,omitempty" validate:"omitempty,oneof=month quarter year"`
}

// Report is what every generated report offers for rendering.
type Report interface {
	Name() string
	Empty() bool
	Table() export.Table
}

var (
	_ Report = reports.TrialBalance{}
	_ Report = reports.ProfitAndLoss{}
	_ Report = reports.PeriodicProfitAndLoss{}
	_ Report = reports.BalanceSheet{}
)

// Dataset is one loaded, normalized and validated export.
type Dataset struct {
	ID         string            `json:"id"`
	Source     string            `json:"source"`
	LoadedAt   time.Time         `json:"loaded_at"`
	Counts     store.Counts      `json:"counts"`
	Stats      normalize.Stats   `json:"stats"`
	Validation validation.Result `json:"validation"`
	Store      *store.Store      `json:"-"`
}

// Warnings lists the informational notes shown next to every report of the dataset.
func (d *Dataset) Warnings() []string {
	warnings := d.Validation.Warnings()
	if d.Stats.SyntheticPeriod {
		warnings = append(warnings, "accounting period table missing; all transactions use "+store.NoPeriodName)
	}
	if n := d.Stats.Dropped(); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows dropped during normalization", n))
	}
	return warnings
}

// Engine loads datasets and generates reports from them.
type Engine struct {
	logger   *slog.Logger
	metrics  *observability.Metrics
	specs    schema.Specs
	validate *validator.Validate
}

// Option customises an Engine.
type Option func(*Engine)

// WithMetrics records loads and reports on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithSpecs replaces the default schema aliases.
func WithSpecs(specs schema.Specs) Option {
	return func(e *Engine) { e.specs = specs }
}

// NewEngine constructs an engine. A nil logger uses slog.Default.
func NewEngine(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger, specs: schema.Default(), validate: validator.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads every table from l and builds a dataset. sourceName labels logs
// and metrics.
func (e *Engine) Load(ctx context.Context, sourceName string, l source.Loader) (*Dataset, error) {
	if l == nil {
		return nil, source.ErrNoSource
	}
	set, err := l.Load(ctx)
	if err != nil {
		e.metrics.ObserveLoad(sourceName, err, nil)
		e.logger.Error("dataset load failed", slog.String("source", sourceName), slog.Any("error", err))
		return nil, err
	}
	return e.LoadSet(sourceName, set, source.Overrides(l))
}

// LoadSet normalizes an already read table set.
func (e *Engine) LoadSet(sourceName string, set tabular.Set, overrides map[string]map[string][]string) (*Dataset, error) {
	specs := e.specs
	if len(overrides) > 0 {
		specs = specs.WithOverrides(overrides)
	}
	tables, stats, err := normalize.New(specs).Normalize(set)
	if err != nil {
		e.metrics.ObserveLoad(sourceName, err, nil)
		e.logger.Error("dataset normalization failed", slog.String("source", sourceName), slog.Any("error", err))
		return nil, err
	}
	st := store.New(tables)
	ds := &Dataset{
		ID:         uuid.NewString(),
		Source:     sourceName,
		LoadedAt:   st.LoadedAt(),
		Counts:     st.Counts(),
		Stats:      stats,
		Validation: validation.Run(st),
		Store:      st,
	}

	dropped := make(map[string]int, len(stats.Tables))
	attrs := []any{
		slog.String("dataset", ds.ID),
		slog.String("source", sourceName),
		slog.Bool("synthetic_period", stats.SyntheticPeriod),
	}
	for _, ts := range stats.Tables {
		dropped[ts.Table] = ts.Dropped
		attrs = append(attrs, slog.Group(ts.Table, slog.Int("rows", ts.Rows), slog.Int("kept", ts.Kept), slog.Int("dropped", ts.Dropped)))
	}
	e.metrics.ObserveLoad(sourceName, nil, dropped)
	e.logger.Info("dataset loaded", attrs...)
	if ds.Validation.HasReferentialGaps() {
		e.logger.Warn("dataset has referential gaps",
			slog.String("dataset", ds.ID),
			slog.Int("null_accounts", ds.Validation.NullAccounts),
			slog.Int("missing_subsidiaries", ds.Validation.MissingSubsidiaries),
		)
	}
	return ds, nil
}

// Validate checks a request before generation.
func (e *Engine) Validate(req Request) error {
	if err := e.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Generate builds the requested report over st.
func (e *Engine) Generate(st *store.Store, req Request) (rep Report, err error) {
	started := time.Now()
	defer func() { e.metrics.ObserveReport(string(req.Kind), started, err) }()

	if err := e.Validate(req); err != nil {
		return nil, err
	}
	f := req.Filter.Normalize()
	switch req.Kind {
	case KindTrialBalance:
		rep = reports.TrialBalanceFor(st, f)
	case KindProfitAndLoss:
		rep = reports.ProfitAndLossFor(st, f)
	case KindPeriodicProfitAndLoss:
		g := req.Granularity
		if g == "" {
			g = reports.GranularityMonth
		}
		rep = reports.PeriodicProfitAndLossFor(st, f, g)
	case KindBalanceSheet:
		rep = reports.BalanceSheetFor(st, f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, req.Kind)
	}
	e.logger.Debug("report generated",
		slog.String("report", string(req.Kind)),
		slog.String("generation", st.Generation()),
		slog.Int("active_filters", f.ActiveCount()),
		slog.Duration("elapsed", time.Since(started)),
	)
	return rep, nil
}
