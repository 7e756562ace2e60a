package reports

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
)

// Granularity selects the time bucket of a periodised P&L.
type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// ErrInvalidGranularity is returned for unknown granularities.
var ErrInvalidGranularity = errors.New("reports: invalid granularity")

// ParseGranularity accepts month, quarter or year. Empty selects month.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GranularityMonth, nil
	case GranularityMonth, GranularityQuarter, GranularityYear:
		return g, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
}

// PeriodLine is one (bucket, account type) total. SubPeriod is the fiscal
// month or quarter and, like PeriodName, is nil at year granularity.
type PeriodLine struct {
	FiscalYear  *int64          `json:"fiscal_year"`
	SubPeriod   *int64          `json:"sub_period,omitempty"`
	PeriodName  *string         `json:"period_name,omitempty"`
	AccountType string          `json:"account_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// PeriodicProfitAndLoss is a P&L bucketed by fiscal period.
type PeriodicProfitAndLoss struct {
	Granularity Granularity  `json:"granularity"`
	Lines       []PeriodLine `json:"lines"`
}

type periodKey struct {
	year, sub       int64
	hasYear, hasSub bool
	name            string
	hasName         bool
	accountType     string
}

// BuildPeriodicProfitAndLoss groups revenue and expense rows by fiscal
// bucket and account type, newest bucket first.
func BuildPeriodicProfitAndLoss(rows []query.BaseRow, g Granularity) PeriodicProfitAndLoss {
	keep := query.TypeIn(ProfitAndLossTypes()...)
	index := make(map[periodKey]int)
	var lines []PeriodLine
	for _, r := range rows {
		if !keep(r.AccountType) {
			continue
		}
		line := PeriodLine{FiscalYear: r.FiscalYear, AccountType: r.AccountType}
		switch g {
		case GranularityQuarter:
			line.SubPeriod, line.PeriodName = r.FiscalQuarter, r.PeriodName
		case GranularityYear:
			// year buckets carry no sub-period
		default:
			line.SubPeriod, line.PeriodName = r.FiscalMonth, r.PeriodName
		}
		k := keyOf(line)
		i, ok := index[k]
		if !ok {
			i = len(lines)
			index[k] = i
			lines = append(lines, line)
		}
		lines[i].TotalAmount = lines[i].TotalAmount.Add(r.Amount)
	}
	for i := range lines {
		lines[i].TotalAmount = query.Round(lines[i].TotalAmount)
	}
	sort.SliceStable(lines, func(i, j int) bool { return periodLess(lines[i], lines[j]) })
	if g == "" {
		g = GranularityMonth
	}
	return PeriodicProfitAndLoss{Granularity: g, Lines: lines}
}

func keyOf(l PeriodLine) periodKey {
	k := periodKey{accountType: l.AccountType}
	if l.FiscalYear != nil {
		k.year, k.hasYear = *l.FiscalYear, true
	}
	if l.SubPeriod != nil {
		k.sub, k.hasSub = *l.SubPeriod, true
	}
	if l.PeriodName != nil {
		k.name, k.hasName = *l.PeriodName, true
	}
	return k
}

// descNullsLast orders non-null values descending, nulls after them.
// It returns -1, 0 or 1 like a comparator.
func descNullsLast(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a > *b:
		return -1
	case *a < *b:
		return 1
	}
	return 0
}

func periodLess(a, b PeriodLine) bool {
	if c := descNullsLast(a.FiscalYear, b.FiscalYear); c != 0 {
		return c < 0
	}
	if c := descNullsLast(a.SubPeriod, b.SubPeriod); c != 0 {
		return c < 0
	}
	if a.AccountType != b.AccountType {
		return a.AccountType < b.AccountType
	}
	return export.FormatString(a.PeriodName) < export.FormatString(b.PeriodName)
}

func (p PeriodicProfitAndLoss) Name() string {
	return "Profit and Loss by " + string(p.Granularity)
}

func (p PeriodicProfitAndLoss) Empty() bool { return len(p.Lines) == 0 }

// Years returns the distinct fiscal years present, newest first.
func (p PeriodicProfitAndLoss) Years() []*int64 {
	var out []*int64
	for _, l := range p.Lines {
		if len(out) == 0 || descNullsLast(out[len(out)-1], l.FiscalYear) != 0 {
			out = append(out, l.FiscalYear)
		}
	}
	return out
}

func (p PeriodicProfitAndLoss) Table() export.Table {
	var headers []string
	switch p.Granularity {
	case GranularityQuarter:
		headers = []string{"fiscal_year", "fiscal_quarter", "period_name", "account_type", "total_amount"}
	case GranularityYear:
		headers = []string{"fiscal_year", "account_type", "total_amount"}
	default:
		headers = []string{"fiscal_year", "fiscal_month", "period_name", "account_type", "total_amount"}
	}
	rows := make([][]string, len(p.Lines))
	for i, l := range p.Lines {
		if p.Granularity == GranularityYear {
			rows[i] = []string{export.FormatInt(l.FiscalYear), l.AccountType, export.FormatDecimal(l.TotalAmount)}
			continue
		}
		rows[i] = []string{
			export.FormatInt(l.FiscalYear),
			export.FormatInt(l.SubPeriod),
			export.FormatString(l.PeriodName),
			l.AccountType,
			export.FormatDecimal(l.TotalAmount),
		}
	}
	return export.Table{Title: p.Name(), Headers: headers, Rows: rows}
}
