package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
)

var hundred = decimal.NewFromInt(100)

// ProfitAndLossTotals summarises a P&L. Revenue and Expenses are absolute
// values; NetIncome is the signed sum, so a profit is negative under the
// credit-negative convention.
type ProfitAndLossTotals struct {
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetIncome decimal.Decimal `json:"net_income"`
	MarginPct decimal.Decimal `json:"margin_pct"`
}

// ProfitAndLoss is the account-level income statement.
type ProfitAndLoss struct {
	Lines  []AccountLine       `json:"lines"`
	Totals ProfitAndLossTotals `json:"totals"`
}

// BuildProfitAndLoss aggregates revenue and expense accounts. Amounts keep
// their exported sign.
func BuildProfitAndLoss(rows []query.BaseRow) ProfitAndLoss {
	lines := toAccountLines(query.SumByAccount(rows, query.TypeIn(ProfitAndLossTypes()...)))
	sortBySubsidiaryTypeAccount(lines)
	return ProfitAndLoss{Lines: lines, Totals: profitAndLossTotals(lines)}
}

func profitAndLossTotals(lines []AccountLine) ProfitAndLossTotals {
	revenue := sumLines(lines, query.TypeIn(RevenueTypes...))
	expenses := sumLines(lines, query.TypeIn(ExpenseTypes...))
	net := revenue.Add(expenses)

	totals := ProfitAndLossTotals{
		Revenue:   query.Round(revenue.Abs()),
		Expenses:  query.Round(expenses.Abs()),
		NetIncome: query.Round(net),
		MarginPct: decimal.Zero.Round(2),
	}
	if !revenue.IsZero() {
		totals.MarginPct = query.Round(net.Div(revenue.Abs()).Mul(hundred))
	}
	return totals
}

func (pl ProfitAndLoss) Name() string { return "Profit and Loss" }

func (pl ProfitAndLoss) Empty() bool { return len(pl.Lines) == 0 }

func (pl ProfitAndLoss) Table() export.Table {
	return export.Table{
		Title:   pl.Name(),
		Headers: accountLineHeaders,
		Rows:    accountRows(pl.Lines),
		Totals: []export.Total{
			{Name: "revenue", Value: export.FormatDecimal(pl.Totals.Revenue)},
			{Name: "expenses", Value: export.FormatDecimal(pl.Totals.Expenses)},
			{Name: "net_income", Value: export.FormatDecimal(pl.Totals.NetIncome)},
			{Name: "margin_pct", Value: export.FormatDecimal(pl.Totals.MarginPct)},
		},
	}
}
