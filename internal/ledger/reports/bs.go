package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
)

// BalanceStatus classifies the balance check.
type BalanceStatus string

const (
	StatusBalanced      BalanceStatus = "balanced"
	StatusMinorVariance BalanceStatus = "minor_variance"
	StatusOutOfBalance  BalanceStatus = "out_of_balance"
)

var (
	balancedTolerance = decimal.RequireFromString("0.01")
	minorTolerance    = decimal.NewFromInt(100)
)

// ClassifyBalance grades assets - (liabilities + equity).
func ClassifyBalance(check decimal.Decimal) BalanceStatus {
	abs := check.Abs()
	switch {
	case abs.LessThan(balancedTolerance):
		return StatusBalanced
	case abs.LessThan(minorTolerance):
		return StatusMinorVariance
	default:
		return StatusOutOfBalance
	}
}

// BalanceSheetSection contains the accounts and total of one category.
type BalanceSheetSection struct {
	Label string          `json:"label"`
	Lines []AccountLine   `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// BalanceSheetTotals carries the accounting equation check.
type BalanceSheetTotals struct {
	Assets       decimal.Decimal `json:"assets"`
	Liabilities  decimal.Decimal `json:"liabilities"`
	Equity       decimal.Decimal `json:"equity"`
	BalanceCheck decimal.Decimal `json:"balance_check"`
	Status       BalanceStatus   `json:"status"`
}

// BalanceSheet is the structured balance sheet report.
type BalanceSheet struct {
	Lines       []AccountLine       `json:"lines"`
	Assets      BalanceSheetSection `json:"assets"`
	Liabilities BalanceSheetSection `json:"liabilities"`
	Equity      BalanceSheetSection `json:"equity"`
	Totals      BalanceSheetTotals  `json:"totals"`
}

// BuildBalanceSheet aggregates asset, liability and equity accounts.
func BuildBalanceSheet(rows []query.BaseRow) BalanceSheet {
	lines := toAccountLines(query.SumByAccount(rows, query.TypeIn(BalanceSheetTypes()...)))
	sortBySubsidiaryTypeAccount(lines)

	bs := BalanceSheet{
		Lines:       lines,
		Assets:      BalanceSheetSection{Label: "Assets"},
		Liabilities: BalanceSheetSection{Label: "Liabilities"},
		Equity:      BalanceSheetSection{Label: "Equity"},
	}
	for _, l := range lines {
		var section *BalanceSheetSection
		switch Category(l.AccountType) {
		case CategoryAsset:
			section = &bs.Assets
		case CategoryLiability:
			section = &bs.Liabilities
		case CategoryEquity:
			section = &bs.Equity
		default:
			continue
		}
		section.Lines = append(section.Lines, l)
		section.Total = section.Total.Add(l.TotalAmount)
	}
	bs.Assets.Total = query.Round(bs.Assets.Total)
	bs.Liabilities.Total = query.Round(bs.Liabilities.Total)
	bs.Equity.Total = query.Round(bs.Equity.Total)

	check := query.Round(bs.Assets.Total.Sub(bs.Liabilities.Total.Add(bs.Equity.Total)))
	bs.Totals = BalanceSheetTotals{
		Assets:       bs.Assets.Total,
		Liabilities:  bs.Liabilities.Total,
		Equity:       bs.Equity.Total,
		BalanceCheck: check,
		Status:       ClassifyBalance(check),
	}
	return bs
}

func (bs BalanceSheet) Name() string { return "Balance Sheet" }

func (bs BalanceSheet) Empty() bool { return len(bs.Lines) == 0 }

func (bs BalanceSheet) Table() export.Table {
	return export.Table{
		Title:   bs.Name(),
		Headers: accountLineHeaders,
		Rows:    accountRows(bs.Lines),
		Totals: []export.Total{
			{Name: "assets", Value: export.FormatDecimal(bs.Totals.Assets)},
			{Name: "liabilities", Value: export.FormatDecimal(bs.Totals.Liabilities)},
			{Name: "equity", Value: export.FormatDecimal(bs.Totals.Equity)},
			{Name: "balance_check", Value: export.FormatDecimal(bs.Totals.BalanceCheck)},
			{Name: "status", Value: string(bs.Totals.Status)},
		},
	}
}
