package reports

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
)

// TrialBalanceTotals summarises a trial balance. Debits sum the positive
// account balances, credits the absolute value of the negative ones.
type TrialBalanceTotals struct {
	Accounts     int             `json:"accounts"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
}

// TrialBalance lists the net balance of every account, unrestricted by type.
type TrialBalance struct {
	Lines  []AccountLine      `json:"lines"`
	Totals TrialBalanceTotals `json:"totals"`
}

// BuildTrialBalance aggregates base rows per subsidiary and account.
func BuildTrialBalance(rows []query.BaseRow) TrialBalance {
	lines := toAccountLines(query.SumByAccount(rows, nil))
	sortBySubsidiaryAccount(lines)

	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range lines {
		switch l.TotalAmount.Sign() {
		case 1:
			debits = debits.Add(l.TotalAmount)
		case -1:
			credits = credits.Add(l.TotalAmount)
		}
	}
	return TrialBalance{
		Lines: lines,
		Totals: TrialBalanceTotals{
			Accounts:     len(lines),
			TotalDebits:  query.Round(debits),
			TotalCredits: query.Round(credits.Abs()),
		},
	}
}

func (tb TrialBalance) Name() string { return "Trial Balance" }

// Empty reports whether no account matched the filter.
func (tb TrialBalance) Empty() bool { return len(tb.Lines) == 0 }

// Table flattens the trial balance for export.
func (tb TrialBalance) Table() export.Table {
	return export.Table{
		Title:   tb.Name(),
		Headers: accountLineHeaders,
		Rows:    accountRows(tb.Lines),
		Totals: []export.Total{
			{Name: "accounts", Value: strconv.Itoa(tb.Totals.Accounts)},
			{Name: "total_debits", Value: export.FormatDecimal(tb.Totals.TotalDebits)},
			{Name: "total_credits", Value: export.FormatDecimal(tb.Totals.TotalCredits)},
		},
	}
}
