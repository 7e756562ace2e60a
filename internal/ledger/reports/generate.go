package reports

import (
	"github.com/odyssey-erp/glreport/internal/ledger/query"
	"github.com/odyssey-erp/glreport/internal/ledger/store"
)

// TrialBalanceFor builds the trial balance of st under f.
func TrialBalanceFor(st *store.Store, f query.Filter) TrialBalance {
	return BuildTrialBalance(query.Base(st, f))
}

// ProfitAndLossFor builds the P&L of st under f.
func ProfitAndLossFor(st *store.Store, f query.Filter) ProfitAndLoss {
	return BuildProfitAndLoss(query.Base(st, f))
}

// PeriodicProfitAndLossFor builds the periodised P&L of st under f.
func PeriodicProfitAndLossFor(st *store.Store, f query.Filter, g Granularity) PeriodicProfitAndLoss {
	return BuildPeriodicProfitAndLoss(query.Base(st, f), g)
}

// BalanceSheetFor builds the balance sheet of st under f.
func BalanceSheetFor(st *store.Store, f query.Filter) BalanceSheet {
	return BuildBalanceSheet(query.Base(st, f))
}
