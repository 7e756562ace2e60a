// Package reports aggregates the base relation into trial balance, profit
// and loss and balance sheet reports.
package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
)

// AccountLine is the rounded balance of one account within one subsidiary.
type AccountLine struct {
	SubsidiaryName string          `json:"subsidiary_name"`
	AccountName    string          `json:"account_name"`
	AccountType    string          `json:"account_type"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

var accountLineHeaders = []string{"subsidiary_name", "account_name", "account_type", "total_amount"}

func toAccountLines(totals []query.AccountTotal) []AccountLine {
	lines := make([]AccountLine, len(totals))
	for i, t := range totals {
		lines[i] = AccountLine{
			SubsidiaryName: t.SubsidiaryName,
			AccountName:    t.AccountName,
			AccountType:    t.AccountType,
			TotalAmount:    t.Total,
		}
	}
	return lines
}

// sortBySubsidiaryAccount orders by subsidiary then account name.
func sortBySubsidiaryAccount(lines []AccountLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.SubsidiaryName != b.SubsidiaryName {
			return a.SubsidiaryName < b.SubsidiaryName
		}
		if a.AccountName != b.AccountName {
			return a.AccountName < b.AccountName
		}
		return a.AccountType < b.AccountType
	})
}

// sortBySubsidiaryTypeAccount orders by subsidiary, account type, account name.
func sortBySubsidiaryTypeAccount(lines []AccountLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.SubsidiaryName != b.SubsidiaryName {
			return a.SubsidiaryName < b.SubsidiaryName
		}
		if a.AccountType != b.AccountType {
			return a.AccountType < b.AccountType
		}
		return a.AccountName < b.AccountName
	})
}

func accountRows(lines []AccountLine) [][]string {
	rows := make([][]string, len(lines))
	for i, l := range lines {
		rows[i] = []string{l.SubsidiaryName, l.AccountName, l.AccountType, export.FormatDecimal(l.TotalAmount)}
	}
	return rows
}

func sumLines(lines []AccountLine, keep func(string) bool) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if keep == nil || keep(l.AccountType) {
			total = total.Add(l.TotalAmount)
		}
	}
	return total
}
