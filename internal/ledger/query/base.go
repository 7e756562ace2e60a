package query

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/glreport/internal/ledger/store"
)

// Display placeholders for unresolved references.
const (
	UnknownSubsidiary  = "Unknown Subsidiary"
	UnknownAccountType = "Unknown"
)

// UnknownAccount labels an accounting line whose account did not resolve.
func UnknownAccount(raw string) string {
	return fmt.Sprintf("Unknown Account [%s]", raw)
}

// BaseRow is one accounting line joined to its dimensions.
type BaseRow struct {
	SubsidiaryName  string          `json:"subsidiary_name"`
	SubsidiaryID    *int64          `json:"subsidiary_id"`
	AccountName     string          `json:"account_name"`
	AccountID       *int64          `json:"account_id"`
	AccountType     string          `json:"account_type"`
	PeriodName      *string         `json:"period_name"`
	FiscalYear      *int64          `json:"fiscal_year"`
	FiscalQuarter   *int64          `json:"fiscal_quarter"`
	FiscalMonth     *int64          `json:"fiscal_month"`
	TransactionDate *time.Time      `json:"transaction_date"`
	DepartmentID    *int64          `json:"department_id"`
	Amount          decimal.Decimal `json:"amount"`
}

// Base joins accounting lines to accounts (left), transaction lines (inner),
// subsidiaries (left), transaction headers (inner) and periods (left), then
// applies f. Duplicate keys fan out the way a relational join does.
func Base(st *store.Store, f Filter) []BaseRow {
	pred := f.Predicate()
	out := make([]BaseRow, 0, len(st.AccountingLines()))
	for _, al := range st.AccountingLines() {
		lines := st.LinesFor(al.Transaction)
		if len(lines) == 0 {
			continue
		}
		headers := st.Headers(al.Transaction)
		if len(headers) == 0 {
			continue
		}
		accounts := optional(st.AccountsByID(al.Account))
		for _, acct := range accounts {
			for _, line := range lines {
				subs := optional(st.SubsidiariesByID(line.Subsidiary))
				for _, sub := range subs {
					for _, h := range headers {
						for _, p := range optional(st.PeriodsFor(h)) {
							c := Candidate{Header: h, Line: line, Account: acct, Period: p}
							if !pred.Match(c) {
								continue
							}
							out = append(out, newBaseRow(al, c, sub))
						}
					}
				}
			}
		}
	}
	return out
}

// optional turns join matches into pointers, yielding a single nil when there
// are none so a left join keeps the row.
func optional[T any](matches []T) []*T {
	if len(matches) == 0 {
		return []*T{nil}
	}
	out := make([]*T, len(matches))
	for i := range matches {
		out[i] = &matches[i]
	}
	return out
}

func accountLabel(al store.AccountingLine) string {
	if al.Account != nil {
		return strconv.FormatInt(*al.Account, 10)
	}
	return al.AccountRaw
}

func newBaseRow(al store.AccountingLine, c Candidate, sub *store.Subsidiary) BaseRow {
	row := BaseRow{
		SubsidiaryName:  UnknownSubsidiary,
		AccountName:     UnknownAccount(accountLabel(al)),
		AccountType:     UnknownAccountType,
		TransactionDate: c.Header.TranDate,
		DepartmentID:    c.Line.Department,
		Amount:          al.Amount,
	}
	if sub != nil {
		id := sub.ID
		row.SubsidiaryID = &id
		if sub.Name != nil {
			row.SubsidiaryName = *sub.Name
		}
	}
	if a := c.Account; a != nil {
		id := a.ID
		row.AccountID = &id
		if a.FullName != nil {
			row.AccountName = *a.FullName
		}
		if a.AcctType != nil {
			row.AccountType = *a.AcctType
		}
	}
	if p := c.Period; p != nil {
		row.PeriodName = p.Name
		row.FiscalYear = p.FiscalYear
		row.FiscalQuarter = p.Quarter
		row.FiscalMonth = p.Month
	}
	return row
}
