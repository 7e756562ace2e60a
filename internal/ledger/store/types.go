package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a chart-of-accounts entry.
type Account struct {
	ID       int64   `json:"id"`
	FullName *string `json:"fullname"`
	AcctType *string `json:"accttype"`
}

// Subsidiary is a reporting entity.
type Subsidiary struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
}

// TransactionHeader is a journal or transaction record.
type TransactionHeader struct {
	ID            int64      `json:"id"`
	TranDate      *time.Time `json:"trandate"`
	PostingPeriod *int64     `json:"postingperiod"`
	NonPosting    bool       `json:"nonposting"`
}

// TransactionLine carries the subsidiary and department of a transaction.
type TransactionLine struct {
	Transaction int64  `json:"transaction"`
	Subsidiary  *int64 `json:"subsidiary"`
	Department  *int64 `json:"department"`
}

// AccountingLine is one amount posted to one account. AccountRaw keeps the
// cell text so unresolved accounts can be labelled.
type AccountingLine struct {
	Transaction int64           `json:"transaction"`
	Account     *int64          `json:"account"`
	AccountRaw  string          `json:"account_raw"`
	Amount      decimal.Decimal `json:"amount"`
}

// Period is a fiscal accounting period.
type Period struct {
	ID         int64      `json:"id"`
	Name       *string    `json:"periodname"`
	FiscalYear *int64     `json:"fiscalyear"`
	Quarter    *int64     `json:"quarter"`
	Month      *int64     `json:"month"`
	StartDate  *time.Time `json:"startdate"`
	EndDate    *time.Time `json:"enddate"`
}

// Tables is the canonical form of one dataset.
type Tables struct {
	Accounts         []Account
	Subsidiaries     []Subsidiary
	Transactions     []TransactionHeader
	TransactionLines []TransactionLine
	AccountingLines  []AccountingLine
	Periods          []Period
	// SyntheticPeriod is set when no period table was supplied. Periods then
	// holds the single placeholder period every header resolves to.
	SyntheticPeriod bool
}

// NoPeriodName labels the placeholder period.
const NoPeriodName = "No Period Data"

// PlaceholderPeriod is substituted when the export has no period table.
func PlaceholderPeriod() Period {
	name := NoPeriodName
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	return Period{
		ID:         1,
		Name:       &name,
		FiscalYear: int64Ptr(1),
		Quarter:    int64Ptr(1),
		Month:      int64Ptr(1),
		StartDate:  &start,
		EndDate:    &end,
	}
}

func int64Ptr(v int64) *int64 { return &v }
