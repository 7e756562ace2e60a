// Package ledgertest provides canonical ledger fixtures for tests.
package ledgertest

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/glreport/internal/ledger/store"
)

// Builder accumulates canonical rows. Zero ids passed for nullable
// references are stored as null.
type Builder struct {
	tables store.Tables
}

// New returns an empty builder.
func New() *Builder { return &Builder{} }

func Int(v int64) *int64 { return &v }

func Str(s string) *string { return &s }

func optInt(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func (b *Builder) Account(id int64, name, acctType string) *Builder {
	a := store.Account{ID: id}
	if name != "" {
		a.FullName = Str(name)
	}
	if acctType != "" {
		a.AcctType = Str(acctType)
	}
	b.tables.Accounts = append(b.tables.Accounts, a)
	return b
}

func (b *Builder) Subsidiary(id int64, name string) *Builder {
	s := store.Subsidiary{ID: id}
	if name != "" {
		s.Name = Str(name)
	}
	b.tables.Subsidiaries = append(b.tables.Subsidiaries, s)
	return b
}

func (b *Builder) Period(id int64, name string, year, quarter, month int64) *Builder {
	b.tables.Periods = append(b.tables.Periods, store.Period{
		ID:         id,
		Name:       Str(name),
		FiscalYear: optInt(year),
		Quarter:    optInt(quarter),
		Month:      optInt(month),
	})
	return b
}

func (b *Builder) Header(id, period int64, nonPosting bool) *Builder {
	b.tables.Transactions = append(b.tables.Transactions, store.TransactionHeader{
		ID:            id,
		PostingPeriod: optInt(period),
		NonPosting:    nonPosting,
	})
	return b
}

func (b *Builder) Line(tx, subsidiary, department int64) *Builder {
	b.tables.TransactionLines = append(b.tables.TransactionLines, store.TransactionLine{
		Transaction: tx,
		Subsidiary:  optInt(subsidiary),
		Department:  optInt(department),
	})
	return b
}

func (b *Builder) Posting(tx, account int64, amount string) *Builder {
	line := store.AccountingLine{
		Transaction: tx,
		Account:     optInt(account),
		Amount:      decimal.RequireFromString(amount),
	}
	if account != 0 {
		line.AccountRaw = decimal.NewFromInt(account).String()
	}
	b.tables.AccountingLines = append(b.tables.AccountingLines, line)
	return b
}

// WithoutPeriods switches to the placeholder period.
func (b *Builder) WithoutPeriods() *Builder {
	b.tables.Periods = []store.Period{store.PlaceholderPeriod()}
	b.tables.SyntheticPeriod = true
	return b
}

func (b *Builder) Tables() store.Tables { return b.tables }

func (b *Builder) Store() *store.Store { return store.New(b.tables) }

// Sample is a small two-subsidiary dataset covering every report type, a
// non-posting transaction and an orphaned account reference (99).
func Sample() *Builder {
	return New().
		Account(1, "Cash", "Bank").
		Account(2, "Receivables", "AcctRec").
		Account(3, "Payables", "AcctPay").
		Account(4, "Equity", "Equity").
		Account(5, "Sales", "Income").
		Account(6, "COGS", "COGS").
		Account(7, "Rent", "Expense").
		Subsidiary(1, "HQ").
		Subsidiary(2, "Branch").
		Period(1, "Jan 2024", 2024, 1, 1).
		Period(2, "Feb 2024", 2024, 1, 2).
		Period(3, "Apr 2024", 2024, 2, 4).
		Header(100, 1, false).
		Header(101, 2, false).
		Header(102, 3, true).
		Header(103, 1, false).
		Line(100, 1, 10).
		Line(101, 1, 20).
		Line(102, 2, 10).
		Line(103, 2, 0).
		Posting(100, 1, "1000").
		Posting(100, 5, "-1000").
		Posting(101, 7, "300").
		Posting(101, 1, "-300").
		Posting(102, 2, "500").
		Posting(102, 5, "-500").
		Posting(103, 6, "200").
		Posting(103, 3, "-200").
		Posting(103, 99, "50").
		Posting(103, 4, "-50")
}
