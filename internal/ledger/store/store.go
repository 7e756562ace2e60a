// Package store holds an immutable snapshot of the canonical ledger tables
// together with the hash indexes the base relation joins on.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Store is read-only once built and safe for concurrent readers. Slices
// returned by accessors are shared and must not be modified.
type Store struct {
	generation string
	loadedAt   time.Time
	tables     Tables

	accountsByID map[int64][]int
	subsByID     map[int64][]int
	headersByID  map[int64][]int
	linesByTx    map[int64][]int
	periodsByID  map[int64][]int
}

// Counts reports row counts per canonical table.
type Counts struct {
	Accounts         int `json:"account"`
	Subsidiaries     int `json:"subsidiary"`
	Transactions     int `json:"transaction"`
	TransactionLines int `json:"transactionline"`
	AccountingLines  int `json:"transactionaccountingline"`
	Periods          int `json:"accountingperiod"`
}

// New indexes tables under a fresh generation id.
func New(tables Tables) *Store {
	s := &Store{
		generation:   uuid.NewString(),
		loadedAt:     time.Now().UTC(),
		tables:       tables,
		accountsByID: make(map[int64][]int, len(tables.Accounts)),
		subsByID:     make(map[int64][]int, len(tables.Subsidiaries)),
		headersByID:  make(map[int64][]int, len(tables.Transactions)),
		linesByTx:    make(map[int64][]int, len(tables.TransactionLines)),
		periodsByID:  make(map[int64][]int, len(tables.Periods)),
	}
	for i, a := range tables.Accounts {
		s.accountsByID[a.ID] = append(s.accountsByID[a.ID], i)
	}
	for i, sub := range tables.Subsidiaries {
		s.subsByID[sub.ID] = append(s.subsByID[sub.ID], i)
	}
	for i, h := range tables.Transactions {
		s.headersByID[h.ID] = append(s.headersByID[h.ID], i)
	}
	for i, l := range tables.TransactionLines {
		s.linesByTx[l.Transaction] = append(s.linesByTx[l.Transaction], i)
	}
	for i, p := range tables.Periods {
		s.periodsByID[p.ID] = append(s.periodsByID[p.ID], i)
	}
	return s
}

// Generation identifies this snapshot. A reload always yields a new one.
func (s *Store) Generation() string { return s.generation }

// LoadedAt is the time the snapshot was built.
func (s *Store) LoadedAt() time.Time { return s.loadedAt }

// SyntheticPeriod reports whether the placeholder period is in use.
func (s *Store) SyntheticPeriod() bool { return s.tables.SyntheticPeriod }

func (s *Store) Accounts() []Account                 { return s.tables.Accounts }
func (s *Store) Subsidiaries() []Subsidiary          { return s.tables.Subsidiaries }
func (s *Store) Transactions() []TransactionHeader   { return s.tables.Transactions }
func (s *Store) TransactionLines() []TransactionLine { return s.tables.TransactionLines }
func (s *Store) AccountingLines() []AccountingLine   { return s.tables.AccountingLines }
func (s *Store) Periods() []Period                   { return s.tables.Periods }

// Counts returns the row count of each table.
func (s *Store) Counts() Counts {
	return Counts{
		Accounts:         len(s.tables.Accounts),
		Subsidiaries:     len(s.tables.Subsidiaries),
		Transactions:     len(s.tables.Transactions),
		TransactionLines: len(s.tables.TransactionLines),
		AccountingLines:  len(s.tables.AccountingLines),
		Periods:          len(s.tables.Periods),
	}
}

// AccountsByID returns every account row with the given id. A nil id never matches.
func (s *Store) AccountsByID(id *int64) []Account {
	if id == nil {
		return nil
	}
	idx := s.accountsByID[*id]
	out := make([]Account, len(idx))
	for i, j := range idx {
		out[i] = s.tables.Accounts[j]
	}
	return out
}

// SubsidiariesByID returns every subsidiary row with the given id.
func (s *Store) SubsidiariesByID(id *int64) []Subsidiary {
	if id == nil {
		return nil
	}
	idx := s.subsByID[*id]
	out := make([]Subsidiary, len(idx))
	for i, j := range idx {
		out[i] = s.tables.Subsidiaries[j]
	}
	return out
}

// Headers returns every transaction header with the given id.
func (s *Store) Headers(id int64) []TransactionHeader {
	idx := s.headersByID[id]
	out := make([]TransactionHeader, len(idx))
	for i, j := range idx {
		out[i] = s.tables.Transactions[j]
	}
	return out
}

// LinesFor returns the transaction lines of a transaction in input order.
func (s *Store) LinesFor(transaction int64) []TransactionLine {
	idx := s.linesByTx[transaction]
	out := make([]TransactionLine, len(idx))
	for i, j := range idx {
		out[i] = s.tables.TransactionLines[j]
	}
	return out
}

// PeriodsFor resolves the posting period of a header. With the placeholder
// period in use every header resolves to it.
func (s *Store) PeriodsFor(h TransactionHeader) []Period {
	if s.tables.SyntheticPeriod {
		return s.tables.Periods
	}
	if h.PostingPeriod == nil {
		return nil
	}
	idx := s.periodsByID[*h.PostingPeriod]
	out := make([]Period, len(idx))
	for i, j := range idx {
		out[i] = s.tables.Periods[j]
	}
	return out
}
