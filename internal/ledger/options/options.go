// Package options derives the selectable filter values of a dataset and
// caches them per store generation.
package options

import (
	"sort"

	"github.com/odyssey-erp/glreport/internal/ledger/store"
)

// Subsidiary is a selectable subsidiary.
type Subsidiary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Period is a selectable accounting period.
type Period struct {
	Name    string `json:"name"`
	Year    *int64 `json:"fiscal_year"`
	Quarter *int64 `json:"quarter"`
	Month   *int64 `json:"month"`
}

// Options lists the distinct values each filter dimension can take.
type Options struct {
	Subsidiaries []Subsidiary `json:"subsidiaries"`
	Periods      []Period     `json:"periods"`
	Departments  []int64      `json:"departments"`
	AccountTypes []string     `json:"account_types"`
}

// Build scans st. Subsidiaries are ordered by name, periods newest first,
// departments and account types ascending. Periods without a name and null
// departments or types are skipped.
func Build(st *store.Store) Options {
	return Options{
		Subsidiaries: subsidiaries(st.Subsidiaries()),
		Periods:      periods(st.Periods()),
		Departments:  departments(st.TransactionLines()),
		AccountTypes: accountTypes(st.Accounts()),
	}
}

func subsidiaries(rows []store.Subsidiary) []Subsidiary {
	type entry struct {
		Subsidiary
		named bool
	}
	seen := make(map[entry]struct{}, len(rows))
	entries := make([]entry, 0, len(rows))
	for _, s := range rows {
		e := entry{Subsidiary: Subsidiary{ID: s.ID}}
		if s.Name != nil {
			e.Name, e.named = *s.Name, true
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.named != b.named {
			return a.named
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	out := make([]Subsidiary, len(entries))
	for i, e := range entries {
		out[i] = e.Subsidiary
	}
	return out
}

func periods(rows []store.Period) []Period {
	type key struct {
		name                 string
		year, quarter, month int64
		hasY, hasQ, hasM     bool
	}
	seen := make(map[key]struct{}, len(rows))
	out := make([]Period, 0, len(rows))
	for _, p := range rows {
		if p.Name == nil || *p.Name == "" {
			continue
		}
		k := key{name: *p.Name}
		if p.FiscalYear != nil {
			k.year, k.hasY = *p.FiscalYear, true
		}
		if p.Quarter != nil {
			k.quarter, k.hasQ = *p.Quarter, true
		}
		if p.Month != nil {
			k.month, k.hasM = *p.Month, true
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, Period{Name: *p.Name, Year: p.FiscalYear, Quarter: p.Quarter, Month: p.Month})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := compareDesc(out[i].Year, out[j].Year); c != 0 {
			return c < 0
		}
		return compareDesc(out[i].Month, out[j].Month) < 0
	})
	return out
}

// compareDesc orders values descending with nulls last.
func compareDesc(a, b *int64) int {
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

func departments(rows []store.TransactionLine) []int64 {
	seen := make(map[int64]struct{})
	out := []int64{}
	for _, l := range rows {
		if l.Department == nil {
			continue
		}
		if _, ok := seen[*l.Department]; ok {
			continue
		}
		seen[*l.Department] = struct{}{}
		out = append(out, *l.Department)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func accountTypes(rows []store.Account) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, a := range rows {
		if a.AcctType == nil {
			continue
		}
		if _, ok := seen[*a.AcctType]; ok {
			continue
		}
		seen[*a.AcctType] = struct{}{}
		out = append(out, *a.AcctType)
	}
	sort.Strings(out)
	return out
}
