package query

import "github.com/odyssey-erp/glreport/internal/ledger/store"

// Candidate is one joined row before the filter is applied. Account and
// Period are nil when the left join found no match.
type Candidate struct {
	Header  store.TransactionHeader
	Line    store.TransactionLine
	Account *store.Account
	Period  *store.Period
}

// Condition is one restriction on a candidate row.
type Condition func(Candidate) bool

// Predicate is the conjunction of the conditions a Filter implies.
type Predicate struct {
	conds []Condition
}

// Match reports whether c satisfies every condition.
func (p Predicate) Match(c Candidate) bool {
	for _, cond := range p.conds {
		if !cond(c) {
			return false
		}
	}
	return true
}

// Len is the number of conditions.
func (p Predicate) Len() int { return len(p.conds) }

// Predicate compiles the filter. Null values never satisfy a set condition.
func (f Filter) Predicate() Predicate {
	var p Predicate
	if f.ExcludeNonPosting {
		p.conds = append(p.conds, func(c Candidate) bool { return !c.Header.NonPosting })
	}
	if len(f.Subsidiaries) > 0 {
		set := intSet(f.Subsidiaries)
		p.conds = append(p.conds, func(c Candidate) bool { return set.has(c.Line.Subsidiary) })
	}
	if len(f.Periods) > 0 {
		set := stringSet(f.Periods)
		p.conds = append(p.conds, func(c Candidate) bool {
			if c.Period == nil {
				return false
			}
			return set.has(c.Period.Name)
		})
	}
	if len(f.Departments) > 0 {
		set := intSet(f.Departments)
		p.conds = append(p.conds, func(c Candidate) bool { return set.has(c.Line.Department) })
	}
	if len(f.AccountTypes) > 0 {
		set := stringSet(f.AccountTypes)
		p.conds = append(p.conds, func(c Candidate) bool {
			if c.Account == nil {
				return false
			}
			return set.has(c.Account.AcctType)
		})
	}
	return p
}

type int64Set map[int64]struct{}

func intSet(ids []int64) int64Set {
	s := make(int64Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s int64Set) has(v *int64) bool {
	if v == nil {
		return false
	}
	_, ok := s[*v]
	return ok
}

type strSet map[string]struct{}

func stringSet(values []string) strSet {
	s := make(strSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s strSet) has(v *string) bool {
	if v == nil {
		return false
	}
	_, ok := s[*v]
	return ok
}
