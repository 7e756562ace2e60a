// Package query builds the filtered base relation every report aggregates.
package query

import (
	"sort"
	"strconv"
	"strings"
)

// Filter restricts the base relation. Empty sets mean no restriction and all
// conditions are combined with AND.
type Filter struct {
	ExcludeNonPosting bool     `json:"exclude_nonposting"`
	Subsidiaries      []int64  `json:"subsidiaries,omitempty"`
	Periods           []string `json:"periods,omitempty" validate:"dive,required"`
	Departments       []int64  `json:"departments,omitempty"`
	AccountTypes      []string `json:"account_types,omitempty" validate:"dive,required"`
}

// Normalize returns a copy with every set sorted and deduplicated.
func (f Filter) Normalize() Filter {
	return Filter{
		ExcludeNonPosting: f.ExcludeNonPosting,
		Subsidiaries:      uniqueInts(f.Subsidiaries),
		Periods:           uniqueStrings(f.Periods),
		Departments:       uniqueInts(f.Departments),
		AccountTypes:      uniqueStrings(f.AccountTypes),
	}
}

// ActiveCount returns how many dimensions the filter restricts.
func (f Filter) ActiveCount() int {
	n := 0
	if f.ExcludeNonPosting {
		n++
	}
	for _, l := range []int{len(f.Subsidiaries), len(f.Periods), len(f.Departments), len(f.AccountTypes)} {
		if l > 0 {
			n++
		}
	}
	return n
}

// Describe renders the active restrictions as human readable fragments.
func (f Filter) Describe() []string {
	f = f.Normalize()
	var parts []string
	if f.ExcludeNonPosting {
		parts = append(parts, "Posting only")
	}
	if len(f.Subsidiaries) > 0 {
		parts = append(parts, "Subsidiaries: "+joinInts(f.Subsidiaries))
	}
	if len(f.Periods) > 0 {
		parts = append(parts, "Periods: "+strings.Join(f.Periods, ", "))
	}
	if len(f.Departments) > 0 {
		parts = append(parts, "Departments: "+joinInts(f.Departments))
	}
	if len(f.AccountTypes) > 0 {
		parts = append(parts, "Account types: "+strings.Join(f.AccountTypes, ", "))
	}
	return parts
}

func uniqueInts(in []int64) []int64 {
	if len(in) == 0 {
		return nil
	}
	out := append([]int64(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

func joinInts(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
