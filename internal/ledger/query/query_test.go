package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/glreport/internal/ledger/ledgertest"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
)

func TestBaseOneRowPerAccountingLine(t *testing.T) {
	st := ledgertest.Sample().Store()
	rows := query.Base(st, query.Filter{})
	require.Len(t, rows, len(st.AccountingLines()))
}

func TestBaseFansOutPerTransactionLine(t *testing.T) {
	st := ledgertest.New().
		Account(1, "Cash", "Bank").
		Subsidiary(1, "HQ").
		Period(1, "Jan", 2024, 1, 1).
		Header(10, 1, false).
		Line(10, 1, 0).
		Line(10, 1, 5).
		Posting(10, 1, "25").
		Store()

	rows := query.Base(st, query.Filter{})
	require.Len(t, rows, 2)
	require.Nil(t, rows[0].DepartmentID)
	require.Equal(t, int64(5), *rows[1].DepartmentID)
}

func TestBaseDropsLinesWithoutHeaderOrTransactionLine(t *testing.T) {
	st := ledgertest.New().
		Account(1, "Cash", "Bank").
		Header(10, 0, false).
		Line(10, 0, 0).
		Line(11, 0, 0).
		Posting(10, 1, "1").
		Posting(11, 1, "2").
		Posting(12, 1, "3").
		Store()

	rows := query.Base(st, query.Filter{})
	require.Len(t, rows, 1)
	require.Equal(t, query.UnknownSubsidiary, rows[0].SubsidiaryName)
	require.Nil(t, rows[0].PeriodName)
}

func TestBaseOrphanAccountPlaceholder(t *testing.T) {
	st := ledgertest.Sample().Store()
	var orphan *query.BaseRow
	for _, r := range query.Base(st, query.Filter{}) {
		if r.AccountID == nil {
			r := r
			orphan = &r
		}
	}
	require.NotNil(t, orphan)
	require.Equal(t, "Unknown Account [99]", orphan.AccountName)
	require.Equal(t, query.UnknownAccountType, orphan.AccountType)
	require.Equal(t, "Branch", orphan.SubsidiaryName)
}

func TestBaseNullAccountPlaceholder(t *testing.T) {
	st := ledgertest.New().
		Header(1, 0, false).
		Line(1, 0, 0).
		Posting(1, 0, "9").
		Store()
	rows := query.Base(st, query.Filter{})
	require.Len(t, rows, 1)
	require.Equal(t, "Unknown Account []", rows[0].AccountName)
}

func TestFilterSubsidiaryMonotonic(t *testing.T) {
	st := ledgertest.Sample().Store()
	one := query.Base(st, query.Filter{Subsidiaries: []int64{1}})
	both := query.Base(st, query.Filter{Subsidiaries: []int64{1, 2}})
	require.NotEmpty(t, one)
	require.Greater(t, len(both), len(one))

	seen := make(map[string]int)
	for _, r := range both {
		seen[r.SubsidiaryName+"/"+r.AccountName+"/"+r.Amount.String()]++
	}
	for _, r := range one {
		key := r.SubsidiaryName + "/" + r.AccountName + "/" + r.Amount.String()
		require.Positive(t, seen[key], key)
		seen[key]--
	}
}

func TestFilterEmptySetIsNoRestriction(t *testing.T) {
	st := ledgertest.Sample().Store()
	require.Len(t, query.Base(st, query.Filter{AccountTypes: []string{}}), len(query.Base(st, query.Filter{})))
}

func TestFilterNullNeverMatchesSet(t *testing.T) {
	st := ledgertest.Sample().Store()
	rows := query.Base(st, query.Filter{Departments: []int64{10, 20}})
	for _, r := range rows {
		require.NotNil(t, r.DepartmentID)
	}
	require.Len(t, rows, 6)
}

func TestFilterAccountTypeSkipsOrphans(t *testing.T) {
	st := ledgertest.Sample().Store()
	rows := query.Base(st, query.Filter{AccountTypes: []string{"Unknown", "Bank"}})
	require.Len(t, rows, 2)
	for _, r := range rows {
		require.Equal(t, "Bank", r.AccountType)
	}
}

func TestFilterExcludeNonPostingAndPeriods(t *testing.T) {
	st := ledgertest.Sample().Store()
	rows := query.Base(st, query.Filter{ExcludeNonPosting: true})
	require.Len(t, rows, 8)

	rows = query.Base(st, query.Filter{Periods: []string{"Apr 2024"}})
	require.Len(t, rows, 2)
	rows = query.Base(st, query.Filter{Periods: []string{"Apr 2024"}, ExcludeNonPosting: true})
	require.Empty(t, rows)
}

func TestFilterValuesWithQuotes(t *testing.T) {
	st := ledgertest.New().
		Account(1, "O'Brien's Fund", "Equity").
		Period(1, `Q1 "draft"`, 2024, 1, 1).
		Header(1, 1, false).
		Line(1, 0, 0).
		Posting(1, 1, "-5").
		Store()
	rows := query.Base(st, query.Filter{Periods: []string{`Q1 "draft"`}})
	require.Len(t, rows, 1)
	require.Equal(t, "O'Brien's Fund", rows[0].AccountName)
}

func TestFilterNormalizeAndActiveCount(t *testing.T) {
	f := query.Filter{
		Subsidiaries: []int64{3, 1, 3},
		Periods:      []string{"Feb", "Jan", "Feb"},
		AccountTypes: []string{},
	}
	n := f.Normalize()
	require.Equal(t, []int64{1, 3}, n.Subsidiaries)
	require.Equal(t, []string{"Feb", "Jan"}, n.Periods)
	require.Nil(t, n.AccountTypes)
	require.Equal(t, 2, f.ActiveCount())
	require.Equal(t, []string{"Subsidiaries: 1,3", "Periods: Feb, Jan"}, f.Describe())

	f.ExcludeNonPosting = true
	require.Equal(t, 3, f.ActiveCount())
	require.Equal(t, 3, f.Predicate().Len())
}

func TestSumByAccountRoundsToCents(t *testing.T) {
	st := ledgertest.New().
		Account(1, "Cash", "Bank").
		Header(1, 0, false).
		Line(1, 0, 0).
		Posting(1, 1, "0.105").
		Posting(1, 1, "0.0001").
		Store()
	totals := query.SumByAccount(query.Base(st, query.Filter{}), nil)
	require.Len(t, totals, 1)
	require.Equal(t, "0.11", totals[0].Total.StringFixed(2))
	require.Equal(t, int32(-2), totals[0].Total.Exponent())
}
