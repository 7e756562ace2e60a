package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestLookupsKeepDuplicateKeys(t *testing.T) {
	st := New(Tables{
		Accounts: []Account{
			{ID: 1, FullName: ptr("Cash")},
			{ID: 1, FullName: ptr("Cash (dup)")},
			{ID: 2, FullName: ptr("Revenue")},
		},
		TransactionLines: []TransactionLine{
			{Transaction: 10, Subsidiary: ptr(int64(1))},
			{Transaction: 10, Subsidiary: ptr(int64(2))},
		},
	})

	require.Len(t, st.AccountsByID(ptr(int64(1))), 2)
	require.Len(t, st.AccountsByID(ptr(int64(2))), 1)
	require.Empty(t, st.AccountsByID(nil))
	require.Empty(t, st.AccountsByID(ptr(int64(99))))
	require.Len(t, st.LinesFor(10), 2)
	require.Equal(t, int64(2), *st.LinesFor(10)[1].Subsidiary)
}

func TestPeriodsForSyntheticPeriod(t *testing.T) {
	st := New(Tables{
		Transactions:    []TransactionHeader{{ID: 1, PostingPeriod: ptr(int64(42))}, {ID: 2}},
		Periods:         []Period{PlaceholderPeriod()},
		SyntheticPeriod: true,
	})
	for _, h := range st.Transactions() {
		periods := st.PeriodsFor(h)
		require.Len(t, periods, 1)
		require.Equal(t, NoPeriodName, *periods[0].Name)
	}
}

func TestPeriodsForNullPostingPeriod(t *testing.T) {
	st := New(Tables{Periods: []Period{{ID: 1}}})
	require.Empty(t, st.PeriodsFor(TransactionHeader{ID: 1}))
	require.Len(t, st.PeriodsFor(TransactionHeader{ID: 1, PostingPeriod: ptr(int64(1))}), 1)
}

func TestGenerationChangesPerStore(t *testing.T) {
	a := New(Tables{AccountingLines: []AccountingLine{{Transaction: 1, Amount: decimal.NewFromInt(5)}}})
	b := New(Tables{})
	require.NotEqual(t, a.Generation(), b.Generation())
	require.Equal(t, 1, a.Counts().AccountingLines)
	require.False(t, a.LoadedAt().IsZero())
}
