package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/glreport/internal/ledger/ledgertest"
)

func TestRunSample(t *testing.T) {
	got := Run(ledgertest.Sample().Store())
	require.Equal(t, Result{
		NullAccounts:        1,
		MissingSubsidiaries: 0,
		NonPostingCount:     1,
		TotalTransactions:   4,
		PostingTransactions: 3,
	}, got)
	require.True(t, got.HasReferentialGaps())
	require.Equal(t, []string{"1 accounting lines have missing account references"}, got.Warnings())
}

func TestRunCountsNullReferencesAndDistinctHeaders(t *testing.T) {
	st := ledgertest.New().
		Account(1, "Cash", "Bank").
		Subsidiary(1, "HQ").
		Header(1, 0, false).
		Header(1, 0, false).
		Header(2, 0, true).
		Line(1, 1, 0).
		Line(1, 0, 0).
		Line(2, 7, 0).
		Posting(1, 1, "5").
		Posting(1, 0, "-5").
		Posting(2, 3, "1").
		Store()

	got := Run(st)
	require.Equal(t, 2, got.NullAccounts)
	require.Equal(t, 2, got.MissingSubsidiaries)
	require.Equal(t, 2, got.TotalTransactions)
	require.Equal(t, 1, got.PostingTransactions)
	require.Equal(t, 1, got.NonPostingCount)
	require.Len(t, got.Warnings(), 2)
}

func TestRunCleanDataset(t *testing.T) {
	st := ledgertest.New().
		Account(1, "Cash", "Bank").
		Subsidiary(1, "HQ").
		Header(1, 0, false).
		Line(1, 1, 0).
		Posting(1, 1, "5").
		Store()
	got := Run(st)
	require.False(t, got.HasReferentialGaps())
	require.Empty(t, got.Warnings())
}
