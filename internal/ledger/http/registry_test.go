package http

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/ledger/ledgertest"
)

func TestRegistryEvictsOldest(t *testing.T) {
	var evicted []string
	reg := NewRegistry(2, func(ds *ledger.Dataset) { evicted = append(evicted, ds.ID) })
	for _, id := range []string{"a", "b", "c"} {
		reg.Put(&ledger.Dataset{ID: id, Store: ledgertest.New().Store()})
	}
	require.Equal(t, []string{"a"}, evicted)
	require.Equal(t, 2, reg.Len())
	_, ok := reg.Get("a")
	require.False(t, ok)

	list := reg.List()
	require.Equal(t, "c", list[0].ID)
	require.Equal(t, "b", list[1].ID)

	require.True(t, reg.Delete("b"))
	require.False(t, reg.Delete("b"))
	require.Equal(t, []string{"a", "b"}, evicted)

	reg.Put(&ledger.Dataset{ID: "c", Store: ledgertest.New().Store()})
	require.Equal(t, 1, reg.Len())
}
