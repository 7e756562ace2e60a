// Package source delivers the raw export tables of a dataset from a
// directory, Postgres, Cloud Storage or BigQuery.
package source

import (
	"context"
	"errors"

	"github.com/odyssey-erp/glreport/internal/ledger/schema"
	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
)

var (
	// ErrNoSource is returned when no loader was configured.
	ErrNoSource = errors.New("source: no source configured")
	// ErrInvalidIdentifier rejects schema, dataset or table names that cannot be quoted safely.
	ErrInvalidIdentifier = errors.New("source: invalid identifier")
)

// Loader reads the tables of one dataset. Tables the source does not carry
// are left out of the set; deciding whether that is fatal is up to the
// normalizer.
type Loader interface {
	Load(ctx context.Context) (tabular.Set, error)
}

// AliasProvider is implemented by loaders that ship their own column alias
// overrides, keyed table then field.
type AliasProvider interface {
	AliasOverrides() map[string]map[string][]string
}

// Overrides returns the alias overrides of l, or nil.
func Overrides(l Loader) map[string]map[string][]string {
	if p, ok := l.(AliasProvider); ok {
		return p.AliasOverrides()
	}
	return nil
}

func tableNames() []string {
	return schema.AllTables
}
