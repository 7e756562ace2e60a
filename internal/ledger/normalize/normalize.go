// Package normalize maps raw export tables onto the canonical ledger schema.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/odyssey-erp/glreport/internal/ledger/schema"
	"github.com/odyssey-erp/glreport/internal/ledger/store"
	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
)

// TableStats describes how one raw table was normalized.
type TableStats struct {
	Table   string            `json:"table"`
	Rows    int               `json:"rows"`
	Kept    int               `json:"kept"`
	Dropped int               `json:"dropped"`
	Columns map[string]string `json:"columns"`
}

// Stats collects per-table normalization results.
type Stats struct {
	Tables          []TableStats `json:"tables"`
	SyntheticPeriod bool         `json:"synthetic_period"`
}

// Dropped sums rows discarded for unparseable keys across all tables.
func (s Stats) Dropped() int {
	total := 0
	for _, t := range s.Tables {
		total += t.Dropped
	}
	return total
}

// Normalizer applies a set of table specs to raw tables.
type Normalizer struct {
	specs schema.Specs
}

// New returns a normalizer for specs. Nil specs select schema.Default.
func New(specs schema.Specs) *Normalizer {
	if specs == nil {
		specs = schema.Default()
	}
	return &Normalizer{specs: specs}
}

// Normalize converts set into canonical tables. Raw tables are not modified.
func (n *Normalizer) Normalize(set tabular.Set) (store.Tables, Stats, error) {
	var (
		out   store.Tables
		stats Stats
	)
	for _, name := range schema.RequiredTables {
		if set[name] == nil {
			return store.Tables{}, Stats{}, fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
	}

	bindings := make(map[string]*binding, len(schema.AllTables))
	for _, name := range schema.AllTables {
		raw := set[name]
		if raw == nil {
			continue
		}
		spec, ok := n.specs[name]
		if !ok {
			return store.Tables{}, Stats{}, fmt.Errorf("normalize: no spec for table %s", name)
		}
		b, err := bind(spec, raw)
		if err != nil {
			return store.Tables{}, Stats{}, err
		}
		bindings[name] = b
	}

	var ts TableStats
	out.Accounts, ts = accounts(bindings[schema.TableAccount])
	stats.Tables = append(stats.Tables, ts)
	out.Subsidiaries, ts = subsidiaries(bindings[schema.TableSubsidiary])
	stats.Tables = append(stats.Tables, ts)
	out.Transactions, ts = headers(bindings[schema.TableTransaction])
	stats.Tables = append(stats.Tables, ts)
	out.TransactionLines, ts = transactionLines(bindings[schema.TableTransactionLine])
	stats.Tables = append(stats.Tables, ts)
	out.AccountingLines, ts = accountingLines(bindings[schema.TableAccountingLine])
	stats.Tables = append(stats.Tables, ts)

	if b := bindings[schema.TablePeriod]; b != nil {
		out.Periods, ts = periods(b)
		stats.Tables = append(stats.Tables, ts)
	} else {
		out.Periods = []store.Period{store.PlaceholderPeriod()}
		out.SyntheticPeriod = true
		stats.SyntheticPeriod = true
	}
	return out, stats, nil
}

type binding struct {
	spec    schema.TableSpec
	table   *tabular.Table
	index   map[string]int
	columns map[string]string
}

func bind(spec schema.TableSpec, t *tabular.Table) (*binding, error) {
	b := &binding{
		spec:    spec,
		table:   t,
		index:   make(map[string]int, len(spec.Fields)),
		columns: make(map[string]string, len(spec.Fields)),
	}
	for _, f := range spec.Fields {
		col, ok := schema.Resolve(t.Columns, f.Aliases)
		if !ok {
			if f.Required {
				return nil, &ConfigError{
					Table:     spec.Table,
					Field:     f.Name,
					Aliases:   append([]string(nil), f.Aliases...),
					Available: append([]string(nil), t.Columns...),
				}
			}
			b.index[f.Name] = -1
			continue
		}
		b.index[f.Name] = t.Index(col)
		b.columns[f.Name] = col
	}
	return b, nil
}

func (b *binding) stats(kept int) TableStats {
	return TableStats{
		Table:   b.spec.Table,
		Rows:    b.table.Len(),
		Kept:    kept,
		Dropped: b.table.Len() - kept,
		Columns: b.columns,
	}
}

func (b *binding) cell(row int, field string) string {
	i, ok := b.index[field]
	if !ok || i < 0 {
		return ""
	}
	return b.table.Cell(row, i)
}

func (b *binding) key(row int, field string) (int64, bool) {
	return schema.ParseInt(b.cell(row, field))
}

func (b *binding) optInt(row int, field string) *int64 {
	v, ok := schema.ParseInt(b.cell(row, field))
	if !ok {
		return nil
	}
	return &v
}

func (b *binding) optString(row int, field string) *string {
	s := strings.TrimSpace(b.cell(row, field))
	if schema.IsNull(s) {
		return nil
	}
	return &s
}

func (b *binding) optDate(row int, field string) *time.Time {
	v, ok := schema.ParseDate(b.cell(row, field))
	if !ok {
		return nil
	}
	return &v
}

func accounts(b *binding) ([]store.Account, TableStats) {
	out := make([]store.Account, 0, b.table.Len())
	for i := 0; i < b.table.Len(); i++ {
		id, ok := b.key(i, schema.FieldID)
		if !ok {
			continue
		}
		out = append(out, store.Account{
			ID:       id,
			FullName: b.optString(i, schema.FieldFullName),
			AcctType: b.optString(i, schema.FieldAcctType),
		})
	}
	return out, b.stats(len(out))
}

func subsidiaries(b *binding) ([]store.Subsidiary, TableStats) {
	out := make([]store.Subsidiary, 0, b.table.Len())
	for i := 0; i < b.table.Len(); i++ {
		id, ok := b.key(i, schema.FieldID)
		if !ok {
			continue
		}
		out = append(out, store.Subsidiary{ID: id, Name: b.optString(i, schema.FieldName)})
	}
	return out, b.stats(len(out))
}

func headers(b *binding) ([]store.TransactionHeader, TableStats) {
	semantics := classifyPosting(b.columns[schema.FieldNonPosting])
	out := make([]store.TransactionHeader, 0, b.table.Len())
	for i := 0; i < b.table.Len(); i++ {
		id, ok := b.key(i, schema.FieldID)
		if !ok {
			continue
		}
		out = append(out, store.TransactionHeader{
			ID:            id,
			TranDate:      b.optDate(i, schema.FieldTranDate),
			PostingPeriod: b.optInt(i, schema.FieldPostingPeriod),
			NonPosting:    semantics.nonPosting(b.cell(i, schema.FieldNonPosting)),
		})
	}
	return out, b.stats(len(out))
}

func transactionLines(b *binding) ([]store.TransactionLine, TableStats) {
	out := make([]store.TransactionLine, 0, b.table.Len())
	for i := 0; i < b.table.Len(); i++ {
		tx, ok := b.key(i, schema.FieldTransaction)
		if !ok {
			continue
		}
		out = append(out, store.TransactionLine{
			Transaction: tx,
			Subsidiary:  b.optInt(i, schema.FieldSubsidiary),
			Department:  b.optInt(i, schema.FieldDepartment),
		})
	}
	return out, b.stats(len(out))
}

func accountingLines(b *binding) ([]store.AccountingLine, TableStats) {
	out := make([]store.AccountingLine, 0, b.table.Len())
	for i := 0; i < b.table.Len(); i++ {
		tx, ok := b.key(i, schema.FieldTransaction)
		if !ok {
			continue
		}
		amount, ok := schema.ParseDecimal(b.cell(i, schema.FieldAmount))
		if !ok {
			continue
		}
		raw := strings.TrimSpace(b.cell(i, schema.FieldAccount))
		if schema.IsNull(raw) {
			raw = ""
		}
		out = append(out, store.AccountingLine{
			Transaction: tx,
			Account:     b.optInt(i, schema.FieldAccount),
			AccountRaw:  raw,
			Amount:      amount,
		})
	}
	return out, b.stats(len(out))
}

func periods(b *binding) ([]store.Period, TableStats) {
	out := make([]store.Period, 0, b.table.Len())
	for i := 0; i < b.table.Len(); i++ {
		id, ok := b.key(i, schema.FieldID)
		if !ok {
			continue
		}
		out = append(out, store.Period{
			ID:         id,
			Name:       b.optString(i, schema.FieldPeriodName),
			FiscalYear: b.optInt(i, schema.FieldFiscalYear),
			Quarter:    b.optInt(i, schema.FieldQuarter),
			Month:      b.optInt(i, schema.FieldMonth),
			StartDate:  b.optDate(i, schema.FieldStartDate),
			EndDate:    b.optDate(i, schema.FieldEndDate),
		})
	}
	return out, b.stats(len(out))
}
