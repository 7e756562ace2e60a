// Package schema describes the canonical ledger tables and the column
// aliases under which exporters deliver them.
package schema

import "github.com/odyssey-erp/glreport/internal/ledger/tabular"

// Canonical table names.
const (
	TableAccount         = "account"
	TableSubsidiary      = "subsidiary"
	TableTransaction     = "transaction"
	TableTransactionLine = "transactionline"
	TableAccountingLine  = "transactionaccountingline"
	TablePeriod          = "accountingperiod"
)

// Canonical field names.
const (
	FieldID            = "id"
	FieldFullName      = "fullname"
	FieldAcctType      = "accttype"
	FieldName          = "name"
	FieldTranDate      = "trandate"
	FieldPostingPeriod = "postingperiod"
	FieldNonPosting    = "nonposting"
	FieldTransaction   = "transaction"
	FieldSubsidiary    = "subsidiary"
	FieldDepartment    = "department"
	FieldAccount       = "account"
	FieldAmount        = "amount"
	FieldPeriodName    = "periodname"
	FieldFiscalYear    = "fiscalyear"
	FieldQuarter       = "quarter"
	FieldMonth         = "month"
	FieldStartDate     = "startdate"
	FieldEndDate       = "enddate"
)

// RequiredTables must be supplied for every dataset.
var RequiredTables = []string{
	TableAccount,
	TableSubsidiary,
	TableTransaction,
	TableTransactionLine,
	TableAccountingLine,
}

// AllTables lists every canonical table, the optional period table last.
var AllTables = append(append([]string(nil), RequiredTables...), TablePeriod)

// Kind is the target type of a canonical field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindDate
	KindBool
	KindDecimal
)

// Field maps one canonical field to its ordered aliases.
//
// Required fields must resolve to a column or the table is rejected. Key
// fields additionally drop the row when the cell cannot be coerced.
type Field struct {
	Name     string
	Aliases  []string
	Kind     Kind
	Required bool
	Key      bool
}

// TableSpec lists the fields of one canonical table.
type TableSpec struct {
	Table  string
	Fields []Field
}

// Field looks up a field by canonical name.
func (s TableSpec) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Specs holds the table specs of a dataset keyed by table name.
type Specs map[string]TableSpec

// Default returns the alias lists delivered by the stock exporter.
func Default() Specs {
	return Specs{
		TableAccount: {Table: TableAccount, Fields: []Field{
			{Name: FieldID, Aliases: []string{"id", "account_id"}, Kind: KindInt, Required: true, Key: true},
			{Name: FieldFullName, Aliases: []string{"fullname", "name", "account_name", "accountsearchdisplayname"}, Kind: KindString},
			{Name: FieldAcctType, Aliases: []string{"accttype", "accounttype", "account_type"}, Kind: KindString},
		}},
		TableSubsidiary: {Table: TableSubsidiary, Fields: []Field{
			{Name: FieldID, Aliases: []string{"id", "subsidiary_id"}, Kind: KindInt, Required: true, Key: true},
			{Name: FieldName, Aliases: []string{"name", "fullname", "subsidiary_name"}, Kind: KindString},
		}},
		TableTransaction: {Table: TableTransaction, Fields: []Field{
			{Name: FieldID, Aliases: []string{"id", "transaction_id"}, Kind: KindInt, Required: true, Key: true},
			{Name: FieldTranDate, Aliases: []string{"trandate", "transaction_date", "date"}, Kind: KindDate},
			{Name: FieldPostingPeriod, Aliases: []string{"postingperiod", "posting_period", "period", "accountingperiod"}, Kind: KindInt},
			{Name: FieldNonPosting, Aliases: []string{"nonposting", "isnonposting", "posting"}, Kind: KindBool},
		}},
		TableTransactionLine: {Table: TableTransactionLine, Fields: []Field{
			{Name: FieldTransaction, Aliases: []string{"transaction", "transaction_id"}, Kind: KindInt, Required: true, Key: true},
			{Name: FieldSubsidiary, Aliases: []string{"subsidiary", "subsidiary_id"}, Kind: KindInt},
			{Name: FieldDepartment, Aliases: []string{"department", "department_id"}, Kind: KindInt},
		}},
		TableAccountingLine: {Table: TableAccountingLine, Fields: []Field{
			{Name: FieldTransaction, Aliases: []string{"transaction", "transaction_id"}, Kind: KindInt, Required: true, Key: true},
			{Name: FieldAccount, Aliases: []string{"account", "account_id"}, Kind: KindInt, Required: true},
			{Name: FieldAmount, Aliases: []string{"amount"}, Kind: KindDecimal, Required: true, Key: true},
		}},
		TablePeriod: {Table: TablePeriod, Fields: []Field{
			{Name: FieldID, Aliases: []string{"id", "period_id"}, Kind: KindInt, Required: true, Key: true},
			{Name: FieldPeriodName, Aliases: []string{"periodname", "period_name", "name"}, Kind: KindString},
			{Name: FieldFiscalYear, Aliases: []string{"fiscalyear", "year"}, Kind: KindInt},
			{Name: FieldQuarter, Aliases: []string{"quarter", "fiscalquarter"}, Kind: KindInt},
			{Name: FieldMonth, Aliases: []string{"month", "fiscalmonth"}, Kind: KindInt},
			{Name: FieldStartDate, Aliases: []string{"startdate", "start_date"}, Kind: KindDate},
			{Name: FieldEndDate, Aliases: []string{"enddate", "end_date"}, Kind: KindDate},
		}},
	}
}

// WithOverrides returns a copy of s where the extra aliases of each
// table/field are tried before the defaults. Unknown tables and fields are
// ignored.
func (s Specs) WithOverrides(overrides map[string]map[string][]string) Specs {
	out := make(Specs, len(s))
	for name, spec := range s {
		fields := make([]Field, len(spec.Fields))
		for i, f := range spec.Fields {
			extra := overrides[name][f.Name]
			f.Aliases = mergeAliases(extra, f.Aliases)
			fields[i] = f
		}
		out[name] = TableSpec{Table: spec.Table, Fields: fields}
	}
	return out
}

func mergeAliases(first, rest []string) []string {
	seen := make(map[string]struct{}, len(first)+len(rest))
	merged := make([]string, 0, len(first)+len(rest))
	for _, list := range [][]string{first, rest} {
		for _, a := range list {
			a = tabular.CleanHeader(a)
			if a == "" {
				continue
			}
			if _, ok := seen[a]; ok {
				continue
			}
			seen[a] = struct{}{}
			merged = append(merged, a)
		}
	}
	return merged
}

// Resolve returns the first alias, in priority order, present among columns.
// The returned name is the column as it appears in the input.
func Resolve(columns []string, aliases []string) (string, bool) {
	for _, alias := range aliases {
		for _, col := range columns {
			if tabular.CleanHeader(col) == alias {
				return col, true
			}
		}
	}
	return "", false
}
