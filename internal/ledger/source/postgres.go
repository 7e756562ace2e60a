package source

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/glreport/internal/ledger/tabular"
	"github.com/odyssey-erp/glreport/internal/platform/db"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Querier is the subset of pgxpool.Pool and pgx.Tx the Postgres loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = pgx.Tx(nil)
)

// Postgres reads each table with SELECT * from one schema.
type Postgres struct {
	db     Querier
	schema string
	tables map[string]string
}

// NewPostgres returns a loader over q. An empty schemaName selects public.
// tables optionally maps canonical names to the relation names in the database.
func NewPostgres(q Querier, schemaName string, tables map[string]string) (*Postgres, error) {
	if schemaName == "" {
		schemaName = "public"
	}
	if !identPattern.MatchString(schemaName) {
		return nil, fmt.Errorf("%w: schema %q", ErrInvalidIdentifier, schemaName)
	}
	for name, rel := range tables {
		if !knownTable(name) {
			return nil, fmt.Errorf("source: unknown table %q", name)
		}
		if !identPattern.MatchString(rel) {
			return nil, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, rel)
		}
	}
	return &Postgres{db: q, schema: schemaName, tables: tables}, nil
}

func (p *Postgres) relation(name string) string {
	if rel, ok := p.tables[name]; ok {
		return rel
	}
	return name
}

// Load queries every table that exists in the schema. When the underlying
// handle can begin transactions all tables are read from one snapshot.
func (p *Postgres) Load(ctx context.Context) (tabular.Set, error) {
	b, ok := p.db.(db.Beginner)
	if !ok {
		return p.loadFrom(ctx, p.db)
	}
	var set tabular.Set
	err := db.WithSnapshot(ctx, b, func(tx pgx.Tx) error {
		var err error
		set, err = p.loadFrom(ctx, tx)
		return err
	})
	return set, err
}

func (p *Postgres) loadFrom(ctx context.Context, q Querier) (tabular.Set, error) {
	set := make(tabular.Set)
	for _, name := range tableNames() {
		ident := pgx.Identifier{p.schema, p.relation(name)}.Sanitize()
		var exists bool
		if err := q.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, ident).Scan(&exists); err != nil {
			return nil, fmt.Errorf("source: postgres lookup %s: %w", ident, err)
		}
		if !exists {
			continue
		}
		t, err := readTable(ctx, q, name, ident)
		if err != nil {
			return nil, err
		}
		set[name] = t
	}
	return set, nil
}

func readTable(ctx context.Context, q Querier, name, ident string) (*tabular.Table, error) {
	rows, err := q.Query(ctx, "SELECT * FROM "+ident)
	if err != nil {
		return nil, fmt.Errorf("source: postgres query %s: %w", ident, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := &tabular.Table{Name: name, Columns: make([]string, len(fields))}
	for i, f := range fields {
		t.Columns[i] = tabular.CleanHeader(f.Name)
	}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("source: postgres scan %s: %w", ident, err)
		}
		rec := make([]string, len(values))
		for i, v := range values {
			rec[i] = cellString(v)
		}
		t.Rows = append(t.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: postgres rows %s: %w", ident, err)
	}
	return t, nil
}
