package source

import (
	"database/sql/driver"
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

type textValuer string

func (v textValuer) Value() (driver.Value, error) { return string(v), nil }

type nullValuer struct{}

func (nullValuer) Value() (driver.Value, error) { return nil, nil }

func TestCellString(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Cash", "Cash"},
		{"bytes", []byte("abc"), "abc"},
		{"int64", int64(42), "42"},
		{"int32", int32(-7), "-7"},
		{"float", 12.5, "12.5"},
		{"integral float", float64(3), "3"},
		{"bool", true, "true"},
		{"date", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), "2024-01-31"},
		{"timestamp", time.Date(2024, 1, 31, 8, 30, 0, 0, time.UTC), "2024-01-31T08:30:00Z"},
		{"civil date", civil.Date{Year: 2024, Month: time.February, Day: 1}, "2024-02-01"},
		{"rat", big.NewRat(-5, 4), "-1.250000000"},
		{"valuer", textValuer("-1250.50"), "-1250.50"},
		{"null valuer", nullValuer{}, ""},
		{"null pg int", pgtype.Int8{}, ""},
		{"pg int", pgtype.Int8{Int64: 9, Valid: true}, "9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, cellString(tc.in))
		})
	}
}
