package normalize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTable is returned when a required table is absent from the set.
var ErrMissingTable = errors.New("normalize: required table missing")

// ConfigError reports a required field that no column of the table carries.
type ConfigError struct {
	Table     string
	Field     string
	Aliases   []string
	Available []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("normalize: %s: required field %q not found (tried %s); available columns: %s",
		e.Table, e.Field, strings.Join(e.Aliases, ", "), strings.Join(e.Available, ", "))
}
