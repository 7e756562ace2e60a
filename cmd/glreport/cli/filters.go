package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/odyssey-erp/glreport/internal/ledger/options"
)

// FiltersOptions defines the flags of the filters command.
type FiltersOptions struct {
	Source     SourceOptions
	JSONOutput bool
	IO
}

// FiltersCommand lists the values each filter flag accepts for the dataset.
func (c *LedgerCLI) FiltersCommand(ctx context.Context, opts FiltersOptions) int {
	streams := opts.IO.withDefaults()
	ds, code := c.load(ctx, "filters", opts.Source, streams)
	if code != ExitOK {
		return code
	}
	opt := options.Build(ds.Store)
	if opts.JSONOutput {
		if err := json.NewEncoder(streams.Stdout).Encode(opt); err != nil {
			_, _ = fmt.Fprintf(streams.Stderr, "filters: encode json: %v\n", err)
			return ExitFailure
		}
		return ExitOK
	}
	renderFiltersHuman(streams.Stdout, opt)
	return ExitOK
}

func renderFiltersHuman(w io.Writer, opt options.Options) {
	_, _ = fmt.Fprintln(w, "Subsidiaries (--subsidiary):")
	for _, s := range opt.Subsidiaries {
		_, _ = fmt.Fprintf(w, "  %d  %s\n", s.ID, s.Name)
	}
	_, _ = fmt.Fprintln(w, "Periods (--period):")
	for _, p := range opt.Periods {
		_, _ = fmt.Fprintf(w, "  %s\n", p.Name)
	}
	depts := make([]string, len(opt.Departments))
	for i, d := range opt.Departments {
		depts[i] = strconv.FormatInt(d, 10)
	}
	_, _ = fmt.Fprintf(w, "Departments (--department): %s\n", strings.Join(depts, ", "))
	_, _ = fmt.Fprintf(w, "Account types (--account-type): %s\n", strings.Join(opt.AccountTypes, ", "))
}
