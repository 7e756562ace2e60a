package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/ledger/export"
	"github.com/odyssey-erp/glreport/internal/ledger/query"
	"github.com/odyssey-erp/glreport/internal/ledger/reports"
)

// ReportOptions defines the flags of the report command.
type ReportOptions struct {
	Source      SourceOptions
	Kind        string
	Filter      query.Filter
	Granularity string
	// Format is table, csv or json.
	Format   string
	Metadata bool
	// Output writes to a file instead of stdout.
	Output string
	IO
}

// ReportSummary is the JSON output of the report command.
type ReportSummary struct {
	Kind     ledger.ReportKind   `json:"kind"`
	Name     string              `json:"name"`
	Filters  []string            `json:"filters"`
	Warnings []string            `json:"warnings"`
	Empty    bool                `json:"empty"`
	Columns  []string            `json:"columns"`
	Rows     []map[string]string `json:"rows"`
	Totals   []export.Total      `json:"totals"`
}

// ReportCommand loads the dataset, builds one report and renders it.
func (c *LedgerCLI) ReportCommand(ctx context.Context, opts ReportOptions) int {
	streams := opts.IO.withDefaults()
	kind, err := ledger.ParseKind(opts.Kind)
	if err != nil {
		_, _ = fmt.Fprintf(streams.Stderr, "report: %v\n", err)
		return ExitFailure
	}
	g, err := reports.ParseGranularity(opts.Granularity)
	if err != nil {
		_, _ = fmt.Fprintf(streams.Stderr, "report: %v\n", err)
		return ExitFailure
	}
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = "table"
	}
	if format != "table" && format != "csv" && format != "json" {
		_, _ = fmt.Fprintf(streams.Stderr, "report: unknown format %q (table, csv, json)\n", opts.Format)
		return ExitFailure
	}

	ds, code := c.load(ctx, "report", opts.Source, streams)
	if code != ExitOK {
		return code
	}
	rep, err := c.engine.Generate(ds.Store, ledger.Request{Kind: kind, Filter: opts.Filter, Granularity: g})
	if err != nil {
		_, _ = fmt.Fprintf(streams.Stderr, "report: %v\n", err)
		return ExitFailure
	}

	out := streams.Stdout
	if opts.Output != "" {
		fh, err := os.Create(opts.Output)
		if err != nil {
			_, _ = fmt.Fprintf(streams.Stderr, "report: %v\n", err)
			return ExitFailure
		}
		defer fh.Close()
		out = fh
	}

	table := rep.Table()
	filters := opts.Filter.Describe()
	warnings := ds.Warnings()
	switch format {
	case "csv":
		err = export.WriteCSV(out, table, export.Options{Metadata: opts.Metadata, Filters: filters, Warnings: warnings})
	case "json":
		err = json.NewEncoder(out).Encode(ReportSummary{
			Kind:     kind,
			Name:     rep.Name(),
			Filters:  orEmpty(filters),
			Warnings: orEmpty(warnings),
			Empty:    rep.Empty(),
			Columns:  table.Headers,
			Rows:     table.Records(),
			Totals:   table.Totals,
		})
	default:
		printWarnings(streams.Stderr, warnings)
		err = renderTable(out, table, filters, rep.Empty())
	}
	if err != nil {
		_, _ = fmt.Fprintf(streams.Stderr, "report: write output: %v\n", err)
		return ExitFailure
	}
	return ExitOK
}

func renderTable(w io.Writer, t export.Table, filters []string, empty bool) error {
	_, _ = fmt.Fprintf(w, "%s\n", t.Title)
	if len(filters) > 0 {
		_, _ = fmt.Fprintf(w, "Filters: %s\n", strings.Join(filters, " | "))
	}
	if empty {
		_, err := fmt.Fprintln(w, ledger.NoDataMessage)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, tot := range t.Totals {
		_, _ = fmt.Fprintf(w, "%s: %s\n", tot.Name, tot.Value)
	}
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
