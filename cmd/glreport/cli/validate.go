package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/ledger/normalize"
	"github.com/odyssey-erp/glreport/internal/ledger/validation"
)

// ValidateOptions defines the flags of the validate command.
type ValidateOptions struct {
	Source     SourceOptions
	JSONOutput bool
	IO
}

// ValidateSummary is the JSON output of the validate command.
type ValidateSummary struct {
	OK              bool                   `json:"ok"`
	Result          validation.Result      `json:"result"`
	Warnings        []string               `json:"warnings"`
	SyntheticPeriod bool                   `json:"synthetic_period"`
	Tables          []normalize.TableStats `json:"tables"`
}

// ValidateCommand loads the dataset and reports its diagnostics. It exits
// with ExitGaps when accounting or transaction lines reference missing rows.
func (c *LedgerCLI) ValidateCommand(ctx context.Context, opts ValidateOptions) int {
	streams := opts.IO.withDefaults()
	ds, code := c.load(ctx, "validate", opts.Source, streams)
	if code != ExitOK {
		return code
	}
	if opts.JSONOutput {
		summary := ValidateSummary{
			OK:              !ds.Validation.HasReferentialGaps(),
			Result:          ds.Validation,
			Warnings:        orEmpty(ds.Warnings()),
			SyntheticPeriod: ds.Stats.SyntheticPeriod,
			Tables:          ds.Stats.Tables,
		}
		if err := json.NewEncoder(streams.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(streams.Stderr, "validate: encode json: %v\n", err)
			return ExitFailure
		}
	} else {
		renderValidateHuman(streams.Stdout, ds)
	}
	if ds.Validation.HasReferentialGaps() {
		return ExitGaps
	}
	return ExitOK
}

func renderValidateHuman(w io.Writer, ds *ledger.Dataset) {
	v := ds.Validation
	_, _ = fmt.Fprintf(w, "Transactions: %d (%d posting, %d non-posting)\n", v.TotalTransactions, v.PostingTransactions, v.NonPostingCount)
	_, _ = fmt.Fprintf(w, "Accounting lines without a known account: %d\n", v.NullAccounts)
	_, _ = fmt.Fprintf(w, "Transaction lines without a known subsidiary: %d\n", v.MissingSubsidiaries)
	for _, ts := range ds.Stats.Tables {
		if ts.Dropped > 0 {
			_, _ = fmt.Fprintf(w, "%s: %d of %d rows dropped\n", ts.Table, ts.Dropped, ts.Rows)
		}
	}
	warnings := ds.Warnings()
	if len(warnings) == 0 {
		_, _ = fmt.Fprintln(w, "OK: no issues found")
		return
	}
	for _, msg := range warnings {
		_, _ = fmt.Fprintf(w, "WARN: %s\n", msg)
	}
}
