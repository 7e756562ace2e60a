package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/glreport/cmd/glreport/cli"
	"github.com/odyssey-erp/glreport/internal/app"
	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/observability"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(cli.ExitConfigError)
	}
	logger := app.NewLogger(cfg)

	code := cli.ExitOK
	root := newRootCommand(cfg, logger, &code)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(cli.ExitFailure)
	}
	os.Exit(code)
}

func newRootCommand(cfg *app.Config, logger *slog.Logger, code *int) *cobra.Command {
	var src cli.SourceOptions

	root := &cobra.Command{
		Use:          "glreport",
		Short:        "Financial reports from general-ledger exports",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&src.Dir, "dir", "", "directory holding <table>.csv|.xlsx files and an optional dataset.yaml")
	flags.StringVar(&src.Encoding, "encoding", "", "CSV encoding: utf-8 or windows-1252")
	flags.StringVar(&src.PGDSN, "pg-dsn", "", "PostgreSQL DSN to read the tables from")
	flags.StringVar(&src.PGSchema, "pg-schema", "public", "PostgreSQL schema holding the tables")
	flags.StringVar(&src.GCSBucket, "gcs-bucket", "", "Cloud Storage bucket holding <prefix>/<table>.csv objects")
	flags.StringVar(&src.GCSPrefix, "gcs-prefix", "", "object prefix inside --gcs-bucket")
	flags.StringVar(&src.BQProject, "bq-project", "", "BigQuery project (detected when empty)")
	flags.StringVar(&src.BQDataset, "bq-dataset", "", "BigQuery dataset holding the tables")

	newCLI := func() *cli.LedgerCLI {
		c, _ := cli.NewLedgerCLI(ledger.NewEngine(logger, ledger.WithMetrics(observability.NewMetrics())), logger)
		return c
	}

	root.AddCommand(
		newReportCommand(&src, newCLI, code),
		newValidateCommand(&src, newCLI, code),
		newFiltersCommand(&src, newCLI, code),
		newServeCommand(&src, cfg, logger, code),
	)
	return root
}

func newReportCommand(src *cli.SourceOptions, newCLI func() *cli.LedgerCLI, code *int) *cobra.Command {
	var opts cli.ReportOptions
	cmd := &cobra.Command{
		Use:   "report <tb|pl|pl-period|bs>",
		Short: "Build a trial balance, P&L, periodised P&L or balance sheet",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			opts.Source = *src
			opts.Kind = args[0]
			opts.IO = cli.IO{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
			*code = newCLI().ReportCommand(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.Filter.ExcludeNonPosting, "posting-only", false, "exclude non-posting transactions")
	f.Int64SliceVar(&opts.Filter.Subsidiaries, "subsidiary", nil, "subsidiary ids to include")
	f.StringArrayVar(&opts.Filter.Periods, "period", nil, "accounting period names to include")
	f.Int64SliceVar(&opts.Filter.Departments, "department", nil, "department ids to include")
	f.StringArrayVar(&opts.Filter.AccountTypes, "account-type", nil, "account types to include")
	f.StringVar(&opts.Granularity, "granularity", "month", "pl-period bucket: month, quarter or year")
	f.StringVar(&opts.Format, "format", "table", "output format: table, csv or json")
	f.BoolVar(&opts.Metadata, "metadata", false, "prefix CSV output with # report, filter and warning lines")
	f.StringVarP(&opts.Output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func newValidateCommand(src *cli.SourceOptions, newCLI func() *cli.LedgerCLI, code *int) *cobra.Command {
	var opts cli.ValidateOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report referential gaps and non-posting counts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts.Source = *src
			opts.IO = cli.IO{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
			*code = newCLI().ValidateCommand(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "print JSON")
	return cmd
}

func newFiltersCommand(src *cli.SourceOptions, newCLI func() *cli.LedgerCLI, code *int) *cobra.Command {
	var opts cli.FiltersOptions
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the selectable subsidiaries, periods, departments and account types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts.Source = *src
			opts.IO = cli.IO{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
			*code = newCLI().FiltersCommand(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "print JSON")
	return cmd
}

func newServeCommand(src *cli.SourceOptions, cfg *app.Config, logger *slog.Logger, code *int) *cobra.Command {
	var opts cli.ServeOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			opts.Source = *src
			opts.IO = cli.IO{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
			*code = cli.Serve(cmd.Context(), cfg, logger, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (defaults to APP_ADDR)")
	return cmd
}
