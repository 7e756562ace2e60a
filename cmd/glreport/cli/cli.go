// Package cli implements the glreport subcommands. Every command returns a
// process exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/odyssey-erp/glreport/internal/ledger"
	"github.com/odyssey-erp/glreport/internal/ledger/normalize"
	"github.com/odyssey-erp/glreport/internal/ledger/source"
)

// Exit codes shared by every command.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfigError = 2
	ExitGaps        = 10
)

// LedgerCLI runs report, validate and filters against one loaded dataset.
type LedgerCLI struct {
	engine *ledger.Engine
	logger *slog.Logger
}

// NewLedgerCLI constructs the CLI around engine.
func NewLedgerCLI(engine *ledger.Engine, logger *slog.Logger) (*LedgerCLI, error) {
	if engine == nil {
		return nil, errors.New("cli: engine required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerCLI{engine: engine, logger: logger}, nil
}

// IO carries the streams of one command invocation.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (s IO) withDefaults() IO {
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	return s
}

// load opens src and builds a dataset, printing failures to stderr.
func (c *LedgerCLI) load(ctx context.Context, cmd string, src SourceOptions, streams IO) (*ledger.Dataset, int) {
	loader, closeFn, err := src.Open(ctx)
	defer closeFn()
	if err != nil {
		_, _ = fmt.Fprintf(streams.Stderr, "%s: %v\n", cmd, err)
		return nil, exitCodeFor(err)
	}
	ds, err := c.engine.Load(ctx, src.Kind(), loader)
	if err != nil {
		_, _ = fmt.Fprintf(streams.Stderr, "%s: %v\n", cmd, err)
		return nil, exitCodeFor(err)
	}
	return ds, ExitOK
}

func exitCodeFor(err error) int {
	var cfgErr *normalize.ConfigError
	switch {
	case errors.As(err, &cfgErr), errors.Is(err, normalize.ErrMissingTable):
		return ExitConfigError
	case errors.Is(err, source.ErrInvalidIdentifier):
		return ExitConfigError
	}
	return ExitFailure
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", msg)
	}
}
