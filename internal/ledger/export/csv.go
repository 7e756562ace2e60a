package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// Options controls optional CSV decoration.
type Options struct {
	// Metadata prefixes the table with "#" comment lines naming the report,
	// the active filters, warnings and totals.
	Metadata bool
	Filters  []string
	Warnings []string
}

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	line = strings.ReplaceAll(strings.TrimRight(line, "\r\n"), "\n", " ")
	_, err := s.buf.WriteString(line + "\r\n")
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteCSV writes t as UTF-8 CSV with CRLF line endings: one header row of
// canonical column names followed by one line per row.
func WriteCSV(w io.Writer, t Table, opts Options) error {
	streamer := newCSVStreamer(w)
	if opts.Metadata {
		if err := writeMetadata(streamer, t, opts); err != nil {
			return err
		}
	}
	if err := streamer.writeRow(t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := streamer.writeRow(row); err != nil {
			return err
		}
	}
	return streamer.Flush()
}

func writeMetadata(streamer *csvStreamer, t Table, opts Options) error {
	if err := streamer.writeComment(fmt.Sprintf("# Report: %s", t.Title)); err != nil {
		return err
	}
	filters := "none"
	if len(opts.Filters) > 0 {
		filters = strings.Join(opts.Filters, " | ")
	}
	if err := streamer.writeComment("# Filters: " + filters); err != nil {
		return err
	}
	if len(t.Totals) > 0 {
		parts := make([]string, len(t.Totals))
		for i, tot := range t.Totals {
			parts[i] = tot.Name + "=" + tot.Value
		}
		if err := streamer.writeComment("# Totals: " + strings.Join(parts, " | ")); err != nil {
			return err
		}
	}
	if len(opts.Warnings) == 0 {
		return streamer.writeComment("# Warnings: none")
	}
	joined := make([]string, len(opts.Warnings))
	for i, w := range opts.Warnings {
		joined[i] = strings.TrimSpace(w)
	}
	return streamer.writeComment("# Warnings: " + strings.Join(joined, "; "))
}
