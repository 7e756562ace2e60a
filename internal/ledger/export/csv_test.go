package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCSVStreamerFlushInterval(t *testing.T) {
	var buf bytes.Buffer
	streamer := newCSVStreamer(&buf)
	for i := 0; i < csvFlushEvery; i++ {
		if err := streamer.writeRow([]string{"row"}); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if streamer.pendingLines != 0 {
		t.Fatalf("expected pending lines reset to 0, got %d", streamer.pendingLines)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected buffered rows to reach the writer")
	}
	if err := streamer.writeRow([]string{"next"}); err != nil {
		t.Fatalf("write row: %v", err)
	}
	if streamer.pendingLines != 1 {
		t.Fatalf("expected pending lines 1, got %d", streamer.pendingLines)
	}
	if err := streamer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func sampleTable() Table {
	return Table{
		Title:   "Trial Balance",
		Headers: []string{"subsidiary_name", "account_name", "account_type", "total_amount"},
		Rows: [][]string{
			{"HQ", "Cash, petty", "Bank", FormatDecimal(decimal.RequireFromString("12.5"))},
			{"HQ", `Owner "A"`, "Equity", FormatDecimal(decimal.RequireFromString("-12.5"))},
		},
		Totals: []Total{{Name: "total_debits", Value: "12.50"}, {Name: "total_credits", Value: "12.50"}},
	}
}

func TestWriteCSVPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable(), Options{}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "subsidiary_name,account_name,account_type,total_amount\r\n" +
		"HQ,\"Cash, petty\",Bank,12.50\r\n" +
		"HQ,\"Owner \"\"A\"\"\",Equity,-12.50\r\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected csv:\n%q\nwant\n%q", got, want)
	}
}

func TestWriteCSVMetadata(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{
		Metadata: true,
		Filters:  []string{"Subsidiaries: 1,2", "Posting only"},
		Warnings: []string{" 3 accounting lines have missing account references "},
	}
	if err := WriteCSV(&buf, sampleTable(), opts); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	if len(lines) != 7 {
		t.Fatalf("expected 7 lines, got %d: %q", len(lines), lines)
	}
	if want := "# Report: Trial Balance"; lines[0] != want {
		t.Fatalf("unexpected metadata line 1: %q", lines[0])
	}
	if want := "# Filters: Subsidiaries: 1,2 | Posting only"; lines[1] != want {
		t.Fatalf("unexpected metadata line 2: %q", lines[1])
	}
	if want := "# Totals: total_debits=12.50 | total_credits=12.50"; lines[2] != want {
		t.Fatalf("unexpected metadata line 3: %q", lines[2])
	}
	if want := "# Warnings: 3 accounting lines have missing account references"; lines[3] != want {
		t.Fatalf("unexpected metadata line 4: %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], "subsidiary_name,") {
		t.Fatalf("expected header after metadata, got %q", lines[4])
	}
}

func TestWriteCSVMetadataDefaults(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Title: "Balance Sheet", Headers: []string{"a"}}
	if err := WriteCSV(&buf, tbl, Options{Metadata: true}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "# Report: Balance Sheet\r\n# Filters: none\r\n# Warnings: none\r\na\r\n"
	if buf.String() != want {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestRecordsAndFormatting(t *testing.T) {
	recs := sampleTable().Records()
	if len(recs) != 2 || recs[0]["account_name"] != "Cash, petty" {
		t.Fatalf("unexpected records: %+v", recs)
	}
	if FormatInt(nil) != "" || FormatString(nil) != "" || FormatDate(nil) != "" {
		t.Fatalf("expected empty cells for nulls")
	}
	if got := FormatDecimal(decimal.RequireFromString("1.005").Round(2)); got != "1.01" {
		t.Fatalf("unexpected rounding %q", got)
	}
}
