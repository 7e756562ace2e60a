package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSVStripsBOMAndPadsShortRows(t *testing.T) {
	input := "\ufeffid, fullname ,accttype\r\n1,Cash,Bank\r\n2,Receivables\r\n\r\n"
	tbl, err := ReadCSV("account", strings.NewReader(input), EncodingUTF8)
	require.NoError(t, err)
	require.Equal(t, []string{"id", "fullname", "accttype"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, "Receivables", tbl.Cell(1, tbl.Index("fullname")))
	require.Equal(t, "", tbl.Cell(1, tbl.Index("accttype")))
	require.Equal(t, -1, tbl.Index("missing"))
}

func TestReadCSVWindows1252(t *testing.T) {
	raw := []byte("id,name\n1,Caf\xe9 Ltd\n")
	tbl, err := ReadCSV("subsidiary", bytes.NewReader(raw), EncodingWindows1252)
	require.NoError(t, err)
	require.Equal(t, "Café Ltd", tbl.Cell(0, 1))
}

func TestReadCSVEmptyInput(t *testing.T) {
	_, err := ReadCSV("account", strings.NewReader(""), EncodingUTF8)
	require.ErrorIs(t, err, ErrNoHeader)
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("CP1252")
	require.NoError(t, err)
	require.Equal(t, EncodingWindows1252, enc)

	enc, err = ParseEncoding("")
	require.NoError(t, err)
	require.Equal(t, EncodingUTF8, enc)

	_, err = ParseEncoding("ebcdic")
	require.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestReadXLSXFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"transaction", "account", "amount"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"10", "1", "125.50"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"10", "2", "-125.50"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	tbl, err := Read("transactionaccountingline", "tal.xlsx", buf, EncodingUTF8, "")
	require.NoError(t, err)
	require.Equal(t, []string{"transaction", "account", "amount"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, "-125.50", tbl.Cell(1, 2))
}

func TestReadRejectsUnknownExtension(t *testing.T) {
	_, err := Read("account", "account.parquet", strings.NewReader(""), EncodingUTF8, "")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
