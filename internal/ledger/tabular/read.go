package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the byte encoding of a CSV export.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
)

var (
	// ErrNoHeader is returned when an export has no header row.
	ErrNoHeader = errors.New("tabular: missing header row")
	// ErrUnsupportedEncoding is returned for encodings other than utf-8 and windows-1252.
	ErrUnsupportedEncoding = errors.New("tabular: unsupported encoding")
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("tabular: unsupported file format")
)

// ParseEncoding maps a user supplied encoding label to an Encoding.
func ParseEncoding(label string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "windows-1252", "cp1252", "latin1", "iso-8859-1":
		return EncodingWindows1252, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, label)
	}
}

func decoder(r io.Reader, enc Encoding) (io.Reader, error) {
	switch enc {
	case "", EncodingUTF8:
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case EncodingWindows1252:
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, enc)
	}
}

// ReadCSV reads a delimited export. A leading BOM is stripped for UTF-8 input.
func ReadCSV(name string, r io.Reader, enc Encoding) (*Table, error) {
	decoded, err := decoder(r, enc)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, name)
	}
	return newTable(name, records), nil
}

// ReadXLSX reads a workbook sheet. An empty sheet name selects the first sheet.
func ReadXLSX(name string, r io.Reader, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("tabular: open workbook %s: %w", name, err)
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("tabular: read sheet %s/%s: %w", name, sheet, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHeader, name)
	}
	return newTable(name, records), nil
}

// Read dispatches on the file extension of filename.
func Read(name, filename string, r io.Reader, enc Encoding, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", "":
		return ReadCSV(name, r, enc)
	case ".xlsx", ".xlsm":
		return ReadXLSX(name, r, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// ReadFile opens path and reads it as the table called name.
func ReadFile(name, path string, enc Encoding, sheet string) (*Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(name, path, fh, enc, sheet)
}
