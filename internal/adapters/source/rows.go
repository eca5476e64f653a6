package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readRows returns the raw cell grid of the source, header first.
// An absent, unreadable or empty source is reported as ErrMissingSource.
func (l *Loader) readRows() ([][]string, error) {
	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingSource, l.path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrMissingSource, l.path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrMissingSource, l.path)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".xlsx", ".xlsm":
		rows, err = l.readXLSX()
	case ".csv", ".txt", ".tsv", "":
		rows, err = l.readCSV()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(l.path))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", ErrMissingSource, l.path)
	}
	return rows, nil
}

func (l *Loader) readCSV() ([][]string, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingSource, l.path, err)
	}

	enc, err := htmlindex.Get(l.encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding %q: %v", ErrDecode, l.encoding, err)
	}
	// BOMOverride honors a leading byte order mark and falls back to enc otherwise.
	r := transform.NewReader(bytes.NewReader(raw), unicode.BOMOverride(enc.NewDecoder()))

	cr := csv.NewReader(r)
	cr.Comma = l.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, l.path, err)
	}
	return rows, nil
}

func (l *Loader) readXLSX() ([][]string, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, l.path, err)
	}
	defer func() { _ = f.Close() }()

	sheet := l.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrMissingSource, l.path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %s sheet %q: %v", ErrDecode, l.path, sheet, err)
	}
	return rows, nil
}
