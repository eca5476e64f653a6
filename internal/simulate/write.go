package simulate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet XLSX output is written to.
const SheetName = "Data"

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row, withDerived bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(withDerived)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Cells(withDerived)); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// WriteXLSX writes rows to a workbook at path with a single sheet.
func WriteXLSX(path string, rows []Row, withDerived bool) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	write := func(line int, cells []string) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		values := make([]any, len(cells))
		for i, c := range cells {
			values[i] = c
		}
		return f.SetSheetRow(SheetName, cell, &values)
	}
	if err := write(1, Header(withDerived)); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	for i, r := range rows {
		if err := write(i+2, r.Cells(withDerived)); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

// WriteFile picks the format from the extension of path: .xlsx writes a
// workbook, anything else CSV.
func WriteFile(path string, rows []Row, withDerived bool) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, rows, withDerived)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := WriteCSV(f, rows, withDerived); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
