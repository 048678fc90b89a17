package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"TLC/internal/calc"
	"TLC/internal/logging"
	"TLC/internal/table"

	"github.com/xuri/excelize/v2"
)

type Options struct {
	Sheet string // xlsx sheet name, first sheet when empty
	Comma rune   // csv delimiter, ',' when zero
}

// Load reads a strain table from an .xlsx or .csv file.
func Load(path string, opts Options) (*table.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var t *table.Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		t, err = ReadXLSX(file, opts.Sheet)
	case ".csv":
		t, err = ReadCSV(file, opts.Comma)
	default:
		return nil, calc.Errorf(calc.ErrInvalidInput, "unsupported file extension %q (want .xlsx or .csv)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	logging.Infof("loaded %s: %d rows, %d position channels, %d ignored columns",
		filepath.Base(path), t.Len(), len(t.Channels), len(t.Ignored))
	if len(t.Ignored) > 0 {
		logging.Debugf("ignored non-numeric headers: %q", t.Ignored)
	}
	return t, nil
}

// ReadXLSX reads the first row of sheet as headers and the rest as data.
func ReadXLSX(r io.Reader, sheet string) (*table.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, calc.Errorf(calc.ErrInvalidInput, "invalid spreadsheet: %v", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, calc.Errorf(calc.ErrInvalidInput, "sheet %q: %v", sheet, err)
	}
	if len(rows) < 2 {
		return nil, calc.Errorf(calc.ErrEmptyDataset, "sheet %q has no data rows", sheet)
	}
	return table.New(rows[0], rows[1:])
}

// ReadCSV reads comma separated values with a header row.
func ReadCSV(r io.Reader, comma rune) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if comma != 0 {
		cr.Comma = comma
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, calc.Errorf(calc.ErrInvalidInput, "invalid csv: %v", err)
	}
	if len(rows) < 2 {
		return nil, calc.Errorf(calc.ErrEmptyDataset, "csv has no data rows")
	}
	if len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\xEF\xBB\xBF")
	}
	return table.New(rows[0], rows[1:])
}
