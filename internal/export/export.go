package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"TLC/internal/calc/ledger"

	"github.com/xuri/excelize/v2"
)

// Header is the column order of every exported results table.
var Header = []string{"Time [s]", "Δε_c [‰]", "l_ol [mm]", "Live End [mm]", "Dead End [mm]"}

const resultsSheet = "Results"

// Meta is written to an "Info" sheet when any field is set.
type Meta struct {
	Source    string
	Digest    string
	SessionID string
	Rule      string
}

func (m Meta) empty() bool { return m == Meta{} }

// Save writes records to path as .csv or, by default, .xlsx.
func Save(path string, records []ledger.Record, meta Meta) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		err = WriteCSV(f, records)
	} else {
		err = WriteXLSX(f, records, meta)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCSV writes a UTF-8 BOM so spreadsheet programs keep the ‰ sign.
func WriteCSV(w io.Writer, records []ledger.Record) error {
	if _, err := io.WriteString(w, "\xEF\xBB\xBF"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{
			formatFloat(r.Time),
			formatFloat(r.Eps),
			formatFloat(r.LOL),
			formatOptional(r.LiveEnd),
			formatOptional(r.DeadEnd),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteXLSX(w io.Writer, records []ledger.Record, meta Meta) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(resultsSheet)
	if err != nil {
		return err
	}
	head := make([]interface{}, len(Header))
	for i, h := range Header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}
	for i, r := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []interface{}{r.Time, r.Eps, r.LOL, optional(r.LiveEnd), optional(r.DeadEnd)}); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	if !meta.empty() {
		if _, err := f.NewSheet("Info"); err != nil {
			return err
		}
		info := [][2]string{
			{"Source", meta.Source},
			{"BLAKE2b-256", meta.Digest},
			{"Session", meta.SessionID},
			{"Scan rule", meta.Rule},
		}
		for i, kv := range info {
			if err := f.SetSheetRow("Info", fmt.Sprintf("A%d", i+1), &[]interface{}{kv[0], kv[1]}); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

// ReadXLSX reads a results workbook written by WriteXLSX.
func ReadXLSX(r io.Reader) ([]ledger.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(resultsSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	var out []ledger.Record
	for n, row := range rows {
		if n == 0 {
			continue
		}
		vals := make([]*float64, len(Header))
		for i := range vals {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
				if err != nil {
					return nil, fmt.Errorf("row %d column %q: %w", n+1, Header[i], err)
				}
				vals[i] = &v
			}
		}
		if vals[0] == nil || vals[1] == nil || vals[2] == nil {
			return nil, fmt.Errorf("row %d: time, eps and l_ol are required", n+1)
		}
		out = append(out, ledger.Record{Time: *vals[0], Eps: *vals[1], LOL: *vals[2], LiveEnd: vals[3], DeadEnd: vals[4]})
	}
	return out, nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
