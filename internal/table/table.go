// Package table holds the typed strain table: every column is classified
// once at ingestion (position channel, ignored, time) so downstream code
// never looks at header text again.
package table

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"TLC/internal/calc"
)

// Channel is a strain column whose header parsed as a position.
type Channel struct {
	Header   string
	Position float64
	Column   int // index into the row values, time column excluded
}

// Table is a rectangular strain-vs-position-vs-time dataset. The last
// column of the source is time; all others are strain readings.
// Missing cells are stored as NaN.
type Table struct {
	Headers    []string
	TimeHeader string
	Channels   []Channel
	Ignored    []string

	times []float64
	cells [][]float64
}

// Missing reports whether v marks an absent reading.
func Missing(v float64) bool { return math.IsNaN(v) }

// ParsePosition parses a header as a finite position label.
func ParsePosition(header string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

func classify(headers []string) (*Table, error) {
	if len(headers) == 0 {
		return nil, calc.Errorf(calc.ErrInvalidInput, "missing header row")
	}
	t := &Table{
		Headers:    append([]string(nil), headers...),
		TimeHeader: strings.TrimSpace(headers[len(headers)-1]),
	}
	for i, h := range headers[:len(headers)-1] {
		pos, ok := ParsePosition(h)
		if !ok {
			t.Ignored = append(t.Ignored, h)
			continue
		}
		t.Channels = append(t.Channels, Channel{Header: strings.TrimSpace(h), Position: pos, Column: i})
	}
	if len(t.Channels) == 0 {
		return nil, calc.Errorf(calc.ErrNoPositionColumns, "none of %d strain headers is numeric", len(headers)-1)
	}
	return t, nil
}

// New builds a table from raw spreadsheet text: headers plus data rows.
// Blank rows are skipped; short rows are padded with missing cells.
// Strain cells that do not parse as numbers are treated as missing, time
// cells must be finite numbers.
func New(headers []string, rows [][]string) (*Table, error) {
	t, err := classify(headers)
	if err != nil {
		return nil, err
	}
	width := len(headers) - 1
	for n, raw := range rows {
		if blank(raw) {
			continue
		}
		vals := make([]float64, width)
		for i := range vals {
			vals[i] = math.NaN()
			if i < len(raw) {
				vals[i], _ = parseCell(raw[i])
			}
		}
		tv := math.NaN()
		if width < len(raw) {
			tv, _ = parseCell(raw[width])
		}
		if math.IsNaN(tv) || math.IsInf(tv, 0) {
			// n+2: one for the header row, one for 1-based spreadsheet rows
			return nil, calc.Errorf(calc.ErrInvalidInput, "row %d: time %q is not a finite number", n+2, cellAt(raw, width))
		}
		t.times = append(t.times, tv)
		t.cells = append(t.cells, vals)
	}
	if len(t.times) == 0 {
		return nil, calc.Errorf(calc.ErrEmptyDataset, "no data rows")
	}
	return t, nil
}

// FromValues builds a table from numeric rows where the last value of each
// row is the time. Use NaN for missing strain readings.
func FromValues(headers []string, rows [][]float64) (*Table, error) {
	t, err := classify(headers)
	if err != nil {
		return nil, err
	}
	width := len(headers) - 1
	for n, row := range rows {
		if len(row) != len(headers) {
			return nil, calc.Errorf(calc.ErrInvalidInput, "row %d has %d values, want %d", n, len(row), len(headers))
		}
		tv := row[width]
		if math.IsNaN(tv) || math.IsInf(tv, 0) {
			return nil, calc.Errorf(calc.ErrInvalidInput, "row %d: time is not a finite number", n)
		}
		t.times = append(t.times, tv)
		t.cells = append(t.cells, append([]float64(nil), row[:width]...))
	}
	if len(t.times) == 0 {
		return nil, calc.Errorf(calc.ErrEmptyDataset, "no data rows")
	}
	return t, nil
}

func blank(raw []string) bool {
	for _, c := range raw {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellAt(raw []string, i int) string {
	if i < len(raw) {
		return raw[i]
	}
	return ""
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.times) }

// Time returns the time value of row i.
func (t *Table) Time(i int) float64 { return t.times[i] }

// Value returns the strain reading of row i at channel c (NaN if missing).
func (t *Table) Value(i int, c Channel) float64 { return t.cells[i][c.Column] }

// AllMissing reports whether every position channel of row i is missing.
func (t *Table) AllMissing(i int) bool {
	for _, c := range t.Channels {
		if !Missing(t.cells[i][c.Column]) {
			return false
		}
	}
	return true
}

// SortedChannels returns the position channels ordered by position,
// keeping column order for equal positions.
func (t *Table) SortedChannels() []Channel {
	out := append([]Channel(nil), t.Channels...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
