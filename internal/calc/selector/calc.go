package selector

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"TLC/internal/calc"
	"TLC/internal/calc/integral"
	"TLC/internal/table"
)

type Strategy string

const (
	IntegralPeak Strategy = "integral"
	FirstRow     Strategy = "first"
	Manual       Strategy = "manual"
)

// ParseStrategy accepts the CLI spellings of a strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integral", "integral-peak", "peak":
		return IntegralPeak, nil
	case "first", "first-row":
		return FirstRow, nil
	case "manual":
		return Manual, nil
	}
	return "", calc.Errorf(calc.ErrInvalidInput, "unknown time strategy %q", s)
}

// Row is the selected analysis instant: its time and the present strain
// readings ordered by position.
type Row struct {
	Index  int          `json:"index"`
	Time   float64      `json:"time"`
	Points []calc.Point `json:"points"`
}

// Positions returns the positions of the row's points.
func (r Row) Positions() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Position
	}
	return out
}

// Select resolves strategy to a single row of t. manual is only read for
// the Manual strategy.
func Select(t *table.Table, strategy Strategy, manual string, progress integral.Observer) (Row, error) {
	if t == nil || t.Len() == 0 {
		return Row{}, calc.Errorf(calc.ErrEmptyDataset, "table has no rows")
	}

	var idx int
	switch strategy {
	case IntegralPeak:
		curve, err := integral.Calculate(t, progress)
		if err != nil {
			return Row{}, err
		}
		return AtPeak(t, curve)
	case FirstRow:
		idx = 0
	case Manual:
		v, err := strconv.ParseFloat(strings.TrimSpace(manual), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Row{}, calc.Errorf(calc.ErrInvalidInput, "manual time %q is not a finite number", manual)
		}
		idx = nearest(t, nil, v)
	default:
		return Row{}, calc.Errorf(calc.ErrInvalidInput, "unknown time strategy %q", strategy)
	}
	return Build(t, idx)
}

// AtPeak returns the retained row of curve closest to its peak time.
func AtPeak(t *table.Table, curve integral.Curve) (Row, error) {
	if len(curve.Rows) == 0 {
		return Row{}, calc.Errorf(calc.ErrEmptyDataset, "integral curve has no samples")
	}
	return Build(t, nearest(t, curve.Rows, curve.PeakTime))
}

// nearest returns the row whose time is closest to target, first on ties.
// When candidates is nil every row is considered.
func nearest(t *table.Table, candidates []int, target float64) int {
	if candidates == nil {
		candidates = make([]int, t.Len())
		for i := range candidates {
			candidates[i] = i
		}
	}
	best, bestDiff := candidates[0], math.Inf(1)
	for _, i := range candidates {
		if d := math.Abs(t.Time(i) - target); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// Build extracts row i of t as an analysis row.
func Build(t *table.Table, i int) (Row, error) {
	if i < 0 || i >= t.Len() {
		panic(fmt.Sprintf("selector: row %d out of range [0,%d)", i, t.Len()))
	}
	if len(t.Channels) == 0 {
		return Row{}, calc.Errorf(calc.ErrNoPositionColumns, "row %d", i)
	}
	row := Row{Index: i, Time: t.Time(i)}
	for _, c := range t.Channels {
		v := t.Value(i, c)
		if table.Missing(v) {
			continue
		}
		row.Points = append(row.Points, calc.Point{Strain: v, Position: c.Position})
	}
	sort.SliceStable(row.Points, func(a, b int) bool { return row.Points[a].Position < row.Points[b].Position })
	return row, nil
}
