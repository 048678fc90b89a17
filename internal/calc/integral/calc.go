package integral

import (
	"TLC/internal/calc"
	"TLC/internal/table"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Observer receives per-row progress while the curve is computed. It runs
// synchronously inside the scan and must return promptly.
type Observer func(done, total int)

type Curve struct {
	Times     []float64 `json:"times"`
	Integrals []float64 `json:"integrals"`
	Rows      []int     `json:"rows"` // source row of each sample
	PeakIndex int       `json:"peak_index"`
	PeakTime  float64   `json:"peak_time"`
}

// Calculate integrates strain over position for every row that has at
// least one reading. Missing readings count as 0.0.
func Calculate(t *table.Table, progress Observer) (Curve, error) {
	if t == nil || t.Len() == 0 {
		return Curve{}, calc.Errorf(calc.ErrEmptyDataset, "table has no rows")
	}

	var rows []int
	for i := 0; i < t.Len(); i++ {
		if !t.AllMissing(i) {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return Curve{}, calc.Errorf(calc.ErrEmptyDataset, "all %d rows have no strain readings", t.Len())
	}

	chans := t.SortedChannels()
	xs := make([]float64, len(chans))
	for i, c := range chans {
		xs[i] = c.Position
	}
	ys := make([]float64, len(chans))

	out := Curve{
		Times:     make([]float64, 0, len(rows)),
		Integrals: make([]float64, 0, len(rows)),
		Rows:      rows,
	}
	for n, r := range rows {
		for i, c := range chans {
			v := t.Value(r, c)
			if table.Missing(v) {
				v = 0
			}
			ys[i] = v
		}
		out.Times = append(out.Times, t.Time(r))
		out.Integrals = append(out.Integrals, Trapezoid(xs, ys))
		if progress != nil {
			progress(n+1, len(rows))
		}
	}

	// MaxIdx returns the first index on ties.
	out.PeakIndex = floats.MaxIdx(out.Integrals)
	out.PeakTime = out.Times[out.PeakIndex]
	return out, nil
}

// PeakTime returns the time of the maximum strain integral.
func PeakTime(t *table.Table, progress Observer) (float64, error) {
	c, err := Calculate(t, progress)
	if err != nil {
		return 0, err
	}
	return c.PeakTime, nil
}

// Trapezoid integrates ys over ascending xs. Fewer than two samples span
// no length and integrate to zero.
func Trapezoid(xs, ys []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return integrate.Trapezoidal(xs, ys)
}
