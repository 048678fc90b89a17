package batch

import (
	"os"
	"path/filepath"
	"testing"

	"TLC/internal/calc"
	"TLC/internal/calc/boundary"
	"TLC/internal/calc/selector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row() selector.Row {
	return selector.Row{Index: 3, Time: 2.5, Points: []calc.Point{
		{Strain: 0.01, Position: 0},
		{Strain: 0.02, Position: 10},
		{Strain: 0.03, Position: 25},
	}}
}

func TestCalculateGrid(t *testing.T) {
	res, err := Calculate(row(), Input{Eps: []float64{0.01, 1}, LOL: []float64{12, 30}})
	require.NoError(t, err)
	require.Len(t, res.Records, 4)

	// eps=0.01 l_ol=12 is the worked example
	r := res.Records[0]
	assert.Equal(t, 2.5, r.Time)
	assert.Equal(t, 25.0, *r.LiveEnd)
	assert.Equal(t, 15.0, *r.DeadEnd)

	// eps=1 puts every point in one bin, l_ol=30 keeps them contiguous
	r = res.Records[3]
	assert.Equal(t, 1.0, r.Eps)
	assert.Equal(t, 30.0, r.LOL)
	assert.Equal(t, 0.0, *r.LiveEnd)
	assert.Equal(t, 0.0, *r.DeadEnd)

	assert.Equal(t, 4, res.Summary.LiveEnd.Count)
	assert.Equal(t, 25.0, res.Summary.LiveEnd.Max)
	assert.Equal(t, 0.0, res.Summary.LiveEnd.Min)
}

func TestCalculateValidatesEveryPair(t *testing.T) {
	_, err := Calculate(row(), Input{Eps: []float64{0.01, 0}, LOL: []float64{12}})
	require.ErrorIs(t, err, calc.ErrInvalidParameter)

	_, err = Calculate(row(), Input{Eps: []float64{0.01}})
	require.ErrorIs(t, err, calc.ErrInvalidParameter)

	_, err = Calculate(selector.Row{}, Input{Eps: []float64{0.01}, LOL: []float64{1}})
	require.ErrorIs(t, err, calc.ErrEmptyInput)
}

func TestSummarize(t *testing.T) {
	v := func(x float64) *float64 { return &x }
	in, err := Calculate(row(), Input{Eps: []float64{0.01}, LOL: []float64{12}})
	require.NoError(t, err)
	recs := in.Records
	recs = append(recs, recs[0], recs[0])
	recs[1].LiveEnd, recs[2].LiveEnd = v(15), nil

	s := Summarize(recs)
	assert.Equal(t, 2, s.LiveEnd.Count)
	assert.InDelta(t, 20.0, s.LiveEnd.Mean, 1e-12)
	assert.InDelta(t, 20.0, s.LiveEnd.Median, 1e-12)
	assert.InDelta(t, 5.0, s.LiveEnd.StdDev, 1e-12)
	assert.Equal(t, 3, s.DeadEnd.Count)

	assert.Equal(t, Stats{}, Summarize(nil).DeadEnd)
}

func TestLoadGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("eps: [0.02, 0.023]\nl_ol: [15, 17, 20]\nrule: separated\n"), 0o644))

	in, err := LoadGrid(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.02, 0.023}, in.Eps)
	assert.Equal(t, []float64{15, 17, 20}, in.LOL)
	assert.Equal(t, boundary.Separated, in.Rule)

	require.NoError(t, os.WriteFile(path, []byte("eps: [oops"), 0o644))
	_, err = LoadGrid(path)
	require.Error(t, err)
}
