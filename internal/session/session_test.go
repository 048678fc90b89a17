package session

import (
	"encoding/hex"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"TLC/internal/calc"
	"TLC/internal/calc/batch"
	"TLC/internal/calc/boundary"
	"TLC/internal/calc/integral"
	"TLC/internal/calc/selector"
	"TLC/internal/importer"
	"TLC/internal/logging"
	"TLC/internal/table"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestMain(m *testing.M) {
	logging.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type fakePlotter struct {
	curves    int
	transfers []boundary.Params
	err       error
}

func (p *fakePlotter) IntegralCurve(integral.Curve) error { p.curves++; return p.err }

func (p *fakePlotter) TransferLength(_ selector.Row, _ boundary.Result, params boundary.Params) error {
	p.transfers = append(p.transfers, params)
	return p.err
}

func newSession(t *testing.T) (*Session, *fakePlotter) {
	t.Helper()
	nan := math.NaN()
	tb, err := table.FromValues([]string{"0", "10", "25", "t"}, [][]float64{
		{nan, nan, nan, 0},
		{0.01, 0.02, 0.03, 1},
		{0.005, 0.01, 0.01, 2},
	})
	require.NoError(t, err)
	s := New(tb, "memory")
	p := &fakePlotter{}
	s.Plotter = p
	return s, p
}

func TestSelectAndRecompute(t *testing.T) {
	s, p := newSession(t)
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)

	row, err := s.SelectTime(selector.IntegralPeak, "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, row.Time)
	assert.Equal(t, 1, p.curves)

	rec, err := s.Recompute(0.01, 12)
	require.NoError(t, err)
	assert.Equal(t, 25.0, *rec.LiveEnd)
	assert.Equal(t, 15.0, *rec.DeadEnd)
	require.Len(t, p.transfers, 1)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.DominantBin)
	params, ok := s.Params()
	require.True(t, ok)
	assert.Equal(t, boundary.Params{Eps: 0.01, LOL: 12, Rule: boundary.Contiguous}, params)

	// same key replaces, curve is not recomputed
	_, err = s.Recompute(0.01, 12)
	require.NoError(t, err)
	_, err = s.SelectTime(selector.IntegralPeak, "")
	require.NoError(t, err)
	assert.Len(t, s.Records(), 1)
	assert.Equal(t, 1, p.curves)
}

func TestInvalidParametersLeaveStateAlone(t *testing.T) {
	s, p := newSession(t)
	_, err := s.SelectTime(selector.Manual, "1")
	require.NoError(t, err)
	_, err = s.Recompute(0.01, 12)
	require.NoError(t, err)
	before, _ := s.Last()

	for _, pair := range [][2]float64{{0, 17}, {0.023, -5}, {math.NaN(), 1}} {
		_, err = s.Recompute(pair[0], pair[1])
		require.ErrorIs(t, err, calc.ErrInvalidParameter)
	}

	after, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Len(t, s.Records(), 1)
	assert.Len(t, p.transfers, 1)
	params, _ := s.Params()
	assert.Equal(t, 0.01, params.Eps)
}

func TestFailedRecomputeKeepsPreviousResult(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.SelectTime(selector.FirstRow, "")
	require.NoError(t, err)
	_, err = s.Recompute(0.01, 12)
	require.ErrorIs(t, err, calc.ErrEmptyInput, "first row has no readings")
	_, ok := s.Last()
	assert.False(t, ok)
	assert.Empty(t, s.Records())
}

func TestRecomputeNeedsSelection(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Recompute(0.01, 12)
	require.ErrorIs(t, err, calc.ErrInvalidInput)
}

func TestManualSelectionErrorKeepsRow(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.SelectTime(selector.Manual, "2")
	require.NoError(t, err)
	_, err = s.SelectTime(selector.Manual, "abc")
	require.ErrorIs(t, err, calc.ErrInvalidInput)
	row, ok := s.Row()
	require.True(t, ok)
	assert.Equal(t, 2.0, row.Time)
}

func TestPlotterErrorIsNotFatal(t *testing.T) {
	s, p := newSession(t)
	p.err = errors.New("disk full")
	_, err := s.SelectTime(selector.IntegralPeak, "")
	require.NoError(t, err)
	_, err = s.Recompute(0.01, 12)
	require.NoError(t, err)
	assert.Len(t, s.Records(), 1)
}

func TestSweepAndReset(t *testing.T) {
	s, _ := newSession(t)
	_, err := s.Sweep(batch.Input{Eps: []float64{0.01}, LOL: []float64{12}})
	require.ErrorIs(t, err, calc.ErrInvalidInput)

	_, err = s.SelectTime(selector.Manual, "1")
	require.NoError(t, err)
	res, err := s.Sweep(batch.Input{Eps: []float64{0.01, 0.02}, LOL: []float64{12, 20}})
	require.NoError(t, err)
	assert.Len(t, res.Records, 4)
	assert.Len(t, s.Records(), 4)

	_, err = s.Sweep(batch.Input{Eps: []float64{0.01, -1}, LOL: []float64{12}})
	require.ErrorIs(t, err, calc.ErrInvalidParameter)
	assert.Len(t, s.Records(), 4)

	s.Reset()
	assert.Empty(t, s.Records())
	_, ok := s.Row()
	assert.False(t, ok)
	_, ok = s.Last()
	assert.False(t, ok)
	_, err = s.Recompute(0.01, 12)
	require.ErrorIs(t, err, calc.ErrInvalidInput)
}

func TestOpenDigest(t *testing.T) {
	data := []byte("0,10,t\n0.1,0.2,1\n")
	path := filepath.Join(t.TempDir(), "run.csv")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := Open(path, importer.Options{})
	require.NoError(t, err)
	sum := blake2b.Sum256(data)
	assert.Equal(t, hex.EncodeToString(sum[:]), s.Digest)
	assert.Equal(t, "run.csv", s.Source)
	assert.Equal(t, 1, s.Table.Len())

	_, err = Open(filepath.Join(t.TempDir(), "missing.csv"), importer.Options{})
	require.Error(t, err)
}
