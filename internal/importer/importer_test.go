package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TLC/internal/calc"
	"TLC/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestMain(m *testing.M) {
	logging.SetOutput(bytes.NewBuffer(nil))
	os.Exit(m.Run())
}

const sampleCSV = "\xEF\xBB\xBF0,10,label,20,Time\n0.1,0.2,a,0.3,0.5\n,,,,\n0.4,,b,0.6,1.0\n"

func TestReadCSV(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader(sampleCSV), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.Len(t, tb.Channels, 3)
	assert.Equal(t, 0.0, tb.Channels[0].Position, "BOM stripped from first header")
	assert.Equal(t, []string{"label"}, tb.Ignored)
	assert.Equal(t, 1.0, tb.Time(1))
}

func TestReadCSVSemicolon(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader("0;5;t\n1;2;3\n"), ';')
	require.NoError(t, err)
	assert.Equal(t, 3.0, tb.Time(0))
}

func TestReadCSVHeaderOnly(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("0,10,t\n"), 0)
	require.ErrorIs(t, err, calc.ErrEmptyDataset)
}

func writeXLSX(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strands.xlsx")
	writeXLSX(t, path, "Sheet1", [][]interface{}{
		{0, 12.5, "comment", "Time [s]"},
		{0.1, 0.2, "x", 0},
		{0.3, "", "y", 0.25},
	})

	tb, err := Load(path, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, tb.Len())
	require.Len(t, tb.Channels, 2)
	assert.Equal(t, 12.5, tb.Channels[1].Position)
	assert.Equal(t, 0.25, tb.Time(1))
	assert.InDelta(t, 0.2, tb.Value(0, tb.Channels[1]), 1e-12)
}

func TestLoadXLSXNamedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.xlsx")
	writeXLSX(t, path, "Run2", [][]interface{}{
		{5, "t"},
		{1, 7},
	})

	tb, err := Load(path, Options{Sheet: "Run2"})
	require.NoError(t, err)
	assert.Equal(t, 7.0, tb.Time(0))

	_, err = Load(path, Options{Sheet: "missing"})
	require.ErrorIs(t, err, calc.ErrInvalidInput)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(txt, []byte("0,t\n1,2\n"), 0o644))
	_, err := Load(txt, Options{})
	require.ErrorIs(t, err, calc.ErrInvalidInput)

	_, err = Load(filepath.Join(dir, "nope.csv"), Options{})
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.xlsx")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
	_, err = Load(bad, Options{})
	require.ErrorIs(t, err, calc.ErrInvalidInput)

	noPos := filepath.Join(dir, "nopos.csv")
	require.NoError(t, os.WriteFile(noPos, []byte("a,b,t\n1,2,3\n"), 0o644))
	_, err = Load(noPos, Options{})
	require.ErrorIs(t, err, calc.ErrNoPositionColumns)
}
