package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"TLC/internal/calc/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	live, at := 412.3, 12.5
	var buf bytes.Buffer
	err := Generate(&buf, Input{
		Project:   "Beam B3",
		Source:    "b3.xlsx",
		Digest:    "00ff",
		SessionID: "4f1c",
		Rule:      "contiguous",
		Time:      &at,
		Records: []ledger.Record{
			{Time: at, Eps: 0.023, LOL: 17, LiveEnd: &live},
		},
		IntegralPNG: filepath.Join(t.TempDir(), "not-rendered.png"),
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestSaveEmptyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "report.pdf")
	require.NoError(t, Save(path, Input{}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
