// Package session holds the state of one interactive analysis: the loaded
// table, the selected instant, the current thresholds and the ledger of
// everything computed so far.
package session

import (
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"TLC/internal/calc"
	"TLC/internal/calc/batch"
	"TLC/internal/calc/boundary"
	"TLC/internal/calc/integral"
	"TLC/internal/calc/ledger"
	"TLC/internal/calc/selector"
	"TLC/internal/importer"
	"TLC/internal/logging"
	"TLC/internal/table"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Plotter receives every derived series worth drawing. A failing plotter
// is logged and never undoes a computation.
type Plotter interface {
	IntegralCurve(integral.Curve) error
	TransferLength(selector.Row, boundary.Result, boundary.Params) error
}

type Session struct {
	ID     string
	Source string
	Digest string // BLAKE2b-256 of the source file, hex
	Table  *table.Table

	Rule     boundary.Rule
	Plotter  Plotter
	Progress integral.Observer

	curve  *integral.Curve
	row    *selector.Row
	params *boundary.Params
	last   *boundary.Result
	ledger *ledger.Ledger
}

// New starts a session on an already loaded table.
func New(t *table.Table, source string) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Source: source,
		Table:  t,
		Rule:   boundary.Contiguous,
		ledger: ledger.New(),
	}
}

// Open loads path and fingerprints its bytes.
func Open(path string, opts importer.Options) (*Session, error) {
	t, err := importer.Load(path, opts)
	if err != nil {
		return nil, err
	}
	digest, err := Digest(path)
	if err != nil {
		return nil, err
	}
	s := New(t, filepath.Base(path))
	s.Digest = digest
	logging.Debugf("session %s: %s blake2b-256 %s", s.ID, s.Source, digest)
	return s, nil
}

// Digest returns the hex BLAKE2b-256 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Curve computes the integral curve once per session and plots it.
func (s *Session) Curve() (integral.Curve, error) {
	if s.curve != nil {
		return *s.curve, nil
	}
	c, err := integral.Calculate(s.Table, s.Progress)
	if err != nil {
		return integral.Curve{}, err
	}
	s.curve = &c
	logging.Infof("integral peak at t = %.3f s (row %d)", c.PeakTime, c.Rows[c.PeakIndex])
	if s.Plotter != nil {
		if err := s.Plotter.IntegralCurve(c); err != nil {
			logging.Warnf("integral plot: %v", err)
		}
	}
	return c, nil
}

// SelectTime picks the analysis instant. On failure the previous
// selection is kept. A new selection drops the last result but not the
// ledger.
func (s *Session) SelectTime(strategy selector.Strategy, manual string) (selector.Row, error) {
	var (
		row selector.Row
		err error
	)
	if strategy == selector.IntegralPeak {
		var c integral.Curve
		if c, err = s.Curve(); err != nil {
			return selector.Row{}, err
		}
		row, err = selector.AtPeak(s.Table, c)
	} else {
		row, err = selector.Select(s.Table, strategy, manual, s.Progress)
	}
	if err != nil {
		return selector.Row{}, err
	}
	s.row = &row
	s.last = nil
	logging.Infof("selected t = %.3f s (row %d, %d points)", row.Time, row.Index, len(row.Points))
	if len(row.Points) == 0 {
		logging.Warnf("row %d has no strain readings", row.Index)
	}
	return row, nil
}

// Recompute runs the detector on the selected row with new thresholds.
// Invalid parameters or a detector failure leave the session unchanged.
func (s *Session) Recompute(eps, lol float64) (ledger.Record, error) {
	if s.row == nil {
		return ledger.Record{}, calc.Errorf(calc.ErrInvalidInput, "no analysis time selected")
	}
	p := boundary.Params{Eps: eps, LOL: lol, Rule: s.Rule}
	if err := p.Validate(); err != nil {
		return ledger.Record{}, err
	}
	res, err := boundary.Detect(s.row.Points, p)
	if err != nil {
		return ledger.Record{}, err
	}

	s.params = &p
	s.last = &res
	rec := ledger.Record{Time: s.row.Time, Eps: eps, LOL: lol, LiveEnd: res.LiveEnd, DeadEnd: res.DeadEnd}
	if s.ledger.Upsert(rec) {
		logging.Debugf("replaced result for t=%g eps=%g l_ol=%g", rec.Time, eps, lol)
	}
	if res.LiveEnd == nil {
		logging.Warnf("dominant bin %d is empty, ends undefined", res.DominantBin)
	}
	if s.Plotter != nil {
		if err := s.Plotter.TransferLength(*s.row, res, p); err != nil {
			logging.Warnf("transfer length plot: %v", err)
		}
	}
	return rec, nil
}

// Sweep runs a parameter grid on the selected row and adds every record
// to the ledger. Nothing is added if any grid pair is invalid.
func (s *Session) Sweep(in batch.Input) (batch.Result, error) {
	if s.row == nil {
		return batch.Result{}, calc.Errorf(calc.ErrInvalidInput, "no analysis time selected")
	}
	if in.Rule == "" {
		in.Rule = s.Rule
	}
	out, err := batch.Calculate(*s.row, in)
	if err != nil {
		return batch.Result{}, err
	}
	for _, r := range out.Records {
		s.ledger.Upsert(r)
	}
	return out, nil
}

// Reset starts over on the same table: selection, parameters, last result
// and ledger are cleared.
func (s *Session) Reset() {
	s.row = nil
	s.params = nil
	s.last = nil
	s.ledger.Clear()
	logging.Infof("session %s reset", s.ID)
}

func (s *Session) Records() []ledger.Record { return s.ledger.All() }

func (s *Session) Row() (selector.Row, bool) {
	if s.row == nil {
		return selector.Row{}, false
	}
	return *s.row, true
}

func (s *Session) Params() (boundary.Params, bool) {
	if s.params == nil {
		return boundary.Params{}, false
	}
	return *s.params, true
}

func (s *Session) Last() (boundary.Result, bool) {
	if s.last == nil {
		return boundary.Result{}, false
	}
	return *s.last, true
}
