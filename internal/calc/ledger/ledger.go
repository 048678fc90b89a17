package ledger

import "math"

const (
	TimeTolerance  = 1e-6
	ParamTolerance = 1e-9
)

// Record is one analysed (time, eps, l_ol) combination.
type Record struct {
	Time    float64  `json:"time_s"`
	Eps     float64  `json:"eps"`
	LOL     float64  `json:"l_ol_mm"`
	LiveEnd *float64 `json:"live_end_mm"`
	DeadEnd *float64 `json:"dead_end_mm"`
}

// Same reports whether r and o share the ledger key.
func (r Record) Same(o Record) bool {
	return math.Abs(r.Time-o.Time) < TimeTolerance &&
		math.Abs(r.Eps-o.Eps) < ParamTolerance &&
		math.Abs(r.LOL-o.LOL) < ParamTolerance
}

// Ledger keeps records in insertion order, one per key.
type Ledger struct {
	records []Record
}

func New() *Ledger { return &Ledger{} }

// Upsert replaces the record with the same key in place, or appends.
// It reports whether an existing record was replaced.
func (l *Ledger) Upsert(r Record) bool {
	for i := range l.records {
		if l.records[i].Same(r) {
			l.records[i] = r
			return true
		}
	}
	l.records = append(l.records, r)
	return false
}

// All returns a copy of the records in ledger order.
func (l *Ledger) All() []Record {
	return append([]Record(nil), l.records...)
}

func (l *Ledger) Len() int { return len(l.records) }

func (l *Ledger) Clear() { l.records = nil }
