package batch

import (
	"fmt"
	"os"

	"TLC/internal/calc"
	"TLC/internal/calc/boundary"
	"TLC/internal/calc/ledger"
	"TLC/internal/calc/selector"

	"github.com/montanaflynn/stats"
	"gopkg.in/yaml.v3"
)

// Input is a parameter grid: every eps is combined with every l_ol.
type Input struct {
	Eps  []float64     `json:"eps" yaml:"eps"`
	LOL  []float64     `json:"l_ol" yaml:"l_ol"`
	Rule boundary.Rule `json:"rule" yaml:"rule"`
}

type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type Summary struct {
	LiveEnd Stats `json:"live_end"`
	DeadEnd Stats `json:"dead_end"`
}

type Result struct {
	Records []ledger.Record `json:"records"`
	Summary Summary         `json:"summary"`
}

// LoadGrid reads a YAML grid file:
//
//	eps: [0.02, 0.023, 0.025]
//	l_ol: [15, 17, 20]
//	rule: contiguous
func LoadGrid(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Input{}, err
	}
	var in Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return Input{}, fmt.Errorf("grid %s: %w", path, err)
	}
	return in, nil
}

// Calculate runs the boundary detector on row for every grid pair. All
// pairs are validated before any detection runs.
func Calculate(row selector.Row, in Input) (Result, error) {
	if len(in.Eps) == 0 || len(in.LOL) == 0 {
		return Result{}, calc.Errorf(calc.ErrInvalidParameter, "grid needs at least one eps and one l_ol")
	}
	params := make([]boundary.Params, 0, len(in.Eps)*len(in.LOL))
	for _, eps := range in.Eps {
		for _, lol := range in.LOL {
			p := boundary.Params{Eps: eps, LOL: lol, Rule: in.Rule}
			if err := p.Validate(); err != nil {
				return Result{}, err
			}
			params = append(params, p)
		}
	}

	led := ledger.New()
	for _, p := range params {
		res, err := boundary.Detect(row.Points, p)
		if err != nil {
			return Result{}, err
		}
		led.Upsert(ledger.Record{Time: row.Time, Eps: p.Eps, LOL: p.LOL, LiveEnd: res.LiveEnd, DeadEnd: res.DeadEnd})
	}
	out := Result{Records: led.All()}
	out.Summary = Summarize(out.Records)
	return out, nil
}

// Summarize describes the defined Live End and Dead End values of records.
func Summarize(records []ledger.Record) Summary {
	var live, dead []float64
	for _, r := range records {
		if r.LiveEnd != nil {
			live = append(live, *r.LiveEnd)
		}
		if r.DeadEnd != nil {
			dead = append(dead, *r.DeadEnd)
		}
	}
	return Summary{LiveEnd: describe(live), DeadEnd: describe(dead)}
}

func describe(data []float64) Stats {
	if len(data) == 0 {
		return Stats{}
	}
	s := Stats{Count: len(data)}
	s.Mean, _ = stats.Mean(data)
	s.Median, _ = stats.Median(data)
	s.StdDev, _ = stats.StandardDeviation(data)
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	return s
}
