package boundary

import (
	"math"
	"sort"
	"strings"

	"TLC/internal/calc"
)

// maxBins bounds the histogram so a tiny eps cannot exhaust memory.
const maxBins = 1 << 20

// Rule selects how a dominant-bin point is validated against its
// neighbour in the scan direction.
type Rule string

const (
	// Contiguous accepts the first point whose neighbour lies closer than
	// l_ol, skipping isolated points that merely cross the band.
	Contiguous Rule = "contiguous"
	// Separated accepts the first point whose neighbour is at least l_ol
	// away.
	Separated Rule = "separated"
)

func ParseRule(s string) (Rule, error) {
	switch Rule(strings.ToLower(strings.TrimSpace(s))) {
	case "", Contiguous:
		return Contiguous, nil
	case Separated:
		return Separated, nil
	}
	return "", calc.Errorf(calc.ErrInvalidParameter, "unknown scan rule %q", s)
}

type Params struct {
	Eps  float64 `json:"eps"`
	LOL  float64 `json:"l_ol"`
	Rule Rule    `json:"rule"`
}

func (p Params) Validate() error {
	if !positive(p.Eps) {
		return calc.Errorf(calc.ErrInvalidParameter, "eps=%g must be a finite number > 0", p.Eps)
	}
	if !positive(p.LOL) {
		return calc.Errorf(calc.ErrInvalidParameter, "l_ol=%g must be a finite number > 0", p.LOL)
	}
	if _, err := ParseRule(string(p.Rule)); err != nil {
		return err
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

type Result struct {
	LiveEnd *float64 `json:"live_end"`
	DeadEnd *float64 `json:"dead_end"`

	Edges          []float64    `json:"edges"`
	Counts         []int        `json:"counts"`
	DominantBin    int          `json:"dominant_bin"`
	DominantRange  [2]float64   `json:"dominant_range"`
	DominantPoints []calc.Point `json:"dominant_points"`

	Points       []calc.Point `json:"points"` // input, ordered by position
	LastPosition float64      `json:"last_position"`
}

// Detect bins the strain amplitudes of points with width eps, takes the
// most populated bin and scans its members for the Live End and Dead End.
// Dead End is measured back from the last position of the whole row.
func Detect(points []calc.Point, p Params) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	if len(points) == 0 {
		return Result{}, calc.Errorf(calc.ErrEmptyInput, "no strain points to analyse")
	}

	pts := append([]calc.Point(nil), points...)
	maxStrain := math.Inf(-1)
	for _, pt := range pts {
		if math.IsNaN(pt.Strain) || math.IsInf(pt.Strain, 0) || math.IsNaN(pt.Position) || math.IsInf(pt.Position, 0) {
			return Result{}, calc.Errorf(calc.ErrInvalidInput, "point (%g, %g) is not finite", pt.Strain, pt.Position)
		}
		maxStrain = math.Max(maxStrain, pt.Strain)
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Position < pts[j].Position })

	edges, err := binEdges(maxStrain, p.Eps)
	if err != nil {
		return Result{}, err
	}
	nbins := len(edges) - 1
	members := make([][]calc.Point, nbins)
	counts := make([]int, nbins)
	for _, pt := range pts {
		b := digitize(edges, pt.Strain)
		members[b] = append(members[b], pt)
		counts[b]++
	}

	dom := 0
	for i, c := range counts {
		if c > counts[dom] {
			dom = i
		}
	}

	res := Result{
		Edges:          edges,
		Counts:         counts,
		DominantBin:    dom,
		DominantRange:  [2]float64{edges[dom], edges[dom+1]},
		DominantPoints: members[dom],
		Points:         pts,
		LastPosition:   pts[len(pts)-1].Position,
	}
	if len(members[dom]) == 0 {
		return res, nil
	}
	res.LiveEnd = liveEnd(members[dom], p.LOL, p.Rule)
	if at := deadEndAt(members[dom], p.LOL, p.Rule); at != nil {
		d := res.LastPosition - *at
		res.DeadEnd = &d
	}
	return res, nil
}

// binEdges returns 0, eps, 2*eps, ... covering [0, max+eps), with at least
// two edges.
func binEdges(maxStrain, eps float64) ([]float64, error) {
	n := math.Ceil((maxStrain + eps) / eps)
	if n > maxBins+1 {
		return nil, calc.Errorf(calc.ErrInvalidParameter, "eps=%g yields more than %d bins for max strain %g", eps, maxBins, maxStrain)
	}
	if n < 2 {
		n = 2
	}
	edges := make([]float64, int(n))
	for i := range edges {
		edges[i] = float64(i) * eps
	}
	return edges, nil
}

// digitize returns the index of the last edge <= v, clipped to a valid bin.
func digitize(edges []float64, v float64) int {
	i := sort.Search(len(edges), func(k int) bool { return edges[k] > v }) - 1
	if i < 0 {
		return 0
	}
	if i > len(edges)-2 {
		return len(edges) - 2
	}
	return i
}

func liveEnd(pts []calc.Point, lol float64, rule Rule) *float64 {
	for i := range pts {
		last := i+1 == len(pts)
		separated := !last && pts[i].Position+lol <= pts[i+1].Position
		if accept(last, separated, rule) {
			v := pts[i].Position
			return &v
		}
	}
	return nil
}

func deadEndAt(pts []calc.Point, lol float64, rule Rule) *float64 {
	for i := len(pts) - 1; i >= 0; i-- {
		first := i == 0
		separated := !first && pts[i].Position >= pts[i-1].Position+lol
		if accept(first, separated, rule) {
			v := pts[i].Position
			return &v
		}
	}
	return nil
}

func accept(noNeighbour, separated bool, rule Rule) bool {
	if noNeighbour {
		return true
	}
	if rule == Separated {
		return separated
	}
	return !separated
}
