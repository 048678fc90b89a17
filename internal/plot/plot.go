// Package plot renders the derived analysis series as PNG charts (and a
// PDF wrapper of each) with go-chart.
package plot

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"TLC/internal/calc"
	"TLC/internal/calc/boundary"
	"TLC/internal/calc/integral"
	"TLC/internal/calc/selector"
	"TLC/internal/logging"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	markerBlue = drawing.ColorFromHex("13338E")
	binBlue    = drawing.ColorFromHex("ADD8E6")
	binGray    = drawing.ColorFromHex("9E9E9E")
)

const (
	IntegralBase = "integral_plot"
	transferTail = "_transferlength"
)

// Renderer writes charts into Dir. Base names the transfer-length files,
// usually after the input file.
type Renderer struct {
	Dir    string
	Base   string
	Width  int
	Height int

	IntegralPNG string // last written files
	TransferPNG string
}

func NewRenderer(dir, base string) *Renderer {
	return &Renderer{Dir: dir, Base: base, Width: 1000, Height: 600}
}

// IntegralCurve draws the time-integral curve with the peak marked.
func (r *Renderer) IntegralCurve(c integral.Curve) error {
	img, err := IntegralChart(c, r.Width, r.Height)
	if err != nil {
		return err
	}
	path, err := r.write(IntegralBase, img, "Strain integral")
	if err != nil {
		return err
	}
	r.IntegralPNG = path
	return nil
}

// TransferLength draws the histogram beside the strain profile.
func (r *Renderer) TransferLength(row selector.Row, res boundary.Result, p boundary.Params) error {
	img, err := TransferChart(row.Time, res, p, r.Width, r.Height)
	if err != nil {
		return err
	}
	path, err := r.write(r.Base+transferTail, img, fmt.Sprintf("Transfer length, t = %.3f s", row.Time))
	if err != nil {
		return err
	}
	r.TransferPNG = path
	return nil
}

func (r *Renderer) write(base string, img []byte, title string) (string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}
	pngPath := filepath.Join(r.Dir, base+".png")
	if err := os.WriteFile(pngPath, img, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", pngPath, err)
	}
	pdfPath := filepath.Join(r.Dir, base+".pdf")
	if err := WritePDF(pdfPath, title, img); err != nil {
		return "", fmt.Errorf("write %s: %w", pdfPath, err)
	}
	logging.Debugf("wrote %s and %s", pngPath, pdfPath)
	return pngPath, nil
}

// IntegralChart renders the integral curve as PNG bytes.
func IntegralChart(c integral.Curve, width, height int) ([]byte, error) {
	if len(c.Times) == 0 {
		return nil, calc.Errorf(calc.ErrEmptyDataset, "no integral samples to plot")
	}
	xr := padded(c.Times)
	yr := padded(c.Integrals)
	ch := chart.Chart{
		Title:      fmt.Sprintf("Strain integral, peak at t = %.3f s", c.PeakTime),
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "t [s]", Range: xr},
		YAxis:      chart.YAxis{Name: "∫ε dx [-‰]", Range: yr},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Integral",
				XValues: c.Times,
				YValues: c.Integrals,
				Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1.5},
			},
			vline("Peak", c.PeakTime, yr, drawing.ColorRed, 4),
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render integral chart: %w", err)
	}
	return buf.Bytes(), nil
}

// TransferChart renders the histogram (left quarter) and the spatial
// strain profile with the boundary markers (right three quarters).
func TransferChart(t float64, res boundary.Result, p boundary.Params, width, height int) ([]byte, error) {
	if len(res.Points) == 0 || len(res.Counts) == 0 {
		return nil, calc.Errorf(calc.ErrEmptyInput, "no points to plot")
	}
	histW := width / 4
	hist, err := histogramImage(res, histW, height)
	if err != nil {
		return nil, err
	}
	prof, err := profileImage(t, res, p, width-histW, height)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, histW, height), hist, hist.Bounds().Min, draw.Over)
	draw.Draw(canvas, image.Rect(histW, 0, width, height), prof, prof.Bounds().Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}

func histogramImage(res boundary.Result, width, height int) (image.Image, error) {
	bars := make([]chart.Value, len(res.Counts))
	step := len(bars)/8 + 1
	maxCount := 0
	for i, n := range res.Counts {
		col := binGray
		if i == res.DominantBin {
			col = binBlue
		}
		bars[i] = chart.Value{
			Value: float64(n),
			Style: chart.Style{FillColor: col, StrokeColor: drawing.ColorBlack, StrokeWidth: 1},
		}
		if i%step == 0 || i == res.DominantBin {
			bars[i].Label = fmt.Sprintf("%.3f", (res.Edges[i]+res.Edges[i+1])/2)
		}
		if n > maxCount {
			maxCount = n
		}
	}
	bc := chart.BarChart{
		Title:      "n per ε_c bin",
		Width:      width,
		Height:     height,
		BarWidth:   barWidth(width, len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 8, Right: 8, Bottom: 8}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) * 1.1}},
		Bars:       bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render histogram: %w", err)
	}
	return png.Decode(&buf)
}

func profileImage(t float64, res boundary.Result, p boundary.Params, width, height int) (image.Image, error) {
	xs := make([]float64, len(res.Points))
	ys := make([]float64, len(res.Points))
	for i, pt := range res.Points {
		xs[i] = pt.Position
		ys[i] = pt.Strain
	}
	xr := padded(xs)
	yr := padded(append(ys, res.DominantRange[0], res.DominantRange[1]))

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "DFOS",
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 1.5},
		},
		hline("", res.DominantRange[0], xr, binBlue),
		hline("Dominant bin", res.DominantRange[1], xr, binBlue),
	}
	if res.LiveEnd != nil {
		series = append(series, vline(fmt.Sprintf("Live End %.1f mm", *res.LiveEnd), *res.LiveEnd, yr, markerBlue, 1.5))
	}
	if res.DeadEnd != nil {
		series = append(series, vline(fmt.Sprintf("Dead End %.1f mm", *res.DeadEnd), res.LastPosition-*res.DeadEnd, yr, markerBlue, 1.5))
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("t = %.3f s, l_ol = %.1f mm, Δε_c = %.3f ‰", t, p.LOL, p.Eps),
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "x [mm]", Range: xr},
		YAxis:      chart.YAxis{Name: "ε_c [-‰]", Range: yr},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render profile: %w", err)
	}
	return png.Decode(&buf)
}

func vline(name string, x float64, yr *chart.ContinuousRange, col drawing.Color, w float64) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{x, x},
		YValues: []float64{yr.Min, yr.Max},
		Style:   chart.Style{StrokeColor: col, StrokeWidth: w, StrokeDashArray: []float64{6, 4}},
	}
}

func hline(name string, y float64, xr *chart.ContinuousRange, col drawing.Color) chart.ContinuousSeries {
	return chart.ContinuousSeries{
		Name:    name,
		XValues: []float64{xr.Min, xr.Max},
		YValues: []float64{y, y},
		Style:   chart.Style{StrokeColor: col, StrokeWidth: 2},
	}
}

// padded returns a range around vs that is never zero-width.
func padded(vs []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func barWidth(width, n int) int {
	w := (width - 40) / (n + 1)
	if w < 2 {
		return 2
	}
	if w > 40 {
		return 40
	}
	return w
}
