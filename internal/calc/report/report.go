package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"TLC/internal/calc/ledger"

	"github.com/phpdave11/gofpdf"
)

type Input struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`

	Source    string          `json:"source"`
	Digest    string          `json:"digest"`
	SessionID string          `json:"session_id"`
	Rule      string          `json:"rule"`
	Time      *float64        `json:"time_s"`
	Records   []ledger.Record `json:"records"`

	// Charts embedded below the table when the files exist.
	IntegralPNG string `json:"integral_png"`
	TransferPNG string `json:"transfer_png"`

	Date time.Time `json:"date"`
}

var columns = []struct {
	title string
	width float64
}{
	{"Time [s]", 30},
	{"eps [‰]", 30},
	{"l_ol [mm]", 30},
	{"Live End [mm]", 40},
	{"Dead End [mm]", 40},
}

// Save writes the report for in to path.
func Save(path string, in Input) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = Generate(f, in)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Generate renders the transfer-length report as PDF.
func Generate(w io.Writer, in Input) error {
	if in.Title == "" {
		in.Title = "Transfer Length Report"
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(in.Title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		if value == "" {
			return
		}
		pdf.Cell(0, 6, tr(fmt.Sprintf("%s: %s", label, value)))
		pdf.Ln(6)
	}
	line("Project", in.Project)
	line("Author", in.Author)
	line("Date", in.Date.Format("2006-01-02"))
	line("Source", in.Source)
	line("BLAKE2b-256", in.Digest)
	line("Session", in.SessionID)
	line("Scan rule", in.Rule)
	if in.Time != nil {
		line("Selected time", fmt.Sprintf("%.3f s", *in.Time))
	}
	pdf.Ln(4)
	if in.Notes != "" {
		pdf.MultiCell(0, 6, tr(in.Notes), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 10)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	if len(in.Records) == 0 {
		pdf.CellFormat(170, 7, "no results", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for _, r := range in.Records {
		cells := []string{
			strconv.FormatFloat(r.Time, 'f', 3, 64),
			strconv.FormatFloat(r.Eps, 'g', -1, 64),
			strconv.FormatFloat(r.LOL, 'g', -1, 64),
			optional(r.LiveEnd),
			optional(r.DeadEnd),
		}
		for i, c := range columns {
			pdf.CellFormat(c.width, 7, cells[i], "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	for _, img := range []string{in.IntegralPNG, in.TransferPNG} {
		if img == "" {
			continue
		}
		if _, err := os.Stat(img); err != nil {
			continue
		}
		pdf.Ln(6)
		pdf.ImageOptions(img, 15, 0, 180, 0, true, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	return pdf.Output(w)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
