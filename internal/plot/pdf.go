package plot

import (
	"bytes"

	"github.com/phpdave11/gofpdf"
)

// WritePDF places a PNG chart on a landscape A4 page under a title.
func WritePDF(path, title string, img []byte) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, pdf.UnicodeTranslatorFromDescriptor("")(title))
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(img))
	pdf.ImageOptions("chart", 10, 24, 277, 0, false, opts, 0, "")
	return pdf.OutputFileAndClose(path)
}
