package label

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Renderer produces the printable batch label: a 4×6 cm card with the QR
// image on top and the human-readable summary lines below it.
type Renderer struct{}

// NewRenderer constructs a label renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out the QR image (PNG bytes from the codec) and the text lines
// onto a single-page PDF sized for the workshop label printer.
func (r *Renderer) Render(qrPNG []byte, lines []string) ([]byte, error) {
	if len(qrPNG) == 0 {
		return nil, fmt.Errorf("label requires qr image bytes")
	}

	const (
		labelWidth  = 40.0 // mm
		labelHeight = 60.0
		margin      = 2.0
	)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: labelWidth, Ht: labelHeight},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	qrSide := labelWidth * 0.8
	pdf.ImageOptions("qr", (labelWidth-qrSide)/2, margin, qrSide, qrSide, false, opts, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	y := margin + qrSide + 2
	for _, line := range lines {
		pdf.Text(margin, y, line)
		y += 3.2
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render label: %w", err)
	}
	return buf.Bytes(), nil
}
