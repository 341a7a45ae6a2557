package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
)

// Renderer names which backend produced a PDF report
type Renderer string

const (
	RendererChrome Renderer = "chrome"
	RendererBasic  Renderer = "basic"
)

// WritePDF writes the report to pdfPath. Headless Chrome is tried first when
// rich is set; any failure there falls back to the basic gofpdf layout.
func (r *Report) WritePDF(ctx context.Context, pdfPath string, rich bool) (Renderer, error) {
	if r.Scan == nil {
		return "", fmt.Errorf("report has no scan result")
	}

	var chromeErr error
	if rich {
		if chromeErr = renderHTMLToPDF(ctx, r.BuildHTML(), pdfPath); chromeErr == nil {
			return RendererChrome, nil
		}
	}

	if err := r.writeBasicPDF(pdfPath); err != nil {
		if chromeErr != nil {
			return "", fmt.Errorf("%w (chrome rendering also failed: %v)", err, chromeErr)
		}
		return "", err
	}
	return RendererBasic, nil
}

// writeBasicPDF creates a PDF using gofpdf core fonts
func (r *Report) writeBasicPDF(pdfPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	scan := r.Scan
	addField(pdf, tr, "Source:", scan.Source)
	addField(pdf, tr, "From:", scan.Sender)
	addField(pdf, tr, "Subject:", scan.Subject)
	if scan.Date != nil {
		addField(pdf, tr, "Date:", scan.Date.Format(time.RFC1123Z))
	}
	addField(pdf, tr, "Size:", humanize.IBytes(uint64(scan.TotalSize)))
	addField(pdf, tr, "Complexity:", fmt.Sprintf("%.1f / 10", scan.ComplexityScore))
	addField(pdf, tr, "Estimate:", scan.EstimatedTime.Round(time.Second).String())

	pdf.Line(10, pdf.GetY()+5, 200, pdf.GetY()+5)
	pdf.SetY(pdf.GetY() + 10)

	if len(scan.Attachments) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 10, fmt.Sprintf("Attachments (%d):", len(scan.Attachments)))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		for _, a := range scan.Attachments {
			line := fmt.Sprintf("- %s (%s, %s, %s)", a.Filename, a.FileType, humanize.IBytes(uint64(a.Size)), a.Complexity)
			pdf.Cell(0, 5, tr(line))
			pdf.Ln(5)
			for _, w := range a.Warnings {
				pdf.SetTextColor(200, 0, 0)
				pdf.Cell(0, 5, tr("    "+w))
				pdf.SetTextColor(0, 0, 0)
				pdf.Ln(5)
			}
		}
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Recommendations (%d):", len(r.Recommendations)))
	pdf.Ln(8)
	for _, rec := range r.Recommendations {
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("[%s] %s", strings.ToUpper(rec.Level.String()), rec.Title)), "", "", false)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(rec.Description), "", "", false)
		pdf.MultiCell(0, 5, tr("Action: "+rec.Action), "", "", false)
		pdf.Ln(3)
	}

	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return fmt.Errorf("failed to write pdf file: %w", err)
	}
	return nil
}

// addField adds one label/value row to the PDF
func addField(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(30, 8, label)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, tr(value))
	pdf.Ln(8)
}
