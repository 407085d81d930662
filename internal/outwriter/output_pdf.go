package outwriter

import (
	"io"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
	"github.com/jung-kurt/gofpdf"
)

// PDF page geometry in millimetres (A4 landscape).
const (
	pdfPageWidth  = 297.0
	pdfPageHeight = 210.0
	pdfMargin     = 10.0
	pdfLineHeight = 4.0
	pdfCellPad    = 1.5
)

// ReportFooter is printed at the bottom of every PDF page.
const ReportFooter = "Measurements, Instrumentation and Traceability Section, WIGOS Division, WMO Secretariat"

// rowColumnWeights are the relative widths of the nine report columns.
var rowColumnWeights = []float64{1, 1.5, 0.7, 1, 1, 1.2, 1.2, 1, 1}

type rgb struct{ r, g, b int }

var (
	pdfHeaderFill = rgb{128, 128, 128}
	pdfHeaderText = rgb{245, 245, 245}
	pdfBodyText   = rgb{0, 0, 0}
	pdfFailText   = rgb{200, 0, 0}
	pdfUnusedText = rgb{0, 0, 200}
)

// pdfReport lays out tables on an A4 landscape document.
type pdfReport struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newPDFReport() *pdfReport {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin+5)
	p := &pdfReport{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		p.setText(pdfBodyText)
		pdf.CellFormat(0, 6, p.tr(ReportFooter), "", 0, "C", false, 0, "")
	})
	return p
}

// writeReportPDF renders the title, the section summaries, the detailed
// results and the datasets table.
func writeReportPDF(w io.Writer, report *schema.Report, cfg *contract.Config) error {
	p := newPDFReport()
	p.pdf.AddPage()

	p.pdf.SetFont("Helvetica", "B", 14)
	p.pdf.MultiCell(0, 7, p.tr(ReportTitle(report.DataPath)), "", "C", false)
	p.pdf.Ln(3)

	header := summaryHeader(cfg)
	weights := make([]float64, len(header))
	weights[0] = 3
	for i := 1; i < len(weights); i++ {
		weights[i] = 1
	}
	p.heading("Section Summaries")
	p.table(header, summaryRecords(report, cfg), nil, columnWidths(weights))

	widths := columnWidths(rowColumnWeights)
	rows := FilterRows(report.Rows, cfg.UsedOnly)
	p.heading("Detailed Results")
	p.table(schema.RecordHeader, records(rows), outcomes(rows), widths)

	datasets := FilterRows(report.DatasetRows, cfg.UsedOnly)
	if len(datasets) > 0 {
		p.heading("Datasets")
		p.table(schema.RecordHeader, records(datasets), outcomes(datasets), widths)
	}

	if err := p.pdf.Error(); err != nil {
		return err
	}
	return p.pdf.Output(w)
}

func records(rows []schema.ResultRow) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}
	return out
}

func outcomes(rows []schema.ResultRow) []schema.Outcome {
	out := make([]schema.Outcome, len(rows))
	for i, row := range rows {
		out[i] = row.Outcome
	}
	return out
}

// columnWidths scales relative weights to the printable width.
func columnWidths(weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	usable := pdfPageWidth - 2*pdfMargin
	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = usable * w / total
	}
	return widths
}

func (p *pdfReport) heading(text string) {
	p.pdf.Ln(2)
	p.pdf.SetFont("Helvetica", "B", 11)
	p.setText(pdfBodyText)
	p.pdf.CellFormat(0, 7, p.tr(text), "", 1, "L", false, 0, "")
}

// table draws a header row and the body rows, repeating the header on every
// new page. Outcomes color the body text when given.
func (p *pdfReport) table(header []string, body [][]string, rowOutcomes []schema.Outcome, widths []float64) {
	drawHeader := func() {
		p.pdf.SetFont("Helvetica", "B", 8)
		p.row(header, widths, true, pdfHeaderText, nil)
		p.pdf.SetFont("Helvetica", "", 8)
	}
	drawHeader()

	for i, rec := range body {
		color := pdfBodyText
		if rowOutcomes != nil {
			switch rowOutcomes[i] {
			case schema.FailMandatory, schema.FailOptional:
				color = pdfFailText
			case schema.NotUsed:
				color = pdfUnusedText
			}
		}
		p.row(rec, widths, false, color, drawHeader)
	}
}

// row draws one row of wrapped cells, starting a new page first when the
// row does not fit.
func (p *pdfReport) row(cells []string, widths []float64, header bool, text rgb, onNewPage func()) {
	lines := make([][][]byte, len(cells))
	maxLines := 1
	for i, cell := range cells {
		lines[i] = p.pdf.SplitLines([]byte(p.tr(cell)), widths[i]-2*pdfCellPad)
		if n := len(lines[i]); n > maxLines {
			maxLines = n
		}
	}
	height := float64(maxLines)*pdfLineHeight + pdfCellPad

	if p.pdf.GetY()+height > pdfPageHeight-pdfMargin-5 {
		p.pdf.AddPage()
		if onNewPage != nil {
			onNewPage()
		}
	}

	style := "D"
	if header {
		style = "FD"
		p.pdf.SetFillColor(pdfHeaderFill.r, pdfHeaderFill.g, pdfHeaderFill.b)
	}
	p.setText(text)

	x, y := p.pdf.GetXY()
	for i := range cells {
		p.pdf.Rect(x, y, widths[i], height, style)
		for j, line := range lines[i] {
			p.pdf.SetXY(x+pdfCellPad, y+pdfCellPad/2+float64(j)*pdfLineHeight)
			p.pdf.CellFormat(widths[i]-2*pdfCellPad, pdfLineHeight, string(line), "", 0, "L", false, 0, "")
		}
		x += widths[i]
	}
	p.pdf.SetXY(pdfMargin, y+height)
}

func (p *pdfReport) setText(c rgb) {
	p.pdf.SetTextColor(c.r, c.g, c.b)
}
