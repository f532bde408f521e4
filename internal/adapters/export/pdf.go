package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"cadetportal/internal/application/projections"
	"cadetportal/internal/domain/attendance"
)

type pdfColumn struct {
	title string
	width float64
}

var pdfColumns = []pdfColumn{
	{"#", 10}, {"Name", 70}, {"Reg No", 35}, {"Platoon", 40}, {"Status", 35},
}

const pdfRowHeight = 7

// WritePDF renders the report as an A4 portrait document.
// PRE: report has at least one section
// POST: nothing is written to w if rendering fails
func WritePDF(w io.Writer, report projections.CohortReport, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Attendance Report - %s (%s)", report.Year, report.Division)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on: "+generatedAt.Format("2006-01-02"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, section := range report.Sections {
		s := section.Session
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, tr(s.Date+" - "+s.Title), "", 1, "L", false, 0, "")
		location := s.Location
		if location == "" {
			location = "N/A"
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr("Location: "+location), "", 1, "L", false, 0, "")

		pdfTableHeader(pdf)
		pdf.SetFont("Helvetica", "", 10)
		for i, row := range section.Rows {
			cells := []string{strconv.Itoa(i + 1), row.Cadet.Name, row.Cadet.RegisterNumber, row.Cadet.Platoon, attendance.StatusLabel(row.Status)}
			for c, col := range pdfColumns {
				pdf.CellFormat(col.width, pdfRowHeight, tr(cells[c]), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func pdfTableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, pdfRowHeight, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
}
