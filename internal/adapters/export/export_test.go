package export_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"cadetportal/internal/adapters/export"
	"cadetportal/internal/application/projections"
	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/cadet"
)

func sampleReport() projections.CohortReport {
	ts := time.Date(2024, 1, 15, 9, 5, 0, 0, time.UTC)
	rows := []projections.RosterRow{
		{Cadet: cadet.Cadet{ID: "c1", Name: "Asha", RegisterNumber: "R001", Platoon: "Alpha"}, Status: attendance.StatusPresent, Timestamp: &ts},
		{Cadet: cadet.Cadet{ID: "c2", Name: "Ravi", RegisterNumber: "R002"}, Status: attendance.StatusAbsent},
	}
	return projections.CohortReport{
		Year:     "2nd Year",
		Division: "SD",
		Sections: []projections.ReportSection{
			{Session: attendance.Session{ID: "s2", Title: "Parade", Date: "2024-01-15"}, Rows: rows},
			{Session: attendance.Session{ID: "s1", Title: "Drill", Date: "2024-01-15", Location: "Ground"}, Rows: rows},
		},
	}
}

// TestSheetName verifies sanitizing, truncation and de-duplication.
func TestSheetName(t *testing.T) {
	used := map[string]bool{}
	if got := export.SheetName("2024/01/15", used); got != "2024-01-15" {
		t.Errorf("expected sanitized name, got %q", got)
	}
	if got := export.SheetName("2024/01/15", used); got != "2024-01-15 (2)" {
		t.Errorf("expected de-duplicated name, got %q", got)
	}
	long := export.SheetName(strings.Repeat("x", 40), used)
	if len(long) != 31 {
		t.Errorf("expected 31 characters, got %d", len(long))
	}
	again := export.SheetName(strings.Repeat("x", 40), used)
	if len(again) > 31 || !strings.HasSuffix(again, " (2)") {
		t.Errorf("expected truncated suffixed name, got %q", again)
	}
}

// TestFilename verifies the attachment name.
func TestFilename(t *testing.T) {
	if got := export.Filename("2nd Year", "SD", export.FormatPDF); got != "2nd_Year_SD_attendance.pdf" {
		t.Errorf("unexpected filename %q", got)
	}
}

// TestWriteExcel verifies sheets, headers and rows by reading the workbook back.
func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteExcel(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "2024-01-15" || sheets[1] != "2024-01-15 (2)" {
		t.Fatalf("unexpected sheets %v", sheets)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], "|") != "#|Name|Reg No|Platoon|Status|Timestamp" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][1] != "Asha" || rows[1][4] != "Present" || rows[1][5] != "2024-01-15 09:05:00" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[2][4] != "Absent" || rows[2][5] != "-" {
		t.Errorf("unexpected second row %v", rows[2])
	}
}

// TestWritePDF verifies a PDF document is produced.
func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WritePDF(&buf, sampleReport(), time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("expected PDF header, got %q", buf.Bytes()[:min(8, buf.Len())])
	}
}
