package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"cadetportal/internal/application/projections"
	"cadetportal/internal/domain/attendance"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

var excelHeader = []string{"#", "Name", "Reg No", "Platoon", "Status", "Timestamp"}

var excelWidths = []float64{5, 20, 12, 12, 12, 20}

var sheetNameReplacer = strings.NewReplacer(
	`\`, "-", "/", "-", ":", "-", "*", "-", "?", "-", `"`, "-", "<", "-", ">", "-", "|", "-",
)

// SheetName turns a session date into a legal, unused sheet name.
// POST: result is at most 31 characters and not present in used; used is updated
func SheetName(date string, used map[string]bool) string {
	base := truncate(sheetNameReplacer.Replace(date), maxSheetName)
	if base == "" {
		base = "Session"
	}
	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := " (" + strconv.Itoa(n) + ")"
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// WriteExcel writes one sheet per report section.
// PRE: report has at least one section
// POST: the workbook is written to w only after every sheet is built
func WriteExcel(w io.Writer, report projections.CohortReport) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	used := map[string]bool{}
	for i, section := range report.Sections {
		name := SheetName(section.Session.Date, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, section, bold); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, section projections.ReportSection, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &excelHeader); err != nil {
		return fmt.Errorf("header row: %w", err)
	}
	end, _ := excelize.CoordinatesToCellName(len(excelHeader), 1)
	if err := f.SetCellStyle(sheet, "A1", end, headerStyle); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, row := range section.Rows {
		timestamp := "-"
		if row.Timestamp != nil {
			timestamp = row.Timestamp.Format("2006-01-02 15:04:05")
		}
		values := []any{i + 1, row.Cadet.Name, row.Cadet.RegisterNumber, row.Cadet.Platoon, attendance.StatusLabel(row.Status), timestamp}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	for c, width := range excelWidths {
		col, _ := excelize.ColumnNumberToName(c + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	return nil
}
