// Package export renders cohort attendance reports as PDF and Excel files.
package export

import (
	"fmt"
	"strings"
)

// Format names used in filenames and metrics.
const (
	FormatPDF   = "pdf"
	FormatExcel = "xlsx"
)

// Filename returns the attachment name for a cohort export.
func Filename(year, division, ext string) string {
	return fmt.Sprintf("%s_%s_attendance.%s", safeName(year), safeName(division), ext)
}

// safeName keeps header-unsafe characters out of Content-Disposition.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '"', '\\', '/', '\r', '\n', ';':
			return '-'
		case ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}
