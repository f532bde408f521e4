package web

import (
	"bytes"
	"net/http"
	"strconv"

	"cadetportal/internal/adapters/export"
	"cadetportal/internal/adapters/http/middleware"
	"cadetportal/internal/application/projections"
	"cadetportal/internal/metrics"
)

var exportContentTypes = map[string]string{
	export.FormatPDF:   "application/pdf",
	export.FormatExcel: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// handleExportPDF handles GET /api/reports/attendance.pdf?year=&division=
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	s.export(w, r, export.FormatPDF)
}

// handleExportExcel handles GET /api/reports/attendance.xlsx?year=&division=
func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	s.export(w, r, export.FormatExcel)
}

// export renders the cohort report fully in memory, so a failed read or
// render leaves the response untouched.
func (s *Server) export(w http.ResponseWriter, r *http.Request, format string) {
	q := r.URL.Query()
	ctx, cancel := dbContext(r)
	defer cancel()

	report, err := projections.GetCohortReport(ctx, q.Get("year"), q.Get("division"), projections.GetCohortReportDeps{
		Sessions: s.stores.Attendance,
		Marks:    s.stores.Attendance,
		Cadets:   s.stores.Accounts,
	})
	if err != nil {
		metrics.ObserveExport(format, err)
		respondErr(w, r, err)
		return
	}

	var buf bytes.Buffer
	if format == export.FormatPDF {
		err = export.WritePDF(&buf, report, s.now())
	} else {
		err = export.WriteExcel(&buf, report)
	}
	metrics.ObserveExport(format, err)
	if err != nil {
		internalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exportContentTypes[format])
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(report.Year, report.Division, format)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
