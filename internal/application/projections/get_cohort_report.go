package projections

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	storage "cadetportal/internal/adapters/storage/attendance"
	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/cadet"
)

// maxConcurrentMarkReads bounds parallel mark fetches for one report.
const maxConcurrentMarkReads = 4

// SessionLister lists sessions by cohort.
type SessionLister interface {
	List(ctx context.Context, filter storage.ListFilter) ([]attendance.Session, error)
}

// ReportSection is one session's table in a cohort report.
type ReportSection struct {
	Session attendance.Session
	Rows    []RosterRow
	Counts  Counts
}

// CohortReport is the data behind a PDF or Excel attendance export.
type CohortReport struct {
	Year     string
	Division string
	Sections []ReportSection
}

// GetCohortReportDeps holds dependencies for GetCohortReport.
type GetCohortReportDeps struct {
	Sessions SessionLister
	Marks    MarkReader
	Cadets   CadetLister
}

// GetCohortReport collects every session of a cohort with its roster rows.
// PRE: year and division are both set
// POST: Sections are newest date first; any failed read aborts the whole report
func GetCohortReport(ctx context.Context, year, division string, deps GetCohortReportDeps) (CohortReport, error) {
	year, division = strings.TrimSpace(year), strings.TrimSpace(division)
	if year == "" || division == "" {
		return CohortReport{}, attendance.ErrCohortRequired
	}

	sessions, err := deps.Sessions.List(ctx, storage.ListFilter{Year: year, Division: division})
	if err != nil {
		return CohortReport{}, err
	}
	if len(sessions) == 0 {
		return CohortReport{}, attendance.ErrNoSessionsInScope
	}

	accounts, err := deps.Cadets.ListCadets(ctx)
	if err != nil {
		return CohortReport{}, err
	}
	eligible := cadet.Cohort{Year: year, Division: division}.Filter(cadet.Roster(accounts))
	cadet.SortByRegisterNumber(eligible)

	sections := make([]ReportSection, len(sessions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentMarkReads)
	for i, s := range sessions {
		g.Go(func() error {
			marks, err := deps.Marks.ListMarks(gctx, s.ID)
			if err != nil {
				return err
			}
			section := ReportSection{Session: s, Rows: buildRows(eligible, marks)}
			for _, row := range section.Rows {
				section.Counts.add(row.Status)
			}
			sections[i] = section
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CohortReport{}, err
	}

	return CohortReport{Year: year, Division: division, Sections: sections}, nil
}
