package projections

import (
	"context"
	"time"

	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/cadet"
)

// RosterRow is one eligible cadet and their current status in a session.
type RosterRow struct {
	Cadet     cadet.Cadet `json:"cadet"`
	Status    string      `json:"status"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
}

// Counts tallies statuses.
type Counts struct {
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
}

func (c *Counts) add(status string) {
	switch status {
	case attendance.StatusPresent:
		c.Present++
	case attendance.StatusLate:
		c.Late++
	default:
		c.Absent++
	}
}

// SessionRoster is the marking view of one session.
type SessionRoster struct {
	Session attendance.Session `json:"session"`
	Rows    []RosterRow        `json:"rows"`
	Counts  Counts             `json:"counts"`
}

// GetSessionRosterDeps holds dependencies for GetSessionRoster.
type GetSessionRosterDeps struct {
	Sessions SessionReader
	Marks    MarkReader
	Cadets   CadetLister
}

// GetSessionRoster joins the eligible roster with the session's marks.
// Eligibility is computed now, so cadets who joined the cohort later appear as absent.
// PRE: sessionID is non-empty
// POST: Rows are sorted by register number; a cadet without a mark reads as absent
func GetSessionRoster(ctx context.Context, sessionID string, deps GetSessionRosterDeps) (SessionRoster, error) {
	session, err := deps.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return SessionRoster{}, err
	}
	marks, err := deps.Marks.ListMarks(ctx, sessionID)
	if err != nil {
		return SessionRoster{}, err
	}
	accounts, err := deps.Cadets.ListCadets(ctx)
	if err != nil {
		return SessionRoster{}, err
	}

	eligible := session.Cohort().Filter(cadet.Roster(accounts))
	cadet.SortByRegisterNumber(eligible)

	result := SessionRoster{Session: session, Rows: buildRows(eligible, marks)}
	for _, row := range result.Rows {
		result.Counts.add(row.Status)
	}
	return result, nil
}

func buildRows(eligible []cadet.Cadet, marks []attendance.Mark) []RosterRow {
	byCadet := make(map[string]attendance.Mark, len(marks))
	for _, m := range marks {
		byCadet[m.CadetID] = m
	}
	rows := make([]RosterRow, 0, len(eligible))
	for _, c := range eligible {
		row := RosterRow{Cadet: c, Status: attendance.StatusAbsent}
		if m, ok := byCadet[c.ID]; ok {
			row.Status = m.Status
			ts := m.Timestamp
			row.Timestamp = &ts
		}
		rows = append(rows, row)
	}
	return rows
}
