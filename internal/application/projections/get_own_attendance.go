package projections

import (
	"context"
	"math"
	"time"

	storage "cadetportal/internal/adapters/storage/attendance"
	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/cadet"
)

// CadetMarkReader loads every mark for one cadet.
type CadetMarkReader interface {
	ListMarksForCadet(ctx context.Context, cadetID string) ([]attendance.Mark, error)
}

// OwnAttendanceEntry is one session in a cadet's history.
type OwnAttendanceEntry struct {
	SessionID string     `json:"sessionId"`
	Title     string     `json:"title"`
	Date      string     `json:"date"`
	Type      string     `json:"type"`
	Status    string     `json:"status"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// OwnAttendance is a cadet's attendance history with totals.
// Rate is the rounded percentage of entries marked present or late.
type OwnAttendance struct {
	Entries []OwnAttendanceEntry `json:"entries"`
	Counts  Counts               `json:"counts"`
	Rate    int                  `json:"rate"`
}

// GetOwnAttendanceDeps holds dependencies for GetOwnAttendance.
type GetOwnAttendanceDeps struct {
	Sessions SessionLister
	Marks    CadetMarkReader
}

// GetOwnAttendance lists the sessions a cadet is eligible for, newest first.
// An empty sessionType includes every type.
// PRE: acct is the signed-in account
// POST: Sessions without a mark count as absent; Rate is 0 with no entries
func GetOwnAttendance(ctx context.Context, acct account.Account, sessionType string, deps GetOwnAttendanceDeps) (OwnAttendance, error) {
	me := cadet.FromAccount(acct)
	sessions, err := deps.Sessions.List(ctx, storage.ListFilter{Year: me.Year})
	if err != nil {
		return OwnAttendance{}, err
	}
	marks, err := deps.Marks.ListMarksForCadet(ctx, acct.ID)
	if err != nil {
		return OwnAttendance{}, err
	}
	bySession := make(map[string]attendance.Mark, len(marks))
	for _, m := range marks {
		bySession[m.SessionID] = m
	}

	result := OwnAttendance{Entries: []OwnAttendanceEntry{}}
	for _, s := range sessions {
		if !s.Cohort().Eligible(me) || (sessionType != "" && s.Type != sessionType) {
			continue
		}
		entry := OwnAttendanceEntry{SessionID: s.ID, Title: s.Title, Date: s.Date, Type: s.Type, Status: attendance.StatusAbsent}
		if m, ok := bySession[s.ID]; ok {
			entry.Status = m.Status
			ts := m.Timestamp
			entry.Timestamp = &ts
		}
		result.Counts.add(entry.Status)
		result.Entries = append(result.Entries, entry)
	}
	if total := len(result.Entries); total > 0 {
		attended := result.Counts.Present + result.Counts.Late
		result.Rate = int(math.Round(float64(attended) * 100 / float64(total)))
	}
	return result, nil
}
