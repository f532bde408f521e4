package projections

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	storage "cadetportal/internal/adapters/storage/attendance"
	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/attendance"
)

var stamp = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

type mockCadets struct {
	accounts []account.Account
}

func (m *mockCadets) ListCadets(context.Context) ([]account.Account, error) {
	return m.accounts, nil
}

type mockAttendance struct {
	sessions  []attendance.Session
	marks     map[string][]attendance.Mark
	failMarks error
	reads     atomic.Int32
}

func (m *mockAttendance) GetByID(_ context.Context, id string) (attendance.Session, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (m *mockAttendance) List(_ context.Context, f storage.ListFilter) ([]attendance.Session, error) {
	var out []attendance.Session
	for _, s := range m.sessions {
		if f.Year != "" && s.Year != f.Year {
			continue
		}
		if f.Division != "" && s.Division != f.Division {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *mockAttendance) ListMarks(_ context.Context, sessionID string) ([]attendance.Mark, error) {
	m.reads.Add(1)
	if m.failMarks != nil && sessionID == "s2" {
		return nil, m.failMarks
	}
	return m.marks[sessionID], nil
}

func (m *mockAttendance) ListMarksForCadet(_ context.Context, cadetID string) ([]attendance.Mark, error) {
	var out []attendance.Mark
	for _, ms := range m.marks {
		for _, mk := range ms {
			if mk.CadetID == cadetID {
				out = append(out, mk)
			}
		}
	}
	return out, nil
}

func cadetAcct(id, reg, year, division string) account.Account {
	return account.Account{
		ID: id, Email: id + "@unit.org", Role: account.RoleMember, Status: account.StatusActive,
		Profile: account.Profile{Name: "Cadet " + id, RegisterNumber: reg, Year: year, Division: division, Platoon: "Alpha"},
	}
}

func mark(session, cadetID, status string) attendance.Mark {
	return attendance.Mark{SessionID: session, CadetID: cadetID, Status: status, Timestamp: stamp}
}

func fixture() (*mockAttendance, *mockCadets) {
	cadets := &mockCadets{accounts: []account.Account{
		cadetAcct("c3", "R003", "2nd Year", "SD"),
		cadetAcct("c1", "R001", "2nd Year", "SD"),
		cadetAcct("c2", "R002", "2nd Year", "SD"),
		cadetAcct("x", "R010", "2nd Year", "SW"),
	}}
	att := &mockAttendance{
		sessions: []attendance.Session{
			{ID: "s1", Title: "Parade", Date: "2024-01-15", Type: attendance.TypeParade, Year: "2nd Year", Division: "SD"},
			{ID: "s2", Title: "Drill", Date: "2024-01-22", Type: attendance.TypeTraining, Year: "2nd Year", Division: "SD"},
			{ID: "s3", Title: "Camp", Date: "2024-01-20", Type: attendance.TypeCamp, Year: "2nd Year", Division: "SW"},
		},
		marks: map[string][]attendance.Mark{
			"s1": {mark("s1", "c1", attendance.StatusPresent), mark("s1", "c2", attendance.StatusAbsent)},
			"s2": {mark("s2", "c2", attendance.StatusLate)},
			"s3": {mark("s3", "x", attendance.StatusPresent)},
		},
	}
	return att, cadets
}

// TestGetSessionRoster_MissingMarkReadsAbsent covers ordering, defaults and counts.
func TestGetSessionRoster_MissingMarkReadsAbsent(t *testing.T) {
	att, cadets := fixture()
	r, err := GetSessionRoster(context.Background(), "s1", GetSessionRosterDeps{Sessions: att, Marks: att, Cadets: cadets})
	if err != nil {
		t.Fatalf("GetSessionRoster: %v", err)
	}
	if len(r.Rows) != 3 {
		t.Fatalf("expected 3 eligible rows, got %d", len(r.Rows))
	}
	wantIDs := []string{"c1", "c2", "c3"}
	wantStatus := []string{attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusAbsent}
	for i := range wantIDs {
		if r.Rows[i].Cadet.ID != wantIDs[i] || r.Rows[i].Status != wantStatus[i] {
			t.Errorf("row %d: expected %s/%s, got %s/%s", i, wantIDs[i], wantStatus[i], r.Rows[i].Cadet.ID, r.Rows[i].Status)
		}
	}
	if r.Rows[2].Timestamp != nil {
		t.Error("expected no timestamp for a missing mark")
	}
	if r.Counts != (Counts{Present: 1, Absent: 2}) {
		t.Errorf("unexpected counts %+v", r.Counts)
	}

	if _, err := GetSessionRoster(context.Background(), "nope", GetSessionRosterDeps{Sessions: att, Marks: att, Cadets: cadets}); !errors.Is(err, attendance.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

// TestGetCohortReport covers scope, order and per-session rows.
func TestGetCohortReport(t *testing.T) {
	att, cadets := fixture()
	r, err := GetCohortReport(context.Background(), "2nd Year", "SD", GetCohortReportDeps{Sessions: att, Marks: att, Cadets: cadets})
	if err != nil {
		t.Fatalf("GetCohortReport: %v", err)
	}
	if len(r.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(r.Sections))
	}
	if r.Sections[0].Session.ID != "s2" || r.Sections[1].Session.ID != "s1" {
		t.Errorf("expected date descending, got %s, %s", r.Sections[0].Session.ID, r.Sections[1].Session.ID)
	}
	s1 := r.Sections[1]
	if s1.Counts.Present != 1 || s1.Counts.Absent != 2 {
		t.Errorf("unexpected s1 counts %+v", s1.Counts)
	}
	if r.Sections[0].Rows[1].Status != attendance.StatusLate {
		t.Errorf("expected c2 late in s2, got %s", r.Sections[0].Rows[1].Status)
	}
}

// TestGetCohortReport_Errors covers validation and fetch failure.
func TestGetCohortReport_Errors(t *testing.T) {
	att, cadets := fixture()
	deps := GetCohortReportDeps{Sessions: att, Marks: att, Cadets: cadets}

	if _, err := GetCohortReport(context.Background(), "2nd Year", "", deps); !errors.Is(err, attendance.ErrCohortRequired) {
		t.Errorf("expected ErrCohortRequired, got %v", err)
	}
	if att.reads.Load() != 0 {
		t.Error("expected no reads before validation passes")
	}
	if _, err := GetCohortReport(context.Background(), "4th Year", "SD", deps); !errors.Is(err, attendance.ErrNoSessionsInScope) {
		t.Errorf("expected ErrNoSessionsInScope, got %v", err)
	}

	boom := errors.New("read failed")
	att.failMarks = boom
	if _, err := GetCohortReport(context.Background(), "2nd Year", "SD", deps); !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}
}

// TestGetOwnAttendance covers eligibility and absent defaults.
func TestGetOwnAttendance(t *testing.T) {
	att, _ := fixture()
	me := cadetAcct("c2", "R002", "2nd Year", "SD")

	deps := GetOwnAttendanceDeps{Sessions: att, Marks: att}
	got, err := GetOwnAttendance(context.Background(), me, "", deps)
	if err != nil {
		t.Fatalf("GetOwnAttendance: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].SessionID != "s2" || got.Entries[0].Status != attendance.StatusLate {
		t.Errorf("unexpected first entry %+v", got.Entries[0])
	}
	if got.Counts != (Counts{Late: 1, Absent: 1}) {
		t.Errorf("unexpected counts %+v", got.Counts)
	}
	if got.Rate != 50 {
		t.Errorf("expected rate 50, got %d", got.Rate)
	}

	training, err := GetOwnAttendance(context.Background(), me, attendance.TypeTraining, deps)
	if err != nil {
		t.Fatalf("GetOwnAttendance training: %v", err)
	}
	if len(training.Entries) != 1 || training.Entries[0].SessionID != "s2" || training.Rate != 100 {
		t.Errorf("unexpected training history %+v", training)
	}

	none, err := GetOwnAttendance(context.Background(), me, attendance.TypeCamp, deps)
	if err != nil {
		t.Fatalf("GetOwnAttendance camp: %v", err)
	}
	if len(none.Entries) != 0 || none.Rate != 0 {
		t.Errorf("expected empty camp history with rate 0, got %+v", none)
	}
}
