package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/cadet"
	"cadetportal/internal/metrics"
)

// SessionStoreForCreate defines the store interface needed by CreateSession.
type SessionStoreForCreate interface {
	CreateWithMarks(ctx context.Context, session attendance.Session, marks []attendance.Mark) error
}

// CadetLister returns accounts that belong on the roster.
type CadetLister interface {
	ListCadets(ctx context.Context) ([]account.Account, error)
}

// CreateSessionInput carries input for the create session orchestrator.
type CreateSessionInput struct {
	Title     string
	Date      string
	Type      string
	Year      string
	Division  string
	Platoon   string
	Location  string
	CreatedBy string
}

// CreateSessionDeps holds dependencies for CreateSession.
type CreateSessionDeps struct {
	SessionStore SessionStoreForCreate
	Cadets       CadetLister
	Notifier     ChangeNotifier
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteCreateSession creates an unlocked session with one absent mark per eligible cadet.
// PRE: Title, Date and Year are non-empty; Date is YYYY-MM-DD
// POST: Session and its absent marks are persisted together; TotalCadets is the eligible count
// INVARIANT: Nothing is written when validation fails
func ExecuteCreateSession(ctx context.Context, input CreateSessionInput, deps CreateSessionDeps) (attendance.Session, error) {
	if input.CreatedBy == "" {
		return attendance.Session{}, errors.New("creator account ID is required")
	}
	sessionType := input.Type
	if sessionType == "" {
		sessionType = attendance.TypeParade
	}

	now := deps.Now()
	s := attendance.Session{
		ID:        deps.GenerateID(),
		Title:     strings.TrimSpace(input.Title),
		Date:      strings.TrimSpace(input.Date),
		Type:      sessionType,
		Year:      input.Year,
		Division:  input.Division,
		Platoon:   input.Platoon,
		Location:  strings.TrimSpace(input.Location),
		CreatedAt: now,
		CreatedBy: input.CreatedBy,
	}
	if err := s.Validate(); err != nil {
		return attendance.Session{}, err
	}

	accounts, err := deps.Cadets.ListCadets(ctx)
	if err != nil {
		return attendance.Session{}, err
	}
	eligible := s.Cohort().Filter(cadet.Roster(accounts))
	s.TotalCadets = len(eligible)

	marks := make([]attendance.Mark, 0, len(eligible))
	for _, c := range eligible {
		marks = append(marks, attendance.Mark{
			SessionID: s.ID,
			CadetID:   c.ID,
			Status:    attendance.StatusAbsent,
			Timestamp: now,
		})
	}

	if err := deps.SessionStore.CreateWithMarks(ctx, s, marks); err != nil {
		return attendance.Session{}, err
	}

	metrics.ObserveSession("created")
	metrics.ObserveMarks(attendance.StatusAbsent, len(marks))
	slog.Info("attendance_event", "event", "session_created", "session_id", s.ID, "date", s.Date,
		"year", s.Year, "division", s.Division, "total_cadets", s.TotalCadets, "created_by", s.CreatedBy)

	notifierOrNop(deps.Notifier).SessionsChanged(ctx)
	return s, nil
}
