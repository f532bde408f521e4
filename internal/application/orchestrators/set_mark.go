package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/cadet"
	"cadetportal/internal/metrics"
)

// MarkStoreForOrchestrator defines the store interface needed by the mark orchestrators.
type MarkStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (attendance.Session, error)
	SetMark(ctx context.Context, mark attendance.Mark) error
	SetMarks(ctx context.Context, sessionID string, marks []attendance.Mark) error
	GetMark(ctx context.Context, sessionID, cadetID string) (attendance.Mark, error)
}

// MarkDeps holds dependencies for SetMark, ToggleMark and MarkAll.
type MarkDeps struct {
	Store    MarkStoreForOrchestrator
	Cadets   CadetLister
	Notifier ChangeNotifier
	Now      func() time.Time
}

// SetMarkInput carries input for the set mark orchestrator.
type SetMarkInput struct {
	SessionID string
	CadetID   string
	Status    string
	ActorID   string
}

// ExecuteSetMark records a status for one cadet.
// PRE: Status is P, L or A; session exists
// POST: Exactly one mark exists for (SessionID, CadetID) carrying Status and a fresh timestamp
// INVARIANT: A locked session never changes
func ExecuteSetMark(ctx context.Context, input SetMarkInput, deps MarkDeps) (attendance.Mark, error) {
	if !attendance.IsValidStatus(input.Status) {
		return attendance.Mark{}, attendance.ErrInvalidStatus
	}
	session, err := loadUnlocked(ctx, deps.Store, input.SessionID)
	if err != nil {
		return attendance.Mark{}, err
	}
	if err := requireEligible(ctx, deps.Cadets, session, input.CadetID); err != nil {
		return attendance.Mark{}, err
	}

	m := attendance.Mark{
		SessionID: session.ID,
		CadetID:   input.CadetID,
		Status:    input.Status,
		Timestamp: deps.Now(),
	}
	if err := deps.Store.SetMark(ctx, m); err != nil {
		return attendance.Mark{}, err
	}

	metrics.ObserveMarks(m.Status, 1)
	slog.Info("attendance_event", "event", "mark_set", "session_id", m.SessionID, "cadet_id", m.CadetID,
		"status", m.Status, "actor", input.ActorID)
	notifierOrNop(deps.Notifier).MarksChanged(ctx, m.SessionID)
	return m, nil
}

// ToggleMarkInput carries input for the toggle orchestrator.
type ToggleMarkInput struct {
	SessionID string
	CadetID   string
	Late      bool
	ActorID   string
}

// ExecuteToggleMark flips a cadet between absent and present (or late).
// PRE: session exists and is unlocked
// POST: The stored status is attendance.Toggle(previous, Late); a missing mark counts as absent
func ExecuteToggleMark(ctx context.Context, input ToggleMarkInput, deps MarkDeps) (attendance.Mark, error) {
	current := attendance.StatusAbsent
	m, err := deps.Store.GetMark(ctx, input.SessionID, input.CadetID)
	switch {
	case err == nil:
		current = m.Status
	case !errors.Is(err, attendance.ErrMarkNotFound):
		return attendance.Mark{}, err
	}
	return ExecuteSetMark(ctx, SetMarkInput{
		SessionID: input.SessionID,
		CadetID:   input.CadetID,
		Status:    attendance.Toggle(current, input.Late),
		ActorID:   input.ActorID,
	}, deps)
}

// MarkAllInput carries input for the mark all orchestrator.
type MarkAllInput struct {
	SessionID string
	Late      bool
	ActorID   string
}

// ExecuteMarkAll marks every eligible cadet present (or late) in one transaction.
// PRE: session exists and is unlocked
// POST: Every eligible cadet carries the same status, or nothing changed
func ExecuteMarkAll(ctx context.Context, input MarkAllInput, deps MarkDeps) (int, error) {
	session, err := loadUnlocked(ctx, deps.Store, input.SessionID)
	if err != nil {
		return 0, err
	}
	eligible, err := eligibleCadets(ctx, deps.Cadets, session)
	if err != nil {
		return 0, err
	}

	status := attendance.PresentStatus(input.Late)
	now := deps.Now()
	marks := make([]attendance.Mark, 0, len(eligible))
	for _, c := range eligible {
		marks = append(marks, attendance.Mark{SessionID: session.ID, CadetID: c.ID, Status: status, Timestamp: now})
	}
	if err := deps.Store.SetMarks(ctx, session.ID, marks); err != nil {
		return 0, err
	}

	metrics.ObserveMarks(status, len(marks))
	slog.Info("attendance_event", "event", "marks_set_all", "session_id", session.ID, "status", status,
		"count", len(marks), "actor", input.ActorID)
	notifierOrNop(deps.Notifier).MarksChanged(ctx, session.ID)
	return len(marks), nil
}

func loadUnlocked(ctx context.Context, store MarkStoreForOrchestrator, sessionID string) (attendance.Session, error) {
	session, err := store.GetByID(ctx, sessionID)
	if err != nil {
		return attendance.Session{}, err
	}
	if session.Locked {
		return attendance.Session{}, attendance.ErrSessionLocked
	}
	return session, nil
}

func eligibleCadets(ctx context.Context, lister CadetLister, session attendance.Session) ([]cadet.Cadet, error) {
	accounts, err := lister.ListCadets(ctx)
	if err != nil {
		return nil, err
	}
	return session.Cohort().Filter(cadet.Roster(accounts)), nil
}

func requireEligible(ctx context.Context, lister CadetLister, session attendance.Session, cadetID string) error {
	eligible, err := eligibleCadets(ctx, lister, session)
	if err != nil {
		return err
	}
	for _, c := range eligible {
		if c.ID == cadetID {
			return nil
		}
	}
	return attendance.ErrCadetNotEligible
}
