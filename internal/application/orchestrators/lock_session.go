package orchestrators

import (
	"context"
	"log/slog"

	"cadetportal/internal/metrics"
)

// SessionLifecycleStore defines the store interface needed by lock and delete.
type SessionLifecycleStore interface {
	Lock(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// SessionLifecycleDeps holds dependencies for LockSession and DeleteSession.
type SessionLifecycleDeps struct {
	Store    SessionLifecycleStore
	Notifier ChangeNotifier
}

// ExecuteLockSession freezes a session against further mark writes.
// PRE: sessionID is non-empty
// POST: Session is locked; locking twice succeeds
// INVARIANT: Locked is monotonic
func ExecuteLockSession(ctx context.Context, sessionID, actorID string, deps SessionLifecycleDeps) error {
	if err := deps.Store.Lock(ctx, sessionID); err != nil {
		return err
	}
	metrics.ObserveSession("locked")
	slog.Info("attendance_event", "event", "session_locked", "session_id", sessionID, "actor", actorID)
	n := notifierOrNop(deps.Notifier)
	n.SessionsChanged(ctx)
	n.MarksChanged(ctx, sessionID)
	return nil
}

// ExecuteDeleteSession removes a session and all of its marks.
// PRE: sessionID is non-empty
// POST: No session or marks remain for sessionID
func ExecuteDeleteSession(ctx context.Context, sessionID, actorID string, deps SessionLifecycleDeps) error {
	if err := deps.Store.Delete(ctx, sessionID); err != nil {
		return err
	}
	metrics.ObserveSession("deleted")
	slog.Info("attendance_event", "event", "session_deleted", "session_id", sessionID, "actor", actorID)
	n := notifierOrNop(deps.Notifier)
	n.SessionsChanged(ctx)
	n.MarksChanged(ctx, sessionID)
	return nil
}
