package projections

import (
	"context"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/attendance"
)

// CadetLister returns accounts that belong on the roster.
type CadetLister interface {
	ListCadets(ctx context.Context) ([]account.Account, error)
}

// SessionReader loads sessions.
type SessionReader interface {
	GetByID(ctx context.Context, id string) (attendance.Session, error)
}

// MarkReader loads marks.
type MarkReader interface {
	ListMarks(ctx context.Context, sessionID string) ([]attendance.Mark, error)
}
