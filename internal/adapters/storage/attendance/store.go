package attendance

import (
	"context"

	domain "cadetportal/internal/domain/attendance"
)

// Store persists attendance sessions and their marks.
type Store interface {
	CreateWithMarks(ctx context.Context, session domain.Session, marks []domain.Mark) error
	GetByID(ctx context.Context, id string) (domain.Session, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Session, error)
	Lock(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	SetMark(ctx context.Context, mark domain.Mark) error
	SetMarks(ctx context.Context, sessionID string, marks []domain.Mark) error
	GetMark(ctx context.Context, sessionID, cadetID string) (domain.Mark, error)
	ListMarks(ctx context.Context, sessionID string) ([]domain.Mark, error)
	ListMarksForCadet(ctx context.Context, cadetID string) ([]domain.Mark, error)
}

// ListFilter narrows session listings. Empty Year or Division matches every value.
type ListFilter struct {
	Year     string
	Division string
	Limit    int
	Offset   int
}
