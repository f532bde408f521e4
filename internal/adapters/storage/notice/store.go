package notice

import (
	"context"

	domain "cadetportal/internal/domain/notice"
)

// Store persists announcements.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Notice, error)
	Save(ctx context.Context, value domain.Notice) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]domain.Notice, error)
}
