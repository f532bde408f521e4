package registration

import (
	"context"

	domain "cadetportal/internal/domain/registration"
)

// Store persists pending registrations.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Pending, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, value domain.Pending) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Pending, error)
}
