package cms

import (
	"context"

	domain "cadetportal/internal/domain/cms"
)

// Store persists content pages keyed by slug.
type Store interface {
	Get(ctx context.Context, key string) (domain.Page, error)
	Save(ctx context.Context, page domain.Page) error
}
