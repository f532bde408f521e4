package dutyreport

import (
	"context"

	domain "cadetportal/internal/domain/dutyreport"
)

// Store persists duty reports.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Report, error)
	Save(ctx context.Context, value domain.Report) error
	Delete(ctx context.Context, id string) error
	// List returns reports newest duty date first. An empty cadetID lists every cadet.
	List(ctx context.Context, cadetID string) ([]domain.Report, error)
}
