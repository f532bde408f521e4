package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cadetportal/internal/domain/cms"
)

// PageStore defines the store interface needed by SavePage.
type PageStore interface {
	Get(ctx context.Context, key string) (cms.Page, error)
	Save(ctx context.Context, page cms.Page) error
}

// SavePageInput carries a page save. Nil Sections keeps the stored sections.
type SavePageInput struct {
	Key        string
	Title      string
	Sections   []cms.Section
	Visibility string
	ActorID    string
}

// SavePageDeps holds dependencies for SavePage.
type SavePageDeps struct {
	Pages PageStore
	Now   func() time.Time
}

// ExecuteSavePage merges a save onto the stored page.
// PRE: Key is a lowercase slug
// POST: Stored page carries merged content and fresh UpdatedAt/UpdatedBy
func ExecuteSavePage(ctx context.Context, input SavePageInput, deps SavePageDeps) (cms.Page, error) {
	existing, err := deps.Pages.Get(ctx, input.Key)
	if err != nil && !errors.Is(err, cms.ErrNotFound) {
		return cms.Page{}, err
	}

	merged := cms.Merge(existing, cms.Page{
		Key:        input.Key,
		Title:      input.Title,
		Sections:   input.Sections,
		Visibility: input.Visibility,
		UpdatedAt:  deps.Now(),
		UpdatedBy:  input.ActorID,
	})
	if err := merged.Validate(); err != nil {
		return cms.Page{}, err
	}
	if err := deps.Pages.Save(ctx, merged); err != nil {
		return cms.Page{}, err
	}
	slog.Info("cms_event", "event", "page_saved", "key", merged.Key, "sections", len(merged.Sections), "actor", input.ActorID)
	return merged, nil
}
