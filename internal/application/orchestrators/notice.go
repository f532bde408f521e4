package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cadetportal/internal/domain/notice"
)

// NoticeStoreForOrchestrator defines the store interface needed by notice orchestrators.
type NoticeStoreForOrchestrator interface {
	Save(ctx context.Context, n notice.Notice) error
	Delete(ctx context.Context, id string) error
}

// CreateNoticeInput carries input for the create notice orchestrator.
type CreateNoticeInput struct {
	Title      string
	Body       string
	AuthorName string
	CreatedBy  string // AccountID of creator
}

// NoticeDeps holds dependencies for the notice orchestrators.
type NoticeDeps struct {
	NoticeStore NoticeStoreForOrchestrator
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreateNotice publishes an announcement.
// PRE: Title and Body non-empty; CreatedBy non-empty
// POST: Announcement persisted with generated ID
func ExecuteCreateNotice(ctx context.Context, input CreateNoticeInput, deps NoticeDeps) (notice.Notice, error) {
	if input.CreatedBy == "" {
		return notice.Notice{}, errors.New("creator account ID is required")
	}
	n := notice.Notice{
		ID:         deps.GenerateID(),
		Title:      strings.TrimSpace(input.Title),
		Body:       input.Body,
		AuthorName: input.AuthorName,
		CreatedBy:  input.CreatedBy,
		CreatedAt:  deps.Now(),
	}
	if err := n.Validate(); err != nil {
		return notice.Notice{}, err
	}
	if err := deps.NoticeStore.Save(ctx, n); err != nil {
		return notice.Notice{}, err
	}
	slog.Info("notice_event", "event", "notice_created", "notice_id", n.ID, "created_by", n.CreatedBy)
	return n, nil
}

// ExecuteDeleteNotice removes an announcement.
func ExecuteDeleteNotice(ctx context.Context, id, actorID string, deps NoticeDeps) error {
	if err := deps.NoticeStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("notice_event", "event", "notice_deleted", "notice_id", id, "actor", actorID)
	return nil
}
