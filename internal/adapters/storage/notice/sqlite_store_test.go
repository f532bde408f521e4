package notice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	noticeStore "cadetportal/internal/adapters/storage/notice"
	domain "cadetportal/internal/domain/notice"
	"cadetportal/internal/testutil/testdb"
)

// TestSQLiteStore_ListNewestFirst verifies ordering, limit and delete.
func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	store := noticeStore.NewSQLiteStore(testdb.Open(t))
	ctx := context.Background()
	base := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"n1", "n2", "n3"} {
		n := domain.Notice{ID: id, Title: "Notice " + id, Body: "body", CreatedBy: "admin", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Save(ctx, n); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	list, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != "n3" || list[1].ID != "n2" {
		t.Errorf("unexpected order %+v", list)
	}

	if err := store.Delete(ctx, "n3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "n3"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetByID(ctx, "n3"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
