package orchestrators

import (
	"context"
	"errors"
	"testing"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/cms"
	"cadetportal/internal/domain/dutyreport"
	"cadetportal/internal/domain/notice"
)

type mockNoticeStore struct {
	notices map[string]notice.Notice
}

func (m *mockNoticeStore) Save(_ context.Context, n notice.Notice) error {
	m.notices[n.ID] = n
	return nil
}

func (m *mockNoticeStore) Delete(_ context.Context, id string) error {
	if _, ok := m.notices[id]; !ok {
		return notice.ErrNotFound
	}
	delete(m.notices, id)
	return nil
}

type mockPageStore struct {
	pages map[string]cms.Page
}

func (m *mockPageStore) Get(_ context.Context, key string) (cms.Page, error) {
	p, ok := m.pages[key]
	if !ok {
		return cms.Page{}, cms.ErrNotFound
	}
	return p, nil
}

func (m *mockPageStore) Save(_ context.Context, p cms.Page) error {
	m.pages[p.Key] = p
	return nil
}

type mockDutyStore struct {
	reports map[string]dutyreport.Report
}

func (m *mockDutyStore) Save(_ context.Context, r dutyreport.Report) error {
	m.reports[r.ID] = r
	return nil
}

func (m *mockDutyStore) Delete(_ context.Context, id string) error {
	if _, ok := m.reports[id]; !ok {
		return dutyreport.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

// TestExecuteCreateNotice covers creation, validation and delete.
func TestExecuteCreateNotice(t *testing.T) {
	store := &mockNoticeStore{notices: make(map[string]notice.Notice)}
	deps := NoticeDeps{NoticeStore: store, GenerateID: fixedID, Now: fixedNow}

	n, err := ExecuteCreateNotice(context.Background(), CreateNoticeInput{
		Title: "  Camp kit list ", Body: "**Boots** polished", AuthorName: "Adjutant", CreatedBy: "ad",
	}, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if n.Title != "Camp kit list" || !n.CreatedAt.Equal(fixedTime) {
		t.Errorf("unexpected notice %+v", n)
	}

	if _, err := ExecuteCreateNotice(context.Background(), CreateNoticeInput{Title: "x", CreatedBy: "ad"}, deps); !errors.Is(err, notice.ErrEmptyBody) {
		t.Errorf("expected ErrEmptyBody, got %v", err)
	}
	if _, err := ExecuteCreateNotice(context.Background(), CreateNoticeInput{Title: "x", Body: "y"}, deps); err == nil {
		t.Error("expected missing creator to fail")
	}

	if err := ExecuteDeleteNotice(context.Background(), n.ID, "ad", deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := ExecuteDeleteNotice(context.Background(), n.ID, "ad", deps); !errors.Is(err, notice.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestExecuteSavePage_Merge verifies omitted fields keep stored values.
func TestExecuteSavePage_Merge(t *testing.T) {
	store := &mockPageStore{pages: make(map[string]cms.Page)}
	deps := SavePageDeps{Pages: store, Now: fixedNow}

	_, err := ExecuteSavePage(context.Background(), SavePageInput{
		Key: "about", Title: "About", Sections: []cms.Section{{Heading: "History", Body: "1948"}}, ActorID: "ad",
	}, deps)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	got, err := ExecuteSavePage(context.Background(), SavePageInput{Key: "about", Visibility: cms.VisibilityPrivate, ActorID: "ad2"}, deps)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if got.Title != "About" || len(got.Sections) != 1 || got.Visibility != cms.VisibilityPrivate || got.UpdatedBy != "ad2" {
		t.Errorf("unexpected merge %+v", got)
	}

	got, _ = ExecuteSavePage(context.Background(), SavePageInput{Key: "about", Sections: []cms.Section{}, ActorID: "ad"}, deps)
	if len(got.Sections) != 0 {
		t.Errorf("expected explicit empty list to clear sections, got %d", len(got.Sections))
	}

	if _, err := ExecuteSavePage(context.Background(), SavePageInput{Key: "New Page!", Title: "x"}, deps); !errors.Is(err, cms.ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := ExecuteSavePage(context.Background(), SavePageInput{Key: "contact"}, deps); !errors.Is(err, cms.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle for a new page without a title, got %v", err)
	}
}

// TestExecuteCreateDutyReport verifies the cadet snapshot and validation.
func TestExecuteCreateDutyReport(t *testing.T) {
	c := cadetAccount("c1", "R001", "2nd Year", "SD")
	store := &mockDutyStore{reports: make(map[string]dutyreport.Report)}
	deps := DutyReportDeps{Reports: store, Accounts: newMockAccountStore(c), GenerateID: fixedID, Now: fixedNow}

	r, err := ExecuteCreateDutyReport(context.Background(), CreateDutyReportInput{
		CadetID: "c1", Date: "2024-01-20", DutyType: "Guard", Location: "Main gate",
		StartTime: "06:00", EndTime: "10:30", ActorID: "sub",
	}, deps)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.CadetName != c.Profile.Name || r.RegisterNumber != "R001" || r.Rank != account.DefaultRank {
		t.Errorf("expected cadet snapshot, got %+v", r)
	}

	_, err = ExecuteCreateDutyReport(context.Background(), CreateDutyReportInput{
		CadetID: "c1", Date: "2024-01-20", DutyType: "Guard", Location: "Gate", StartTime: "10:00", EndTime: "09:00",
	}, deps)
	if !errors.Is(err, dutyreport.ErrEndBeforeStart) {
		t.Errorf("expected ErrEndBeforeStart, got %v", err)
	}

	_, err = ExecuteCreateDutyReport(context.Background(), CreateDutyReportInput{CadetID: "ghost"}, deps)
	if !errors.Is(err, account.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := ExecuteDeleteDutyReport(context.Background(), r.ID, "ad", deps); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
