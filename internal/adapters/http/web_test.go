package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cadetportal/internal/adapters/email"
	"cadetportal/internal/adapters/http/middleware"
	accountStore "cadetportal/internal/adapters/storage/account"
	attendanceStore "cadetportal/internal/adapters/storage/attendance"
	cmsStore "cadetportal/internal/adapters/storage/cms"
	dutyReportStore "cadetportal/internal/adapters/storage/dutyreport"
	noticeStore "cadetportal/internal/adapters/storage/notice"
	registrationStore "cadetportal/internal/adapters/storage/registration"
	"cadetportal/internal/application/livesync"
	"cadetportal/internal/domain/account"
	"cadetportal/internal/testutil/testdb"
)

var testNow = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

// recordingMailer captures outgoing mail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []email.SendRequest
}

func (m *recordingMailer) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "m"}, nil
}

func (m *recordingMailer) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	var out []email.SendResult
	for _, r := range reqs {
		res, _ := m.Send(ctx, r)
		out = append(out, res)
	}
	return out, nil
}

func (m *recordingMailer) last() email.SendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return email.SendRequest{}
	}
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	srv    *Server
	h      http.Handler
	stores *Stores
	hub    *livesync.Hub
	mail   *recordingMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdb.Open(t)
	stores := &Stores{
		Accounts:      accountStore.NewSQLiteStore(db),
		Registrations: registrationStore.NewSQLiteStore(db),
		Attendance:    attendanceStore.NewSQLiteStore(db),
		Notices:       noticeStore.NewSQLiteStore(db),
		Pages:         cmsStore.NewSQLiteStore(db),
		DutyReports:   dutyReportStore.NewSQLiteStore(db),
	}
	hub := livesync.NewHub(LiveSources(stores))
	t.Cleanup(hub.Close)

	env := &testEnv{stores: stores, hub: hub, mail: &recordingMailer{}}
	env.srv = NewServer(stores, Options{
		BaseURL:            "http://portal.test",
		CSRFKey:            bytes.Repeat([]byte("k"), 32),
		ResetTokenSecret:   []byte("reset-secret"),
		RateLimitPerSecond: 10000,
		Mailer:             env.mail,
		Hub:                hub,
		Notifier:           livesync.NewNotifier(hub, nil),
		Heartbeat:          time.Hour,
	})
	env.h = env.srv.Handler()
	return env
}

// seedAccount stores an active account and returns a session token for it.
func (e *testEnv) seedAccount(t *testing.T, id, role string, profile account.Profile) string {
	t.Helper()
	a := account.Account{
		ID:        id,
		Email:     id + "@unit.org",
		Role:      role,
		Status:    account.StatusActive,
		Profile:   profile,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	if err := a.SetPassword("password123"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := e.stores.Accounts.Save(context.Background(), a); err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	token, err := e.srv.Sessions().Create(a.ID, a.Email, a.Role)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return token
}

func cadetProfile(name, reg string) account.Profile {
	return account.Profile{Name: name, RegisterNumber: reg, Year: "1st Year", Division: "SD", Platoon: "Alpha", Rank: account.DefaultRank}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rr.Code, strings.TrimSpace(rr.Body.String()))
	}
}

// TestHealthz verifies the health endpoint.
func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/healthz", nil, "")
	expectStatus(t, rr, http.StatusOK)
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("expected security headers")
	}
}

// TestStatusFor verifies the error to status mapping.
func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{account.ErrNotFound, http.StatusNotFound},
		{account.ErrEmailTaken, http.StatusConflict},
		{account.ErrLastSuperadmin, http.StatusConflict},
		{account.ErrSuperadminOnly, http.StatusForbidden},
		{account.ErrPasswordTooShort, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
