package orchestrators

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	emailAdapter "cadetportal/internal/adapters/email"
	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/registration"
)

var fixedTime = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

func sequenceID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + strconv.Itoa(n)
	}
}

// --- accounts ---

type mockAccountStore struct {
	accounts map[string]account.Account
	saves    int
}

func newMockAccountStore(accts ...account.Account) *mockAccountStore {
	m := &mockAccountStore{accounts: make(map[string]account.Account)}
	for _, a := range accts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == account.NormalizeEmail(email) {
			return a, nil
		}
	}
	return account.Account{}, account.ErrNotFound
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) CountByRole(_ context.Context, role string) (int, error) {
	n := 0
	for _, a := range m.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockAccountStore) ListCadets(_ context.Context) ([]account.Account, error) {
	var out []account.Account
	for _, a := range m.accounts {
		if a.IsCadet() {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile.RegisterNumber < out[j].Profile.RegisterNumber })
	return out, nil
}

func cadetAccount(id, reg, year, division string) account.Account {
	return account.Account{
		ID:     id,
		Email:  id + "@unit.org",
		Role:   account.RoleMember,
		Status: account.StatusActive,
		Profile: account.Profile{
			Name:           "Cadet " + id,
			RegisterNumber: reg,
			Year:           year,
			Division:       division,
			Rank:           account.DefaultRank,
		},
	}
}

func staffAccount(id, role string) account.Account {
	return account.Account{ID: id, Email: id + "@unit.org", Role: role, Status: account.StatusActive, Profile: account.Profile{Name: id}}
}

// --- attendance ---

type markKey struct{ session, cadet string }

type mockAttendanceStore struct {
	sessions map[string]attendance.Session
	marks    map[markKey]attendance.Mark
	failBulk error
}

func newMockAttendanceStore() *mockAttendanceStore {
	return &mockAttendanceStore{
		sessions: make(map[string]attendance.Session),
		marks:    make(map[markKey]attendance.Mark),
	}
}

func (m *mockAttendanceStore) CreateWithMarks(_ context.Context, s attendance.Session, marks []attendance.Mark) error {
	m.sessions[s.ID] = s
	for _, mk := range marks {
		m.marks[markKey{s.ID, mk.CadetID}] = mk
	}
	return nil
}

func (m *mockAttendanceStore) GetByID(_ context.Context, id string) (attendance.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockAttendanceStore) SetMark(_ context.Context, mk attendance.Mark) error {
	s, ok := m.sessions[mk.SessionID]
	if !ok {
		return attendance.ErrSessionNotFound
	}
	if s.Locked {
		return attendance.ErrSessionLocked
	}
	m.marks[markKey{mk.SessionID, mk.CadetID}] = mk
	return nil
}

func (m *mockAttendanceStore) SetMarks(_ context.Context, sessionID string, marks []attendance.Mark) error {
	if m.failBulk != nil {
		return m.failBulk
	}
	s, ok := m.sessions[sessionID]
	if !ok {
		return attendance.ErrSessionNotFound
	}
	if s.Locked {
		return attendance.ErrSessionLocked
	}
	for _, mk := range marks {
		m.marks[markKey{sessionID, mk.CadetID}] = mk
	}
	return nil
}

func (m *mockAttendanceStore) GetMark(_ context.Context, sessionID, cadetID string) (attendance.Mark, error) {
	mk, ok := m.marks[markKey{sessionID, cadetID}]
	if !ok {
		return attendance.Mark{}, attendance.ErrMarkNotFound
	}
	return mk, nil
}

func (m *mockAttendanceStore) Lock(_ context.Context, id string) error {
	s, ok := m.sessions[id]
	if !ok {
		return attendance.ErrSessionNotFound
	}
	s.Locked = true
	m.sessions[id] = s
	return nil
}

func (m *mockAttendanceStore) Delete(_ context.Context, id string) error {
	if _, ok := m.sessions[id]; !ok {
		return attendance.ErrSessionNotFound
	}
	delete(m.sessions, id)
	for k := range m.marks {
		if k.session == id {
			delete(m.marks, k)
		}
	}
	return nil
}

func (m *mockAttendanceStore) markCount(sessionID string) int {
	n := 0
	for k := range m.marks {
		if k.session == sessionID {
			n++
		}
	}
	return n
}

// --- notifications and mail ---

type recordingNotifier struct {
	sessions int
	marks    []string
	roster   int
}

func (r *recordingNotifier) SessionsChanged(context.Context) { r.sessions++ }

func (r *recordingNotifier) MarksChanged(_ context.Context, id string) { r.marks = append(r.marks, id) }

func (r *recordingNotifier) RosterChanged(context.Context) { r.roster++ }

type mockMailer struct {
	mu   sync.Mutex
	sent []emailAdapter.SendRequest
	err  error
}

func (m *mockMailer) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return emailAdapter.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "msg", SentAt: fixedTime}, nil
}

// --- registrations ---

type mockPendingStore struct {
	pending map[string]registration.Pending
}

func newMockPendingStore() *mockPendingStore {
	return &mockPendingStore{pending: make(map[string]registration.Pending)}
}

func (m *mockPendingStore) GetByID(_ context.Context, id string) (registration.Pending, error) {
	p, ok := m.pending[id]
	if !ok {
		return registration.Pending{}, registration.ErrNotFound
	}
	return p, nil
}

func (m *mockPendingStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, p := range m.pending {
		if p.Email == account.NormalizeEmail(email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPendingStore) Save(_ context.Context, p registration.Pending) error {
	m.pending[p.ID] = p
	return nil
}

func (m *mockPendingStore) Delete(_ context.Context, id string) error {
	delete(m.pending, id)
	return nil
}
