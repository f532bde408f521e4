package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"cadetportal/internal/adapters/email"
	"cadetportal/internal/adapters/http/middleware"
	accountStore "cadetportal/internal/adapters/storage/account"
	attendanceStore "cadetportal/internal/adapters/storage/attendance"
	cmsStore "cadetportal/internal/adapters/storage/cms"
	dutyReportStore "cadetportal/internal/adapters/storage/dutyreport"
	noticeStore "cadetportal/internal/adapters/storage/notice"
	registrationStore "cadetportal/internal/adapters/storage/registration"
	"cadetportal/internal/application/livesync"
	"cadetportal/internal/application/orchestrators"
	"cadetportal/internal/application/projections"
	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/metrics"
)

// Stores holds all storage dependencies.
type Stores struct {
	Accounts      accountStore.Store
	Registrations registrationStore.Store
	Attendance    attendanceStore.Store
	Notices       noticeStore.Store
	Pages         cmsStore.Store
	DutyReports   dutyReportStore.Store
}

// Options configures a Server.
type Options struct {
	SecureCookies      bool
	BaseURL            string
	CSRFKey            []byte
	ResetTokenSecret   []byte
	RateLimitPerSecond int
	SlowRequest        time.Duration
	Mailer             email.Sender
	Hub                *livesync.Hub
	Notifier           orchestrators.ChangeNotifier
	Sessions           *middleware.SessionStore
	Limiter            *middleware.RateLimiter
	Health             func(ctx context.Context) error
	// Heartbeat is the SSE keep-alive interval.
	Heartbeat time.Duration
}

// Server serves the JSON API.
type Server struct {
	stores     *Stores
	opts       Options
	sessions   *middleware.SessionStore
	validate   *validator.Validate
	now        func() time.Time
	generateID func() string
}

// NewServer creates a server over stores.
// PRE: stores has every field set; opts.Hub is non-nil
func NewServer(stores *Stores, opts Options) *Server {
	if opts.Sessions == nil {
		opts.Sessions = middleware.NewSessionStore(middleware.DefaultSessionTTL)
	}
	if opts.Limiter == nil {
		rate := opts.RateLimitPerSecond
		if rate <= 0 {
			rate = 20
		}
		opts.Limiter = middleware.NewRateLimiter(rate, time.Second)
	}
	if opts.Mailer == nil {
		opts.Mailer = email.NewNoopSender()
	}
	if opts.Notifier == nil {
		opts.Notifier = orchestrators.NopNotifier{}
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 25 * time.Second
	}
	return &Server{
		stores:     stores,
		opts:       opts,
		sessions:   opts.Sessions,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		now:        time.Now,
		generateID: uuid.NewString,
	}
}

// Sessions returns the session store, for the purge job.
func (s *Server) Sessions() *middleware.SessionStore { return s.sessions }

// Limiter returns the rate limiter, for the cleanup job.
func (s *Server) Limiter() *middleware.RateLimiter { return s.opts.Limiter }

// Handler wires routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	// Applied inner to outer: Auth -> CSRF -> SecurityHeaders -> RateLimit -> Timing -> Recover
	return middleware.Chain(mux,
		middleware.Auth(s.sessions),
		middleware.CSRF(s.opts.CSRFKey, s.opts.SecureCookies, nil),
		middleware.SecurityHeaders,
		middleware.RateLimit(s.opts.Limiter),
		middleware.Timing(s.opts.SlowRequest),
		middleware.Recover,
	)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))
	mux.HandleFunc("POST /api/auth/password-reset", s.handleRequestPasswordReset)
	mux.HandleFunc("POST /api/auth/password-reset/confirm", s.handleConfirmPasswordReset)

	mux.HandleFunc("PUT /api/profile", s.authed(s.handleUpdateOwnProfile))
	mux.HandleFunc("GET /api/me/attendance", s.require(middleware.Session.CanViewOwnAttendance, s.handleOwnAttendance))

	manageUsers := func(h sessionHandler) http.HandlerFunc { return s.require(middleware.Session.CanManageUsers, h) }
	mux.HandleFunc("GET /api/registrations", manageUsers(s.handleListRegistrations))
	mux.HandleFunc("POST /api/registrations/{id}/approve", manageUsers(s.handleApproveRegistration))
	mux.HandleFunc("POST /api/registrations/{id}/reject", manageUsers(s.handleRejectRegistration))
	mux.HandleFunc("GET /api/users", manageUsers(s.handleListUsers))
	mux.HandleFunc("PUT /api/users/{id}/role", manageUsers(s.handleChangeRole))
	mux.HandleFunc("PUT /api/users/{id}/status", manageUsers(s.handleSetStatus))
	mux.HandleFunc("PUT /api/users/{id}/profile", manageUsers(s.handleUpdateUserProfile))
	mux.HandleFunc("GET /api/cadets", s.require(middleware.Session.CanManageAttendance, s.handleListCadets))

	manageAttendance := func(h sessionHandler) http.HandlerFunc { return s.require(middleware.Session.CanManageAttendance, h) }
	mux.HandleFunc("GET /api/sessions", manageAttendance(s.handleListSessions))
	mux.HandleFunc("POST /api/sessions", manageAttendance(s.handleCreateSession))
	mux.HandleFunc("GET /api/sessions/{id}", manageAttendance(s.handleGetSession))
	mux.HandleFunc("DELETE /api/sessions/{id}", manageAttendance(s.handleDeleteSession))
	mux.HandleFunc("POST /api/sessions/{id}/lock", manageAttendance(s.handleLockSession))
	mux.HandleFunc("GET /api/sessions/{id}/roster", manageAttendance(s.handleGetRoster))
	mux.HandleFunc("GET /api/sessions/{id}/marks", manageAttendance(s.handleListMarks))
	mux.HandleFunc("PUT /api/sessions/{id}/marks/{cadetId}", manageAttendance(s.handleSetMark))
	mux.HandleFunc("POST /api/sessions/{id}/marks/{cadetId}/toggle", manageAttendance(s.handleToggleMark))
	mux.HandleFunc("POST /api/sessions/{id}/marks/all", manageAttendance(s.handleMarkAll))

	mux.HandleFunc("GET /api/live/sessions", manageAttendance(s.handleLiveSessions))
	mux.HandleFunc("GET /api/live/sessions/{id}/marks", manageAttendance(s.handleLiveMarks))

	mux.HandleFunc("GET /api/reports/attendance.pdf", manageAttendance(s.handleExportPDF))
	mux.HandleFunc("GET /api/reports/attendance.xlsx", manageAttendance(s.handleExportExcel))

	editContent := func(h sessionHandler) http.HandlerFunc { return s.require(middleware.Session.CanEditContent, h) }
	mux.HandleFunc("GET /api/announcements", s.authed(s.handleListAnnouncements))
	mux.HandleFunc("POST /api/announcements", editContent(s.handleCreateAnnouncement))
	mux.HandleFunc("DELETE /api/announcements/{id}", editContent(s.handleDeleteAnnouncement))
	mux.HandleFunc("GET /api/cms/{key}", s.handleGetPage)
	mux.HandleFunc("PUT /api/cms/{key}", editContent(s.handleSavePage))

	mux.HandleFunc("GET /api/duty-reports", s.require(middleware.Session.CanFileDutyReports, s.handleListDutyReports))
	mux.HandleFunc("POST /api/duty-reports", s.require(middleware.Session.CanFileDutyReports, s.handleCreateDutyReport))
	mux.HandleFunc("DELETE /api/duty-reports/{id}", manageUsers(s.handleDeleteDutyReport))
}

// LiveSources builds the snapshot loaders for the live hub.
// The sessions topic carries every session, newest first; a marks topic carries
// the session roster and reports a deleted session as livesync.ErrTopicGone.
func LiveSources(stores *Stores) livesync.Sources {
	return livesync.Sources{
		Sessions: func(ctx context.Context) (any, error) {
			list, err := stores.Attendance.List(ctx, attendanceStore.ListFilter{})
			if err != nil {
				return nil, err
			}
			return nonNil(list), nil
		},
		Marks: func(ctx context.Context, sessionID string) (any, error) {
			roster, err := projections.GetSessionRoster(ctx, sessionID, projections.GetSessionRosterDeps{
				Sessions: stores.Attendance,
				Marks:    stores.Attendance,
				Cadets:   stores.Accounts,
			})
			if errors.Is(err, attendance.ErrSessionNotFound) {
				return nil, fmt.Errorf("%w: %w", livesync.ErrTopicGone, err)
			}
			if err != nil {
				return nil, err
			}
			return roster, nil
		},
	}
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Health(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "unhealthy")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
