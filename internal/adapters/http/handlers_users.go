package web

import (
	"log/slog"
	"net/http"
	"strings"

	"cadetportal/internal/adapters/http/middleware"
	accountStore "cadetportal/internal/adapters/storage/account"
	"cadetportal/internal/application/orchestrators"
	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/cadet"
)

type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

func (s *Server) manageDeps() orchestrators.ManageAccountDeps {
	return orchestrators.ManageAccountDeps{Accounts: s.stores.Accounts, Notifier: s.opts.Notifier, Now: s.now}
}

func (s *Server) reviewDeps() orchestrators.ReviewDeps {
	return orchestrators.ReviewDeps{
		Pending:    s.stores.Registrations,
		Accounts:   s.stores.Accounts,
		Mailer:     s.opts.Mailer,
		Notifier:   s.opts.Notifier,
		GenerateID: s.generateID,
		Now:        s.now,
		LoginURL:   s.opts.BaseURL + "/login",
	}
}

// handleListRegistrations handles GET /api/registrations
func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	pending, err := s.stores.Registrations.List(ctx)
	if err != nil {
		internalError(w, r, err)
		return
	}
	views := make([]pendingView, 0, len(pending))
	for _, p := range pending {
		views = append(views, viewPending(p))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleApproveRegistration handles POST /api/registrations/{id}/approve
func (s *Server) handleApproveRegistration(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	acct, err := orchestrators.ExecuteApproveRegistration(ctx, r.PathValue("id"), sess.AccountID, s.reviewDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewAccount(acct))
}

// handleRejectRegistration handles POST /api/registrations/{id}/reject
func (s *Server) handleRejectRegistration(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	if err := orchestrators.ExecuteRejectRegistration(ctx, r.PathValue("id"), sess.AccountID, s.reviewDeps()); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListUsers handles GET /api/users?role=&status=
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	q := r.URL.Query()
	filter := accountStore.ListFilter{Role: q.Get("role"), Status: q.Get("status")}
	if filter.Role != "" && !account.IsValidRole(filter.Role) {
		writeError(w, http.StatusBadRequest, account.ErrInvalidRole.Error())
		return
	}
	if filter.Status != "" && !account.IsValidStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, account.ErrInvalidStatus.Error())
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()
	accounts, err := s.stores.Accounts.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	views := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, viewAccount(a))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleChangeRole handles PUT /api/users/{id}/role
// The target is signed out so the new role applies at next sign-in.
func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req roleRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	acct, err := orchestrators.ExecuteChangeRole(ctx, orchestrators.ChangeRoleInput{
		ActorID:  sess.AccountID,
		TargetID: r.PathValue("id"),
		Role:     strings.TrimSpace(req.Role),
	}, s.manageDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	s.revoke(acct.ID)
	writeJSON(w, http.StatusOK, viewAccount(acct))
}

// handleSetStatus handles PUT /api/users/{id}/status
func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req statusRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	acct, err := orchestrators.ExecuteSetStatus(ctx, orchestrators.SetStatusInput{
		ActorID:  sess.AccountID,
		TargetID: r.PathValue("id"),
		Status:   req.Status,
	}, s.manageDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if acct.Status != account.StatusActive {
		s.revoke(acct.ID)
	}
	writeJSON(w, http.StatusOK, viewAccount(acct))
}

// handleUpdateUserProfile handles PUT /api/users/{id}/profile
func (s *Server) handleUpdateUserProfile(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	s.updateProfile(w, r, sess, r.PathValue("id"))
}

// handleListCadets handles GET /api/cadets?year=&division=
func (s *Server) handleListCadets(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	accounts, err := s.stores.Accounts.ListCadets(ctx)
	if err != nil {
		internalError(w, r, err)
		return
	}
	roster := cadet.Roster(accounts)
	q := r.URL.Query()
	if year, division := q.Get("year"), q.Get("division"); year != "" || division != "" {
		roster = cadet.Cohort{Year: year, Division: division}.Filter(roster)
	}
	cadet.SortByRegisterNumber(roster)
	writeJSON(w, http.StatusOK, nonNil(roster))
}

func (s *Server) revoke(accountID string) {
	if n := s.sessions.DeleteForAccount(accountID); n > 0 {
		slog.Info("auth_event", "event", "sessions_revoked", "account_id", accountID, "count", n)
	}
}
