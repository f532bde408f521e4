package web

import (
	"log/slog"
	"net/http"

	"cadetportal/internal/adapters/http/middleware"
	"cadetportal/internal/application/orchestrators"
)

type registerRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8"`
	Profile  profileDTO `json:"profile"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// handleRegister handles POST /api/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()

	p, err := orchestrators.ExecuteRegister(ctx, orchestrators.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.Profile.toDomain(),
	}, orchestrators.RegisterDeps{
		Pending:    s.stores.Registrations,
		Accounts:   s.stores.Accounts,
		GenerateID: s.generateID,
		Now:        s.now,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewPending(p))
}

// handleLogin handles POST /api/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()

	acct, err := orchestrators.ExecuteLogin(ctx, orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.LoginDeps{AccountStore: s.stores.Accounts, Now: s.now})
	if err != nil {
		respondErr(w, r, err)
		return
	}

	token, err := s.sessions.Create(acct.ID, acct.Email, acct.Role)
	if err != nil {
		internalError(w, r, err)
		return
	}
	middleware.SetSessionCookie(w, token, s.opts.SecureCookies)
	slog.Info("auth_event", "event", "login", "account_id", acct.ID, "role", acct.Role)
	writeJSON(w, http.StatusOK, viewAccount(acct))
}

// handleLogout handles POST /api/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w, s.opts.SecureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/auth/me
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	acct, err := s.stores.Accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAccount(acct))
}

func (s *Server) resetDeps() orchestrators.PasswordResetDeps {
	return orchestrators.PasswordResetDeps{
		Accounts: s.stores.Accounts,
		Mailer:   s.opts.Mailer,
		Secret:   s.opts.ResetTokenSecret,
		ResetURL: s.opts.BaseURL + "/reset-password",
		Now:      s.now,
	}
}

// handleRequestPasswordReset handles POST /api/auth/password-reset
// Unknown emails get the same response as known ones.
func (s *Server) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	if err := orchestrators.ExecuteRequestPasswordReset(ctx, req.Email, s.resetDeps()); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleConfirmPasswordReset handles POST /api/auth/password-reset/confirm
func (s *Server) handleConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	if err := orchestrators.ExecuteConfirmPasswordReset(ctx, req.Token, req.Password, s.resetDeps()); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateOwnProfile handles PUT /api/profile
func (s *Server) handleUpdateOwnProfile(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	s.updateProfile(w, r, sess, sess.AccountID)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, sess middleware.Session, targetID string) {
	var req profileDTO
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	acct, err := orchestrators.ExecuteUpdateProfile(ctx, orchestrators.UpdateProfileInput{
		ActorID:  sess.AccountID,
		TargetID: targetID,
		Profile:  req.toDomain(),
	}, s.manageDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewAccount(acct))
}
