package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"cadetportal/internal/adapters/http/middleware"
	"cadetportal/internal/application/orchestrators"
	"cadetportal/internal/ctxutil"
	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/attendance"
	"cadetportal/internal/domain/cadet"
	"cadetportal/internal/domain/cms"
	"cadetportal/internal/domain/dutyreport"
	"cadetportal/internal/domain/notice"
	"cadetportal/internal/domain/registration"
	"cadetportal/internal/observability"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errValidation wraps DTO validation failures.
var errValidation = errors.New("validation failed")

var notFoundErrs = []error{
	account.ErrNotFound, registration.ErrNotFound, attendance.ErrSessionNotFound,
	attendance.ErrMarkNotFound, notice.ErrNotFound, cms.ErrNotFound, dutyreport.ErrNotFound,
}

var conflictErrs = []error{
	attendance.ErrSessionLocked, account.ErrEmailTaken, account.ErrSuperadminLimit,
	account.ErrLastSuperadmin, account.ErrSelfRoleChange, account.ErrSelfStatusChange,
}

var forbiddenErrs = []error{
	orchestrators.ErrForbidden, account.ErrSuperadminOnly, orchestrators.ErrAccountInactive,
}

var unauthorizedErrs = []error{
	orchestrators.ErrInvalidCredentials, orchestrators.ErrAccountLocked,
}

var validationErrs = []error{
	errValidation, orchestrators.ErrInvalidResetToken,
	account.ErrInvalidEmail, account.ErrEmptyEmail, account.ErrInvalidRole, account.ErrInvalidStatus,
	account.ErrEmptyPassword, account.ErrPasswordTooShort, account.ErrWrongPassword,
	account.ErrNameTooLong, account.ErrInvalidTransition,
	registration.ErrEmptyName, registration.ErrEmptyRegisterNumber, registration.ErrEmptyYear, registration.ErrEmptyDivision,
	cadet.ErrInvalidYear, cadet.ErrInvalidDivision, cadet.ErrInvalidPlatoon, cadet.ErrInvalidRank,
	attendance.ErrEmptyTitle, attendance.ErrTitleTooLong, attendance.ErrEmptyDate, attendance.ErrInvalidDate,
	attendance.ErrEmptyYear, attendance.ErrInvalidType, attendance.ErrInvalidStatus,
	attendance.ErrCadetNotEligible, attendance.ErrCohortRequired, attendance.ErrNoSessionsInScope,
	notice.ErrEmptyTitle, notice.ErrEmptyBody, notice.ErrTitleTooLong, notice.ErrBodyTooLong,
	cms.ErrInvalidKey, cms.ErrEmptyTitle, cms.ErrInvalidVisibility, cms.ErrTooManySections,
	dutyreport.ErrEmptyCadet, dutyreport.ErrInvalidDate, dutyreport.ErrEmptyDutyType, dutyreport.ErrEmptyLocation,
	dutyreport.ErrInvalidTime, dutyreport.ErrEndBeforeStart, dutyreport.ErrObservationsLong,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps a domain error to an HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case isAny(err, notFoundErrs):
		return http.StatusNotFound
	case isAny(err, conflictErrs):
		return http.StatusConflict
	case isAny(err, forbiddenErrs):
		return http.StatusForbidden
	case isAny(err, unauthorizedErrs):
		return http.StatusUnauthorized
	case isAny(err, validationErrs):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondErr writes err with its mapped status.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		internalError(w, r, err)
		return
	}
	writeError(w, status, err.Error())
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	reqID, _ := ctxutil.RequestID(r.Context())
	slog.Error("internal_error", "error", err.Error(), "path", r.URL.Path, "request_id", reqID)
	observability.CaptureErr(err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	middleware.WriteError(w, status, msg)
}

// nonNil returns an empty slice for nil so lists encode as [].
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// decode reads a strict JSON body into dto and runs its validate tags.
// POST: on false, a 400 has been written
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dto any) bool {
	if err := strictDecode(r, dto); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if err := s.validate.Struct(dto); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errValidation.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fe.Field()+" is required")
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s must be %s %s", fe.Field(), map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			parts = append(parts, fe.Field()+" is invalid")
		}
	}
	return strings.Join(parts, "; ")
}

// sessionHandler is a handler that runs with an authenticated session.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess middleware.Session)

// authed rejects anonymous requests.
func (s *Server) authed(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		h(w, r, sess)
	}
}

// require rejects anonymous requests and sessions failing allowed.
func (s *Server) require(allowed func(middleware.Session) bool, h sessionHandler) http.HandlerFunc {
	return s.authed(func(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
		if !allowed(sess) {
			slog.Warn("auth_denied", "path", r.URL.Path, "account_id", sess.AccountID, "role", sess.Role)
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		h(w, r, sess)
	})
}

// dbContext bounds store work for one request.
func dbContext(r *http.Request) (context.Context, context.CancelFunc) {
	return ctxutil.WithDBTimeout(r.Context())
}
