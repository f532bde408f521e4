package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"cadetportal/internal/adapters/http/middleware"
	attendanceStore "cadetportal/internal/adapters/storage/attendance"
	"cadetportal/internal/application/orchestrators"
	"cadetportal/internal/application/projections"
	"cadetportal/internal/domain/attendance"
)

// sessionListLimit caps a page of GET /api/sessions. The live snapshot is unbounded.
const sessionListLimit = 100

type createSessionRequest struct {
	Title    string `json:"title" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Type     string `json:"type"`
	Year     string `json:"year" validate:"required"`
	Division string `json:"division"`
	Platoon  string `json:"platoon"`
	Location string `json:"location" validate:"max=200"`
}

type setMarkRequest struct {
	Status string `json:"status" validate:"required,oneof=P L A"`
}

type lateRequest struct {
	Late bool `json:"late"`
}

// decodeOptional is decode for endpoints where the body may be omitted.
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, dto any) bool {
	if err := strictDecode(r, dto); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

func (s *Server) markDeps() orchestrators.MarkDeps {
	return orchestrators.MarkDeps{
		Store:    s.stores.Attendance,
		Cadets:   s.stores.Accounts,
		Notifier: s.opts.Notifier,
		Now:      s.now,
	}
}

func (s *Server) lifecycleDeps() orchestrators.SessionLifecycleDeps {
	return orchestrators.SessionLifecycleDeps{Store: s.stores.Attendance, Notifier: s.opts.Notifier}
}

// handleListSessions handles GET /api/sessions?year=&division=&limit=&offset=
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	q := r.URL.Query()
	filter := attendanceStore.ListFilter{
		Year:     q.Get("year"),
		Division: q.Get("division"),
		Limit:    sessionListLimit,
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > sessionListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		filter.Offset = n
	}

	ctx, cancel := dbContext(r)
	defer cancel()
	list, err := s.stores.Attendance.List(ctx, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// handleCreateSession handles POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req createSessionRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	session, err := orchestrators.ExecuteCreateSession(ctx, orchestrators.CreateSessionInput{
		Title:     req.Title,
		Date:      req.Date,
		Type:      req.Type,
		Year:      req.Year,
		Division:  req.Division,
		Platoon:   req.Platoon,
		Location:  req.Location,
		CreatedBy: sess.AccountID,
	}, orchestrators.CreateSessionDeps{
		SessionStore: s.stores.Attendance,
		Cadets:       s.stores.Accounts,
		Notifier:     s.opts.Notifier,
		GenerateID:   s.generateID,
		Now:          s.now,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// handleGetSession handles GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	session, err := s.stores.Attendance.GetByID(ctx, r.PathValue("id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleDeleteSession handles DELETE /api/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	if err := orchestrators.ExecuteDeleteSession(ctx, r.PathValue("id"), sess.AccountID, s.lifecycleDeps()); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLockSession handles POST /api/sessions/{id}/lock
func (s *Server) handleLockSession(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	id := r.PathValue("id")
	if err := orchestrators.ExecuteLockSession(ctx, id, sess.AccountID, s.lifecycleDeps()); err != nil {
		respondErr(w, r, err)
		return
	}
	session, err := s.stores.Attendance.GetByID(ctx, id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// handleGetRoster handles GET /api/sessions/{id}/roster
func (s *Server) handleGetRoster(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	roster, err := projections.GetSessionRoster(ctx, r.PathValue("id"), projections.GetSessionRosterDeps{
		Sessions: s.stores.Attendance,
		Marks:    s.stores.Attendance,
		Cadets:   s.stores.Accounts,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, roster)
}

// handleListMarks handles GET /api/sessions/{id}/marks
func (s *Server) handleListMarks(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	id := r.PathValue("id")
	if _, err := s.stores.Attendance.GetByID(ctx, id); err != nil {
		respondErr(w, r, err)
		return
	}
	marks, err := s.stores.Attendance.ListMarks(ctx, id)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(marks))
}

// handleSetMark handles PUT /api/sessions/{id}/marks/{cadetId}
func (s *Server) handleSetMark(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req setMarkRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	mark, err := orchestrators.ExecuteSetMark(ctx, orchestrators.SetMarkInput{
		SessionID: r.PathValue("id"),
		CadetID:   r.PathValue("cadetId"),
		Status:    req.Status,
		ActorID:   sess.AccountID,
	}, s.markDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mark)
}

// handleToggleMark handles POST /api/sessions/{id}/marks/{cadetId}/toggle
func (s *Server) handleToggleMark(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req lateRequest
	if !s.decodeOptional(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	mark, err := orchestrators.ExecuteToggleMark(ctx, orchestrators.ToggleMarkInput{
		SessionID: r.PathValue("id"),
		CadetID:   r.PathValue("cadetId"),
		Late:      req.Late,
		ActorID:   sess.AccountID,
	}, s.markDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mark)
}

// handleMarkAll handles POST /api/sessions/{id}/marks/all
func (s *Server) handleMarkAll(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req lateRequest
	if !s.decodeOptional(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	n, err := orchestrators.ExecuteMarkAll(ctx, orchestrators.MarkAllInput{
		SessionID: r.PathValue("id"),
		Late:      req.Late,
		ActorID:   sess.AccountID,
	}, s.markDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// handleOwnAttendance handles GET /api/me/attendance?type=
func (s *Server) handleOwnAttendance(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	sessionType := r.URL.Query().Get("type")
	if sessionType != "" && !attendance.IsValidType(sessionType) {
		writeError(w, http.StatusBadRequest, attendance.ErrInvalidType.Error())
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	acct, err := s.stores.Accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	history, err := projections.GetOwnAttendance(ctx, acct, sessionType, projections.GetOwnAttendanceDeps{
		Sessions: s.stores.Attendance,
		Marks:    s.stores.Attendance,
	})
	if err != nil {
		internalError(w, r, err)
		return
	}
	history.Entries = nonNil(history.Entries)
	writeJSON(w, http.StatusOK, history)
}
