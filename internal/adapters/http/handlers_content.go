package web

import (
	"net/http"

	"cadetportal/internal/adapters/http/middleware"
	"cadetportal/internal/application/orchestrators"
	"cadetportal/internal/domain/cms"
	"cadetportal/internal/domain/dutyreport"
)

// announcementListLimit caps the announcements feed.
const announcementListLimit = 50

type createAnnouncementRequest struct {
	Title      string `json:"title" validate:"required"`
	Body       string `json:"body" validate:"required"`
	AuthorName string `json:"authorName" validate:"max=120"`
}

type savePageRequest struct {
	Title      string        `json:"title"`
	Sections   []cms.Section `json:"sections"`
	Visibility string        `json:"visibility" validate:"omitempty,oneof=public private"`
}

type createDutyReportRequest struct {
	CadetID      string `json:"cadetId" validate:"required"`
	Date         string `json:"date" validate:"required"`
	DutyType     string `json:"dutyType" validate:"required"`
	Location     string `json:"location" validate:"required"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	Observations string `json:"observations"`
}

func (s *Server) noticeDeps() orchestrators.NoticeDeps {
	return orchestrators.NoticeDeps{NoticeStore: s.stores.Notices, GenerateID: s.generateID, Now: s.now}
}

func (s *Server) dutyDeps() orchestrators.DutyReportDeps {
	return orchestrators.DutyReportDeps{
		Reports:    s.stores.DutyReports,
		Accounts:   s.stores.Accounts,
		GenerateID: s.generateID,
		Now:        s.now,
	}
}

// handleListAnnouncements handles GET /api/announcements
func (s *Server) handleListAnnouncements(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	list, err := s.stores.Notices.List(ctx, announcementListLimit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	views := make([]noticeView, 0, len(list))
	for _, n := range list {
		views = append(views, viewNotice(n))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleCreateAnnouncement handles POST /api/announcements
// The author defaults to the publisher's name.
func (s *Server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req createAnnouncementRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()

	author := req.AuthorName
	if author == "" {
		if acct, err := s.stores.Accounts.GetByID(ctx, sess.AccountID); err == nil {
			author = acct.Profile.Name
		}
	}
	n, err := orchestrators.ExecuteCreateNotice(ctx, orchestrators.CreateNoticeInput{
		Title:      req.Title,
		Body:       req.Body,
		AuthorName: author,
		CreatedBy:  sess.AccountID,
	}, s.noticeDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewNotice(n))
}

// handleDeleteAnnouncement handles DELETE /api/announcements/{id}
func (s *Server) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	if err := orchestrators.ExecuteDeleteNotice(ctx, r.PathValue("id"), sess.AccountID, s.noticeDeps()); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetPage handles GET /api/cms/{key}
// Public pages are readable anonymously; private pages need a signed-in user.
func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()
	page, err := s.stores.Pages.Get(ctx, r.PathValue("key"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if !page.IsPublic() {
		if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
	}
	writeJSON(w, http.StatusOK, viewPage(page))
}

// handleSavePage handles PUT /api/cms/{key}
// Omitted fields keep their stored values; "sections": [] clears the sections.
func (s *Server) handleSavePage(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req savePageRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	page, err := orchestrators.ExecuteSavePage(ctx, orchestrators.SavePageInput{
		Key:        r.PathValue("key"),
		Title:      req.Title,
		Sections:   req.Sections,
		Visibility: req.Visibility,
		ActorID:    sess.AccountID,
	}, orchestrators.SavePageDeps{Pages: s.stores.Pages, Now: s.now})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewPage(page))
}

// handleListDutyReports handles GET /api/duty-reports?cadetId=
func (s *Server) handleListDutyReports(w http.ResponseWriter, r *http.Request, _ middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	list, err := s.stores.DutyReports.List(ctx, r.URL.Query().Get("cadetId"))
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil[dutyreport.Report](list))
}

// handleCreateDutyReport handles POST /api/duty-reports
func (s *Server) handleCreateDutyReport(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	var req createDutyReportRequest
	if !s.decode(w, r, &req) {
		return
	}
	ctx, cancel := dbContext(r)
	defer cancel()
	report, err := orchestrators.ExecuteCreateDutyReport(ctx, orchestrators.CreateDutyReportInput{
		CadetID:      req.CadetID,
		Date:         req.Date,
		DutyType:     req.DutyType,
		Location:     req.Location,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Observations: req.Observations,
		ActorID:      sess.AccountID,
	}, s.dutyDeps())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// handleDeleteDutyReport handles DELETE /api/duty-reports/{id}
func (s *Server) handleDeleteDutyReport(w http.ResponseWriter, r *http.Request, sess middleware.Session) {
	ctx, cancel := dbContext(r)
	defer cancel()
	if err := orchestrators.ExecuteDeleteDutyReport(ctx, r.PathValue("id"), sess.AccountID, s.dutyDeps()); err != nil {
		respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
