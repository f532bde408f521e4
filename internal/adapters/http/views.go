package web

import (
	"bytes"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/cms"
	"cadetportal/internal/domain/notice"
	"cadetportal/internal/domain/registration"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func renderMarkdown(md string) string {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTMLEscapeString(md)
	}
	return buf.String()
}

// profileDTO is the wire form of account.Profile.
type profileDTO struct {
	Name             string `json:"name" validate:"omitempty,max=120"`
	Phone            string `json:"phone" validate:"omitempty,max=32"`
	RegisterNumber   string `json:"registerNumber" validate:"omitempty,max=32"`
	RegimentalNumber string `json:"regimentalNumber" validate:"omitempty,max=32"`
	Platoon          string `json:"platoon"`
	Year             string `json:"year"`
	Division         string `json:"division"`
	Department       string `json:"department" validate:"omitempty,max=120"`
	RollNo           string `json:"rollNo" validate:"omitempty,max=32"`
	Rank             string `json:"rank"`
	BloodGroup       string `json:"bloodGroup" validate:"omitempty,max=8"`
	Address          string `json:"address" validate:"omitempty,max=500"`
	DateOfBirth      string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	DateOfEnrollment string `json:"dateOfEnrollment" validate:"omitempty,datetime=2006-01-02"`
}

func (p profileDTO) toDomain() account.Profile {
	return account.Profile(p)
}

func profileView(p account.Profile) profileDTO {
	return profileDTO(p)
}

// accountView is an account without credentials.
type accountView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	Profile   profileDTO `json:"profile"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func viewAccount(a account.Account) accountView {
	return accountView{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role,
		Status:    a.Status,
		Profile:   profileView(a.Profile),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type pendingView struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Profile   profileDTO `json:"profile"`
	CreatedAt time.Time  `json:"createdAt"`
}

func viewPending(p registration.Pending) pendingView {
	return pendingView{ID: p.ID, Email: p.Email, Profile: profileView(p.Profile), CreatedAt: p.CreatedAt}
}

type noticeView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	HTML       string    `json:"html"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func viewNotice(n notice.Notice) noticeView {
	return noticeView{
		ID:         n.ID,
		Title:      n.Title,
		Body:       n.Body,
		HTML:       renderMarkdown(n.Body),
		AuthorName: n.AuthorName,
		CreatedAt:  n.CreatedAt,
	}
}

type sectionView struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
	HTML    string `json:"html"`
}

type pageView struct {
	Key        string        `json:"key"`
	Title      string        `json:"title"`
	Sections   []sectionView `json:"sections"`
	Visibility string        `json:"visibility"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	UpdatedBy  string        `json:"updatedBy,omitempty"`
}

func viewPage(p cms.Page) pageView {
	sections := make([]sectionView, 0, len(p.Sections))
	for _, s := range p.Sections {
		sections = append(sections, sectionView{Heading: s.Heading, Body: s.Body, HTML: renderMarkdown(s.Body)})
	}
	return pageView{
		Key:        p.Key,
		Title:      p.Title,
		Sections:   sections,
		Visibility: p.Visibility,
		UpdatedAt:  p.UpdatedAt,
		UpdatedBy:  p.UpdatedBy,
	}
}
