package cms

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Visibility values
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// MaxSections bounds the number of sections on a page.
const MaxSections = 50

var keyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

var (
	ErrInvalidKey        = errors.New("page key must be a lowercase slug")
	ErrEmptyTitle        = errors.New("page title cannot be empty")
	ErrInvalidVisibility = errors.New("visibility must be public or private")
	ErrTooManySections   = errors.New("a page cannot have more than 50 sections")
	ErrNotFound          = errors.New("page not found")
)

// Section is one heading and markdown body on a page.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Page is a keyed content document such as "about" or "contact".
type Page struct {
	Key        string
	Title      string
	Sections   []Section
	Visibility string
	UpdatedAt  time.Time
	UpdatedBy  string
}

// Validate checks if the Page has valid data.
func (p *Page) Validate() error {
	if !keyPattern.MatchString(p.Key) {
		return ErrInvalidKey
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Visibility != VisibilityPublic && p.Visibility != VisibilityPrivate {
		return ErrInvalidVisibility
	}
	if len(p.Sections) > MaxSections {
		return ErrTooManySections
	}
	return nil
}

// IsPublic reports whether anonymous readers may see the page.
func (p *Page) IsPublic() bool {
	return p.Visibility == VisibilityPublic
}

// Merge applies a save onto the stored page.
// Empty title and visibility keep the stored values; a nil section list keeps the stored sections.
// POST: returns the merged page; existing is not modified
func Merge(existing Page, update Page) Page {
	merged := existing
	merged.Key = update.Key
	if strings.TrimSpace(update.Title) != "" {
		merged.Title = update.Title
	}
	if update.Visibility != "" {
		merged.Visibility = update.Visibility
	}
	if update.Sections != nil {
		merged.Sections = append([]Section(nil), update.Sections...)
	}
	if merged.Visibility == "" {
		merged.Visibility = VisibilityPublic
	}
	merged.UpdatedAt = update.UpdatedAt
	merged.UpdatedBy = update.UpdatedBy
	return merged
}
