package attendance

import (
	"errors"
	"strings"
	"time"

	"cadetportal/internal/domain/cadet"
)

// DateLayout is the calendar date format used for session dates.
const DateLayout = "2006-01-02"

// Mark status constants
const (
	StatusPresent = "P"
	StatusLate    = "L"
	StatusAbsent  = "A"
)

// Session type constants
const (
	TypeCamp        = "camp"
	TypeParade      = "parade"
	TypeTraining    = "training"
	TypeCompetition = "competition"
	TypeSocialWork  = "social_work"
	TypeNationalDay = "national_day"
	TypeOther       = "other"
)

// ValidTypes contains all valid session types.
var ValidTypes = []string{TypeCamp, TypeParade, TypeTraining, TypeCompetition, TypeSocialWork, TypeNationalDay, TypeOther}

// MaxTitleLength bounds session titles.
const MaxTitleLength = 140

// Domain errors
var (
	ErrEmptyTitle        = errors.New("session title is required")
	ErrTitleTooLong      = errors.New("session title cannot exceed 140 characters")
	ErrEmptyDate         = errors.New("session date is required")
	ErrInvalidDate       = errors.New("session date must be YYYY-MM-DD")
	ErrEmptyYear         = errors.New("session year is required")
	ErrInvalidType       = errors.New("session type must be one of: camp, parade, training, competition, social_work, national_day, other")
	ErrInvalidStatus     = errors.New("mark status must be one of: P, L, A")
	ErrSessionLocked     = errors.New("session is locked")
	ErrSessionNotFound   = errors.New("session not found")
	ErrMarkNotFound      = errors.New("mark not found")
	ErrCadetNotEligible  = errors.New("cadet is not eligible for this session")
	ErrCohortRequired    = errors.New("select both year and division")
	ErrNoSessionsInScope = errors.New("no sessions found for the selected year and division")
)

// Session is one attendance-taking event scoped to a cohort.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Year        string    `json:"year"`
	Division    string    `json:"division"`
	Platoon     string    `json:"platoon,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	Locked      bool      `json:"locked"`
	TotalCadets int       `json:"totalCadets"`
}

// Mark is the attendance status recorded for one cadet in one session.
type Mark struct {
	SessionID string    `json:"sessionId"`
	CadetID   string    `json:"cadetId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(s.Date) == "" {
		return ErrEmptyDate
	}
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(s.Year) == "" {
		return ErrEmptyYear
	}
	if !IsValidType(s.Type) {
		return ErrInvalidType
	}
	return cadet.ValidateCohortFields(s.Year, s.Division, s.Platoon)
}

// Cohort returns the cohort the session is scoped to.
func (s *Session) Cohort() cadet.Cohort {
	return cadet.Cohort{Year: s.Year, Division: s.Division}
}

// Toggle returns the next status for a cadet.
// Present and late flip to absent. Absent flips to late when late is set, otherwise present.
// An empty current status is treated as absent.
func Toggle(current string, late bool) string {
	switch current {
	case StatusPresent, StatusLate:
		return StatusAbsent
	}
	if late {
		return StatusLate
	}
	return StatusPresent
}

// PresentStatus returns the status applied by "mark all".
func PresentStatus(late bool) string {
	if late {
		return StatusLate
	}
	return StatusPresent
}

// StatusLabel maps a mark status to its report label.
// Anything other than P or L, including a missing mark, reads as Absent.
func StatusLabel(status string) string {
	switch status {
	case StatusPresent:
		return "Present"
	case StatusLate:
		return "Late"
	}
	return "Absent"
}

// IsValidStatus reports whether status is P, L or A.
func IsValidStatus(status string) bool {
	return status == StatusPresent || status == StatusLate || status == StatusAbsent
}

// IsValidType reports whether t is one of ValidTypes.
func IsValidType(t string) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}
