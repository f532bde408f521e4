package notice

import (
	"errors"
	"strings"
	"time"
)

// Length limits for announcement fields.
const (
	MaxTitleLength = 160
	MaxBodyLength  = 20000
)

// Domain errors
var (
	ErrEmptyTitle   = errors.New("announcement title cannot be empty")
	ErrEmptyBody    = errors.New("announcement body cannot be empty")
	ErrTitleTooLong = errors.New("announcement title cannot exceed 160 characters")
	ErrBodyTooLong  = errors.New("announcement body cannot exceed 20000 characters")
	ErrNotFound     = errors.New("announcement not found")
)

// Notice is an announcement shown to every signed-in user.
// Body supports Markdown formatting.
type Notice struct {
	ID         string
	Title      string
	Body       string
	AuthorName string
	CreatedBy  string // AccountID of creator
	CreatedAt  time.Time
}

// Validate checks if the Notice has valid data.
// PRE: Notice struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notice) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if len(n.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(n.Body) == "" {
		return ErrEmptyBody
	}
	if len(n.Body) > MaxBodyLength {
		return ErrBodyTooLong
	}
	return nil
}
