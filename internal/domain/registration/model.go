package registration

import (
	"errors"
	"strings"
	"time"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/cadet"
)

var (
	ErrEmptyName           = errors.New("name is required")
	ErrEmptyRegisterNumber = errors.New("register number is required")
	ErrEmptyYear           = errors.New("year is required")
	ErrEmptyDivision       = errors.New("division is required")
	ErrNotFound            = errors.New("pending registration not found")
)

// Pending is a self-submitted registration awaiting admin approval.
type Pending struct {
	ID           string
	Email        string
	PasswordHash string
	Profile      account.Profile
	CreatedAt    time.Time
}

// Validate checks if the Pending registration has valid data.
// PRE: Pending struct is populated, PasswordHash already set
// POST: Returns nil if valid, error otherwise
func (p *Pending) Validate() error {
	if strings.TrimSpace(p.Profile.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Profile.Name) > account.MaxNameLength {
		return account.ErrNameTooLong
	}
	if err := account.ValidateEmail(p.Email); err != nil {
		return err
	}
	if p.PasswordHash == "" {
		return account.ErrEmptyPassword
	}
	if strings.TrimSpace(p.Profile.RegisterNumber) == "" {
		return ErrEmptyRegisterNumber
	}
	if p.Profile.Year == "" {
		return ErrEmptyYear
	}
	if p.Profile.Division == "" {
		return ErrEmptyDivision
	}
	return cadet.ValidateCohortFields(p.Profile.Year, p.Profile.Division, p.Profile.Platoon)
}

// ToAccount builds the active member account created on approval.
// POST: role is member, status is active, rank defaults to CDT
func (p *Pending) ToAccount(id string, now time.Time) account.Account {
	profile := p.Profile
	if profile.Rank == "" {
		profile.Rank = account.DefaultRank
	}
	return account.Account{
		ID:                id,
		Email:             p.Email,
		PasswordHash:      p.PasswordHash,
		Role:              account.RoleMember,
		Status:            account.StatusActive,
		Profile:           profile,
		CreatedAt:         now,
		UpdatedAt:         now,
		PasswordChangedAt: now,
	}
}
