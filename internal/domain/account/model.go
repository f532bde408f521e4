package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 120
)

// MinPasswordLength is the minimum accepted plaintext password length.
const MinPasswordLength = 8

// Role constants
const (
	RoleVisitor    = "visitor"
	RoleMember     = "member"
	RoleSubadmin   = "subadmin"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
	RoleAlumni     = "alumni"
)

// MaxSuperadmins caps how many accounts may hold the superadmin role.
const MaxSuperadmins = 3

// Account status constants
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusRejected = "rejected"
)

// DefaultRank is assigned to newly approved cadets.
const DefaultRank = "CDT"

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleVisitor, RoleMember, RoleSubadmin, RoleAdmin, RoleSuperadmin, RoleAlumni}

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusPending, StatusActive, StatusInactive, StatusRejected}

// Domain errors
var (
	ErrInvalidEmail      = errors.New("email must contain '@'")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrInvalidRole       = errors.New("role must be one of: visitor, member, subadmin, admin, superadmin, alumni")
	ErrInvalidStatus     = errors.New("status must be one of: pending, active, inactive, rejected")
	ErrEmptyPassword     = errors.New("password cannot be empty")
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrWrongPassword     = errors.New("incorrect password")
	ErrNotFound          = errors.New("account not found")
	ErrEmailTaken        = errors.New("email is already registered")
	ErrSelfRoleChange    = errors.New("you cannot change your own role")
	ErrSelfStatusChange  = errors.New("you cannot change your own status")
	ErrSuperadminOnly    = errors.New("only a superadmin can grant or revoke the superadmin role")
	ErrSuperadminLimit   = errors.New("the maximum number of superadmins has been reached")
	ErrLastSuperadmin    = errors.New("the last superadmin cannot be demoted")
	ErrNameTooLong       = errors.New("name cannot exceed 120 characters")
	ErrInvalidTransition = errors.New("status can only move between active and inactive")
)

// Profile holds the cadet-facing fields of an account.
type Profile struct {
	Name             string
	Phone            string
	RegisterNumber   string
	RegimentalNumber string
	Platoon          string
	Year             string
	Division         string
	Department       string
	RollNo           string
	Rank             string
	BloodGroup       string
	Address          string
	DateOfBirth      string
	DateOfEnrollment string
}

// Account holds state for the Account concept.
type Account struct {
	ID                string
	Email             string
	PasswordHash      string
	Role              string
	Status            string
	Profile           Profile
	CreatedAt         time.Time
	UpdatedAt         time.Time
	FailedLogins      int
	LockedUntil       time.Time
	PasswordChangedAt time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if err := ValidateEmail(a.Email); err != nil {
		return err
	}
	if !IsValidRole(a.Role) {
		return ErrInvalidRole
	}
	if !IsValidStatus(a.Status) {
		return ErrInvalidStatus
	}
	if len(a.Profile.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateEmail checks the shape of an email address.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns a bcrypt hash with cost 12.
// PRE: plaintext is at least MinPasswordLength characters
// POST: returns a bcrypt hash or a validation error
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// SetPassword hashes and stores a password.
// PRE: plaintext is non-empty and >= MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	hash, err := HashPassword(plaintext)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// PasswordFingerprint returns a short digest of the current password hash.
// It changes whenever the password changes, which lets reset tokens expire on use.
func (a *Account) PasswordFingerprint() string {
	sum := sha256.Sum256([]byte(a.PasswordHash))
	return hex.EncodeToString(sum[:8])
}

// IsLocked returns true if the account is currently locked out.
// INVARIANT: Account fields are not mutated
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account after 5 failures.
// POST: FailedLogins incremented; LockedUntil set if >= 5 failures
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= 5 {
		a.LockedUntil = now.Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
// POST: FailedLogins is 0, LockedUntil is zero
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsActive reports whether the account may sign in.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsCadet reports whether the account belongs on the attendance roster.
// Superadmins, visitors and alumni are not cadets.
func (a *Account) IsCadet() bool {
	if !a.IsActive() {
		return false
	}
	switch a.Role {
	case RoleMember, RoleSubadmin, RoleAdmin:
		return true
	}
	return false
}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether status is one of ValidStatuses.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
