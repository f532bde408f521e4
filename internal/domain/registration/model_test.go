package registration_test

import (
	"testing"
	"time"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/registration"
)

func validPending() registration.Pending {
	return registration.Pending{
		ID:           "p1",
		Email:        "cadet@unit.org",
		PasswordHash: "$2a$12$hash",
		Profile: account.Profile{
			Name:           "Asha Rao",
			RegisterNumber: "R100",
			Year:           "2nd Year",
			Division:       "SD",
			Platoon:        "Alpha",
		},
	}
}

// TestPending_Validate tests validation of Pending.
func TestPending_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *registration.Pending)
		wantErr bool
	}{
		{"valid", func(p *registration.Pending) {}, false},
		{"no name", func(p *registration.Pending) { p.Profile.Name = "" }, true},
		{"bad email", func(p *registration.Pending) { p.Email = "nope" }, true},
		{"no hash", func(p *registration.Pending) { p.PasswordHash = "" }, true},
		{"no register number", func(p *registration.Pending) { p.Profile.RegisterNumber = "" }, true},
		{"no division", func(p *registration.Pending) { p.Profile.Division = "" }, true},
		{"bad platoon", func(p *registration.Pending) { p.Profile.Platoon = "Echo" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPending()
			tt.mutate(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestPending_ToAccount tests the account created on approval.
func TestPending_ToAccount(t *testing.T) {
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	p := validPending()
	a := p.ToAccount("acct-1", now)

	if a.Role != account.RoleMember || a.Status != account.StatusActive {
		t.Errorf("expected active member, got %s/%s", a.Role, a.Status)
	}
	if a.Profile.Rank != account.DefaultRank {
		t.Errorf("expected default rank %s, got %s", account.DefaultRank, a.Profile.Rank)
	}
	if a.PasswordHash != p.PasswordHash || a.Email != p.Email {
		t.Error("expected credentials to carry over")
	}
	if !a.IsCadet() {
		t.Error("approved registration should be on the roster")
	}
}
