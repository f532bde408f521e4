package account_test

import (
	"errors"
	"testing"
	"time"

	"cadetportal/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr bool
	}{
		{
			name:    "valid member",
			account: account.Account{ID: "1", Email: "cadet@unit.org", Role: account.RoleMember, Status: account.StatusActive},
		},
		{
			name:    "valid superadmin",
			account: account.Account{ID: "2", Email: "co@unit.org", Role: account.RoleSuperadmin, Status: account.StatusActive},
		},
		{
			name:    "empty email",
			account: account.Account{ID: "3", Role: account.RoleMember, Status: account.StatusActive},
			wantErr: true,
		},
		{
			name:    "email without at",
			account: account.Account{ID: "4", Email: "cadet.unit.org", Role: account.RoleMember, Status: account.StatusActive},
			wantErr: true,
		},
		{
			name:    "unknown role",
			account: account.Account{ID: "5", Email: "x@unit.org", Role: "coach", Status: account.StatusActive},
			wantErr: true,
		},
		{
			name:    "unknown status",
			account: account.Account{ID: "6", Email: "x@unit.org", Role: account.RoleMember, Status: "archived"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_SetPassword tests hashing and verification.
func TestAccount_SetPassword(t *testing.T) {
	a := account.Account{}
	if err := a.SetPassword("short"); !errors.Is(err, account.ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword("parade-ground"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.CheckPassword("parade-ground"); err != nil {
		t.Errorf("expected password to verify, got %v", err)
	}
	if err := a.CheckPassword("wrong-password"); !errors.Is(err, account.ErrWrongPassword) {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

// TestAccount_PasswordFingerprint tests the fingerprint changes with the hash.
func TestAccount_PasswordFingerprint(t *testing.T) {
	a := account.Account{PasswordHash: "hash-one"}
	first := a.PasswordFingerprint()
	if first != a.PasswordFingerprint() {
		t.Fatal("fingerprint should be stable")
	}
	a.PasswordHash = "hash-two"
	if first == a.PasswordFingerprint() {
		t.Error("fingerprint should change when the hash changes")
	}
}

// TestAccount_Lockout tests failed login accounting.
func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	a := account.Account{}
	for i := 0; i < 4; i++ {
		a.RecordFailedLogin(now)
	}
	if a.IsLocked(now) {
		t.Fatal("should not lock before 5 failures")
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now) {
		t.Fatal("should lock after 5 failures")
	}
	if a.IsLocked(now.Add(16 * time.Minute)) {
		t.Error("lock should expire after 15 minutes")
	}
	a.ResetFailedLogins()
	if a.FailedLogins != 0 || !a.LockedUntil.IsZero() {
		t.Errorf("expected cleared lockout, got %d / %v", a.FailedLogins, a.LockedUntil)
	}
}

// TestAccount_IsCadet tests roster membership.
func TestAccount_IsCadet(t *testing.T) {
	tests := []struct {
		role   string
		status string
		want   bool
	}{
		{account.RoleMember, account.StatusActive, true},
		{account.RoleSubadmin, account.StatusActive, true},
		{account.RoleAdmin, account.StatusActive, true},
		{account.RoleSuperadmin, account.StatusActive, false},
		{account.RoleVisitor, account.StatusActive, false},
		{account.RoleAlumni, account.StatusActive, false},
		{account.RoleMember, account.StatusInactive, false},
	}
	for _, tt := range tests {
		a := account.Account{Role: tt.role, Status: tt.status}
		if got := a.IsCadet(); got != tt.want {
			t.Errorf("IsCadet(%s, %s) = %v, want %v", tt.role, tt.status, got, tt.want)
		}
	}
}

// TestCheckRoleChange tests the role assignment rules.
func TestCheckRoleChange(t *testing.T) {
	super := account.Account{ID: "s1", Role: account.RoleSuperadmin}
	admin := account.Account{ID: "a1", Role: account.RoleAdmin}
	member := account.Account{ID: "m1", Role: account.RoleMember}
	otherSuper := account.Account{ID: "s2", Role: account.RoleSuperadmin}

	tests := []struct {
		name        string
		actor       account.Account
		target      account.Account
		newRole     string
		superadmins int
		want        error
	}{
		{"admin promotes member to subadmin", admin, member, account.RoleSubadmin, 1, nil},
		{"self change rejected", admin, admin, account.RoleMember, 1, account.ErrSelfRoleChange},
		{"admin cannot grant superadmin", admin, member, account.RoleSuperadmin, 1, account.ErrSuperadminOnly},
		{"admin cannot demote superadmin", admin, otherSuper, account.RoleAdmin, 2, account.ErrSuperadminOnly},
		{"superadmin grants superadmin", super, member, account.RoleSuperadmin, 1, nil},
		{"superadmin limit", super, member, account.RoleSuperadmin, account.MaxSuperadmins, account.ErrSuperadminLimit},
		{"last superadmin protected", super, otherSuper, account.RoleAdmin, 1, account.ErrLastSuperadmin},
		{"superadmin demotes peer", super, otherSuper, account.RoleAdmin, 2, nil},
		{"invalid role", super, member, "captain", 1, account.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := account.CheckRoleChange(tt.actor, tt.target, tt.newRole, tt.superadmins)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestRolePredicates tests the pure permission checks.
func TestRolePredicates(t *testing.T) {
	if !account.CanManageAttendance(account.RoleAdmin) || account.CanManageAttendance(account.RoleSubadmin) {
		t.Error("attendance management should be admin and superadmin only")
	}
	if !account.CanFileDutyReports(account.RoleSubadmin) || account.CanFileDutyReports(account.RoleMember) {
		t.Error("duty reports should start at subadmin")
	}
	if account.CanViewOwnAttendance(account.RoleVisitor) || !account.CanViewOwnAttendance(account.RoleMember) {
		t.Error("own attendance should exclude visitors")
	}
}
