package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cadetportal/internal/domain/account"
)

// AccountStoreForSeed defines the store interface needed by SeedSuperadmin.
type AccountStoreForSeed interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	CountByRole(ctx context.Context, role string) (int, error)
}

// SeedSuperadminDeps holds dependencies for SeedSuperadmin.
type SeedSuperadminDeps struct {
	Accounts   AccountStoreForSeed
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteSeedSuperadmin creates the first superadmin when none exists.
// An existing account with the seed email is promoted instead.
// POST: returns true when an account was created or promoted
func ExecuteSeedSuperadmin(ctx context.Context, email, password string, deps SeedSuperadminDeps) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := deps.Accounts.CountByRole(ctx, account.RoleSuperadmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	now := deps.Now()
	acct, err := deps.Accounts.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, account.ErrNotFound):
		acct = account.Account{
			ID:        deps.GenerateID(),
			Email:     account.NormalizeEmail(email),
			CreatedAt: now,
			Profile:   account.Profile{Name: "Superadmin"},
		}
	case err != nil:
		return false, err
	}

	if err := acct.SetPassword(password); err != nil {
		return false, err
	}
	acct.Role = account.RoleSuperadmin
	acct.Status = account.StatusActive
	acct.UpdatedAt = now
	acct.PasswordChangedAt = now
	if err := acct.Validate(); err != nil {
		return false, err
	}
	if err := deps.Accounts.Save(ctx, acct); err != nil {
		return false, err
	}
	slog.Info("auth_event", "event", "superadmin_seeded", "account_id", acct.ID, "email", acct.Email)
	return true, nil
}
