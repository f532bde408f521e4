package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	emailAdapter "cadetportal/internal/adapters/email"
	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/registration"
)

// PendingStore defines the store interface needed by the registration orchestrators.
type PendingStore interface {
	GetByID(ctx context.Context, id string) (registration.Pending, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, p registration.Pending) error
	Delete(ctx context.Context, id string) error
}

// AccountLookup finds accounts by email.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// AccountWriter persists accounts.
type AccountWriter interface {
	Save(ctx context.Context, a account.Account) error
}

// AccountRegistrar finds and persists accounts during approval.
type AccountRegistrar interface {
	AccountLookup
	AccountWriter
}

// RegisterInput carries a self-service registration.
type RegisterInput struct {
	Email    string
	Password string
	Profile  account.Profile
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	Pending    PendingStore
	Accounts   AccountLookup
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteRegister stores a pending registration awaiting approval.
// PRE: name, email, password (>= 8 chars), year, division and register number supplied
// POST: A pending registration with a bcrypt hash exists; duplicates return account.ErrEmailTaken
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (registration.Pending, error) {
	email := account.NormalizeEmail(input.Email)
	if err := account.ValidateEmail(email); err != nil {
		return registration.Pending{}, err
	}
	if len(input.Password) < account.MinPasswordLength {
		return registration.Pending{}, account.ErrPasswordTooShort
	}

	// The hash is computed once validation and duplicate checks pass.
	p := registration.Pending{
		ID:           deps.GenerateID(),
		Email:        email,
		PasswordHash: "unset",
		Profile:      trimProfile(input.Profile),
		CreatedAt:    deps.Now(),
	}
	if err := p.Validate(); err != nil {
		return registration.Pending{}, err
	}

	if _, err := deps.Accounts.GetByEmail(ctx, email); err == nil {
		return registration.Pending{}, account.ErrEmailTaken
	} else if !errors.Is(err, account.ErrNotFound) {
		return registration.Pending{}, err
	}
	exists, err := deps.Pending.ExistsByEmail(ctx, email)
	if err != nil {
		return registration.Pending{}, err
	}
	if exists {
		return registration.Pending{}, account.ErrEmailTaken
	}

	hash, err := account.HashPassword(input.Password)
	if err != nil {
		return registration.Pending{}, err
	}
	p.PasswordHash = hash

	if err := deps.Pending.Save(ctx, p); err != nil {
		return registration.Pending{}, err
	}
	slog.Info("auth_event", "event", "registration_submitted", "pending_id", p.ID, "year", p.Profile.Year, "division", p.Profile.Division)
	return p, nil
}

// ReviewDeps holds dependencies for ApproveRegistration and RejectRegistration.
type ReviewDeps struct {
	Pending    PendingStore
	Accounts   AccountRegistrar
	Mailer     Mailer
	Notifier   ChangeNotifier
	GenerateID func() string
	Now        func() time.Time
	LoginURL   string
}

// ExecuteApproveRegistration turns a pending registration into an active member account.
// PRE: pendingID references a pending registration
// POST: Account exists with role member, status active, rank CDT; the pending record is gone
// POST: Retrying after the account was saved returns that account without a second email
func ExecuteApproveRegistration(ctx context.Context, pendingID, actorID string, deps ReviewDeps) (account.Account, error) {
	p, err := deps.Pending.GetByID(ctx, pendingID)
	if err != nil {
		return account.Account{}, err
	}

	existing, err := deps.Accounts.GetByEmail(ctx, p.Email)
	switch {
	case err == nil:
		if err := deps.Pending.Delete(ctx, p.ID); err != nil {
			return account.Account{}, fmt.Errorf("remove approved registration: %w", err)
		}
		slog.Info("auth_event", "event", "registration_already_approved", "pending_id", p.ID, "account_id", existing.ID, "actor", actorID)
		return existing, nil
	case !errors.Is(err, account.ErrNotFound):
		return account.Account{}, err
	}

	acct := p.ToAccount(deps.GenerateID(), deps.Now())
	if err := deps.Accounts.Save(ctx, acct); err != nil {
		return account.Account{}, err
	}
	if err := deps.Pending.Delete(ctx, p.ID); err != nil {
		return account.Account{}, fmt.Errorf("remove approved registration: %w", err)
	}

	slog.Info("auth_event", "event", "registration_approved", "pending_id", p.ID, "account_id", acct.ID, "actor", actorID)
	notifierOrNop(deps.Notifier).RosterChanged(ctx)
	notify(ctx, deps.Mailer, emailAdapter.SendRequest{
		To:      []string{acct.Email},
		Subject: "Your cadet portal account is active",
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>Your registration has been approved. You can now <a href=\"%s\">sign in</a>.</p>",
			html.EscapeString(acct.Profile.Name), deps.LoginURL),
	})
	return acct, nil
}

// ExecuteRejectRegistration deletes a pending registration and tells the applicant.
// PRE: pendingID references a pending registration
// POST: The pending record is gone
func ExecuteRejectRegistration(ctx context.Context, pendingID, actorID string, deps ReviewDeps) error {
	p, err := deps.Pending.GetByID(ctx, pendingID)
	if err != nil {
		return err
	}
	if err := deps.Pending.Delete(ctx, p.ID); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "registration_rejected", "pending_id", p.ID, "actor", actorID)
	notify(ctx, deps.Mailer, emailAdapter.SendRequest{
		To:      []string{p.Email},
		Subject: "Your cadet portal registration",
		HTML: fmt.Sprintf("<p>Hello %s,</p><p>Your registration could not be approved. Please contact your unit office.</p>",
			html.EscapeString(p.Profile.Name)),
	})
	return nil
}

// notify sends best-effort mail; delivery failures are logged, never returned.
func notify(ctx context.Context, m Mailer, req emailAdapter.SendRequest) {
	if m == nil {
		return
	}
	if _, err := m.Send(ctx, req); err != nil {
		slog.Warn("email_event", "event", "send_failed", "subject", req.Subject, "error", err)
	}
}

func trimProfile(p account.Profile) account.Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.RegisterNumber = strings.TrimSpace(p.RegisterNumber)
	p.RegimentalNumber = strings.TrimSpace(p.RegimentalNumber)
	p.Department = strings.TrimSpace(p.Department)
	p.RollNo = strings.TrimSpace(p.RollNo)
	p.BloodGroup = strings.TrimSpace(p.BloodGroup)
	p.Address = strings.TrimSpace(p.Address)
	return p
}
