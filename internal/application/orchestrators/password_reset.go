package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	emailAdapter "cadetportal/internal/adapters/email"
	"cadetportal/internal/domain/account"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = time.Hour

// ErrInvalidResetToken covers bad signatures, expiry and already-used tokens.
var ErrInvalidResetToken = errors.New("password reset link is invalid or has expired")

type resetClaims struct {
	Fingerprint string `json:"pwf"`
	jwt.RegisteredClaims
}

// AccountStoreForReset defines the store interface needed by the reset orchestrators.
type AccountStoreForReset interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// PasswordResetDeps holds dependencies for the reset orchestrators.
type PasswordResetDeps struct {
	Accounts AccountStoreForReset
	Mailer   Mailer
	Secret   []byte
	ResetURL string // token is appended as ?token=
	Now      func() time.Time
}

// IssueResetToken signs a reset token bound to the current password hash.
// POST: token subject is the account id; it expires after ResetTokenTTL
func IssueResetToken(acct account.Account, secret []byte, now time.Time) (string, error) {
	claims := resetClaims{
		Fingerprint: acct.PasswordFingerprint(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ResetTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseResetToken(token string, secret []byte, now func() time.Time) (resetClaims, error) {
	var claims resetClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now), jwt.WithExpirationRequired())
	if err != nil {
		return resetClaims{}, ErrInvalidResetToken
	}
	return claims, nil
}

// ExecuteRequestPasswordReset emails a reset link when email belongs to an account.
// Unknown addresses succeed silently.
// POST: returns nil unless the store fails
func ExecuteRequestPasswordReset(ctx context.Context, email string, deps PasswordResetDeps) error {
	acct, err := deps.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, account.ErrNotFound) {
		slog.Info("auth_event", "event", "password_reset_requested", "known", false)
		return nil
	}
	if err != nil {
		return err
	}

	token, err := IssueResetToken(acct, deps.Secret, deps.Now())
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	link := deps.ResetURL + "?token=" + url.QueryEscape(token)

	slog.Info("auth_event", "event", "password_reset_requested", "known", true, "account_id", acct.ID)
	notify(ctx, deps.Mailer, emailAdapter.SendRequest{
		To:      []string{acct.Email},
		Subject: "Reset your cadet portal password",
		HTML:    fmt.Sprintf("<p>Use <a href=\"%s\">this link</a> within one hour to choose a new password.</p>", link),
	})
	return nil
}

// ExecuteConfirmPasswordReset sets a new password from a valid reset token.
// PRE: token was issued by IssueResetToken for the account's current password
// POST: password hash replaced and lockout cleared; the token no longer verifies
func ExecuteConfirmPasswordReset(ctx context.Context, token, newPassword string, deps PasswordResetDeps) error {
	claims, err := parseResetToken(token, deps.Secret, deps.Now)
	if err != nil {
		return err
	}
	acct, err := deps.Accounts.GetByID(ctx, claims.Subject)
	if errors.Is(err, account.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if claims.Fingerprint != acct.PasswordFingerprint() {
		return ErrInvalidResetToken
	}

	if err := acct.SetPassword(newPassword); err != nil {
		return err
	}
	now := deps.Now()
	acct.ResetFailedLogins()
	acct.PasswordChangedAt = now
	acct.UpdatedAt = now
	if err := deps.Accounts.Save(ctx, acct); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "password_reset_completed", "account_id", acct.ID)
	return nil
}
