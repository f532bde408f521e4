package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/cadet"
	"cadetportal/internal/domain/registration"
)

// ErrForbidden is returned when the actor may not perform the operation.
var ErrForbidden = errors.New("you do not have permission to do that")

// AccountStoreForAdmin defines the store interface needed by the account management orchestrators.
type AccountStoreForAdmin interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	CountByRole(ctx context.Context, role string) (int, error)
}

// ManageAccountDeps holds dependencies for ChangeRole, SetStatus and UpdateProfile.
type ManageAccountDeps struct {
	Accounts AccountStoreForAdmin
	Notifier ChangeNotifier
	Now      func() time.Time
}

// ChangeRoleInput carries input for the change role orchestrator.
type ChangeRoleInput struct {
	ActorID  string
	TargetID string
	Role     string
}

// ExecuteChangeRole moves an account to a new role.
// PRE: actor and target exist
// POST: target.Role == Role, subject to account.CheckRoleChange
// INVARIANT: At least one and at most account.MaxSuperadmins superadmins exist
func ExecuteChangeRole(ctx context.Context, input ChangeRoleInput, deps ManageAccountDeps) (account.Account, error) {
	actor, target, err := loadActorAndTarget(ctx, deps.Accounts, input.ActorID, input.TargetID)
	if err != nil {
		return account.Account{}, err
	}
	if !account.CanManageUsers(actor.Role) {
		return account.Account{}, ErrForbidden
	}
	superadmins, err := deps.Accounts.CountByRole(ctx, account.RoleSuperadmin)
	if err != nil {
		return account.Account{}, err
	}
	if err := account.CheckRoleChange(actor, target, input.Role, superadmins); err != nil {
		return account.Account{}, err
	}
	if target.Role == input.Role {
		return target, nil
	}

	previous := target.Role
	target.Role = input.Role
	target.UpdatedAt = deps.Now()
	if err := deps.Accounts.Save(ctx, target); err != nil {
		return account.Account{}, err
	}
	slog.Info("account_event", "event", "role_changed", "account_id", target.ID, "from", previous, "to", target.Role, "actor", actor.ID)
	notifierOrNop(deps.Notifier).RosterChanged(ctx)
	return target, nil
}

// SetStatusInput carries input for the set status orchestrator.
type SetStatusInput struct {
	ActorID  string
	TargetID string
	Status   string
}

// ExecuteSetStatus activates or deactivates an account.
// PRE: actor may manage users
// POST: target.Status is active or inactive
func ExecuteSetStatus(ctx context.Context, input SetStatusInput, deps ManageAccountDeps) (account.Account, error) {
	actor, target, err := loadActorAndTarget(ctx, deps.Accounts, input.ActorID, input.TargetID)
	if err != nil {
		return account.Account{}, err
	}
	if !account.CanManageUsers(actor.Role) {
		return account.Account{}, ErrForbidden
	}
	if err := account.CheckStatusChange(actor, target, input.Status); err != nil {
		return account.Account{}, err
	}

	target.Status = input.Status
	target.UpdatedAt = deps.Now()
	if err := deps.Accounts.Save(ctx, target); err != nil {
		return account.Account{}, err
	}
	slog.Info("account_event", "event", "status_changed", "account_id", target.ID, "status", target.Status, "actor", actor.ID)
	notifierOrNop(deps.Notifier).RosterChanged(ctx)
	return target, nil
}

// UpdateProfileInput carries the desired profile for TargetID.
type UpdateProfileInput struct {
	ActorID  string
	TargetID string
	Profile  account.Profile
}

// ExecuteUpdateProfile edits a profile.
// Admins may change every field on any account. Everyone else may change only
// their own name, phone, blood group and address.
// PRE: actor and target exist
// POST: Only permitted fields differ from the stored profile
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps ManageAccountDeps) (account.Account, error) {
	actor, target, err := loadActorAndTarget(ctx, deps.Accounts, input.ActorID, input.TargetID)
	if err != nil {
		return account.Account{}, err
	}

	next := trimProfile(input.Profile)
	var merged account.Profile
	if account.CanManageUsers(actor.Role) {
		merged = next
	} else {
		if actor.ID != target.ID {
			return account.Account{}, ErrForbidden
		}
		merged = target.Profile
		merged.Name = next.Name
		merged.Phone = next.Phone
		merged.BloodGroup = next.BloodGroup
		merged.Address = next.Address
	}

	if strings.TrimSpace(merged.Name) == "" {
		return account.Account{}, registration.ErrEmptyName
	}
	if err := cadet.ValidateCohortFields(merged.Year, merged.Division, merged.Platoon); err != nil {
		return account.Account{}, err
	}
	if err := cadet.ValidateRank(merged.Rank); err != nil {
		return account.Account{}, err
	}

	target.Profile = merged
	target.UpdatedAt = deps.Now()
	if err := target.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := deps.Accounts.Save(ctx, target); err != nil {
		return account.Account{}, err
	}
	slog.Info("account_event", "event", "profile_updated", "account_id", target.ID, "actor", actor.ID)
	notifierOrNop(deps.Notifier).RosterChanged(ctx)
	return target, nil
}

func loadActorAndTarget(ctx context.Context, store AccountStoreForAdmin, actorID, targetID string) (account.Account, account.Account, error) {
	actor, err := store.GetByID(ctx, actorID)
	if err != nil {
		return account.Account{}, account.Account{}, err
	}
	if actorID == targetID {
		return actor, actor, nil
	}
	target, err := store.GetByID(ctx, targetID)
	if err != nil {
		return account.Account{}, account.Account{}, err
	}
	return actor, target, nil
}
