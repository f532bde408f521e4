package account

// Role predicates are pure functions of a role string so they can be
// evaluated against any session value without touching global state.

// CanManageAttendance reports whether role may create, mark, lock and delete sessions.
func CanManageAttendance(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}

// CanManageUsers reports whether role may approve registrations and edit accounts.
func CanManageUsers(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}

// CanEditContent reports whether role may publish announcements and CMS pages.
func CanEditContent(role string) bool {
	return role == RoleAdmin || role == RoleSuperadmin
}

// CanFileDutyReports reports whether role may record on-duty reports.
func CanFileDutyReports(role string) bool {
	return role == RoleSubadmin || role == RoleAdmin || role == RoleSuperadmin
}

// CanViewOwnAttendance reports whether role has an attendance history to view.
func CanViewOwnAttendance(role string) bool {
	switch role {
	case RoleMember, RoleSubadmin, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// CheckRoleChange applies the role assignment rules.
// PRE: actor and target are loaded accounts; superadmins is the current superadmin count
// POST: returns nil when actor may move target to newRole
func CheckRoleChange(actor, target Account, newRole string, superadmins int) error {
	if !IsValidRole(newRole) {
		return ErrInvalidRole
	}
	if actor.ID == target.ID {
		return ErrSelfRoleChange
	}
	if target.Role == newRole {
		return nil
	}
	touchesSuperadmin := newRole == RoleSuperadmin || target.Role == RoleSuperadmin
	if touchesSuperadmin && actor.Role != RoleSuperadmin {
		return ErrSuperadminOnly
	}
	if newRole == RoleSuperadmin && superadmins >= MaxSuperadmins {
		return ErrSuperadminLimit
	}
	if target.Role == RoleSuperadmin && superadmins <= 1 {
		return ErrLastSuperadmin
	}
	return nil
}

// CheckStatusChange validates an admin moving target between active and inactive.
func CheckStatusChange(actor, target Account, newStatus string) error {
	if actor.ID == target.ID {
		return ErrSelfStatusChange
	}
	if newStatus != StatusActive && newStatus != StatusInactive {
		return ErrInvalidTransition
	}
	if target.Role == RoleSuperadmin && actor.Role != RoleSuperadmin {
		return ErrSuperadminOnly
	}
	return nil
}
