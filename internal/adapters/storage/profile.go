package storage

import (
	"cadetportal/internal/domain/account"
)

// ProfileColumns lists the profile columns shared by account and pending_registration, in scan order.
var ProfileColumns = []string{
	"name", "phone", "register_number", "regimental_number", "platoon", "year", "division",
	"department", "roll_no", "rank", "blood_group", "address", "date_of_birth", "date_of_enrollment",
}

// ProfileArgs returns p's fields in ProfileColumns order.
func ProfileArgs(p account.Profile) []any {
	return []any{
		p.Name, p.Phone, p.RegisterNumber, p.RegimentalNumber, p.Platoon, p.Year, p.Division,
		p.Department, p.RollNo, p.Rank, p.BloodGroup, p.Address, p.DateOfBirth, p.DateOfEnrollment,
	}
}

// ProfileDest returns scan destinations for p in ProfileColumns order.
func ProfileDest(p *account.Profile) []any {
	return []any{
		&p.Name, &p.Phone, &p.RegisterNumber, &p.RegimentalNumber, &p.Platoon, &p.Year, &p.Division,
		&p.Department, &p.RollNo, &p.Rank, &p.BloodGroup, &p.Address, &p.DateOfBirth, &p.DateOfEnrollment,
	}
}
