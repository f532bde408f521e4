package cadet

import (
	"errors"
	"sort"
	"strings"

	"cadetportal/internal/domain/account"
)

// Academic year cohort labels.
const (
	Year1 = "1st Year"
	Year2 = "2nd Year"
	Year3 = "3rd Year"
	Year4 = "4th Year"
)

// Division cohort labels.
const (
	DivisionSD = "SD"
	DivisionSW = "SW"
)

// ValidYears lists the accepted academic years.
var ValidYears = []string{Year1, Year2, Year3, Year4}

// ValidDivisions lists the accepted divisions.
var ValidDivisions = []string{DivisionSD, DivisionSW}

// ValidPlatoons lists the accepted platoons.
var ValidPlatoons = []string{"Alpha", "Bravo", "Charlie", "Delta"}

// ValidRanks lists cadet ranks from lowest to highest.
var ValidRanks = []string{"CDT", "LCPL", "CPL", "SGT", "CQMS", "CSM", "JUO", "SUO"}

var (
	ErrInvalidYear     = errors.New("year must be one of: 1st Year, 2nd Year, 3rd Year, 4th Year")
	ErrInvalidDivision = errors.New("division must be one of: SD, SW")
	ErrInvalidPlatoon  = errors.New("platoon must be one of: Alpha, Bravo, Charlie, Delta")
	ErrInvalidRank     = errors.New("rank is not a recognised cadet rank")
)

// Cadet is the read-only roster view of an active account.
type Cadet struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	RegisterNumber   string `json:"registerNumber"`
	RegimentalNumber string `json:"regimentalNumber"`
	Platoon          string `json:"platoon"`
	Year             string `json:"year"`
	Division         string `json:"division"`
	Department       string `json:"department"`
	RollNo           string `json:"rollNo"`
	Rank             string `json:"rank"`
	Phone            string `json:"phone"`
}

// Cohort is the (academic year, division) pair a session is scoped to.
type Cohort struct {
	Year     string
	Division string
}

// FromAccount projects an account onto the roster view.
func FromAccount(a account.Account) Cadet {
	return Cadet{
		ID:               a.ID,
		Name:             a.Profile.Name,
		Email:            a.Email,
		RegisterNumber:   a.Profile.RegisterNumber,
		RegimentalNumber: a.Profile.RegimentalNumber,
		Platoon:          a.Profile.Platoon,
		Year:             a.Profile.Year,
		Division:         a.Profile.Division,
		Department:       a.Profile.Department,
		RollNo:           a.Profile.RollNo,
		Rank:             a.Profile.Rank,
		Phone:            a.Profile.Phone,
	}
}

// Roster returns the cadets among accounts, in input order.
func Roster(accounts []account.Account) []Cadet {
	out := make([]Cadet, 0, len(accounts))
	for _, a := range accounts {
		if a.IsCadet() {
			out = append(out, FromAccount(a))
		}
	}
	return out
}

// Eligible reports whether c belongs to the cohort.
// An unset year or division on the cohort matches every cadet.
func (c Cohort) Eligible(cd Cadet) bool {
	if c.Year != "" && cd.Year != c.Year {
		return false
	}
	if c.Division != "" && cd.Division != c.Division {
		return false
	}
	return true
}

// Filter returns the eligible cadets of roster, preserving order.
// INVARIANT: roster is not modified
func (c Cohort) Filter(roster []Cadet) []Cadet {
	out := make([]Cadet, 0, len(roster))
	for _, cd := range roster {
		if c.Eligible(cd) {
			out = append(out, cd)
		}
	}
	return out
}

// SortByRegisterNumber orders cadets by register number, then name.
func SortByRegisterNumber(cadets []Cadet) {
	sort.SliceStable(cadets, func(i, j int) bool {
		a, b := cadets[i].RegisterNumber, cadets[j].RegisterNumber
		if a != b {
			return strings.ToLower(a) < strings.ToLower(b)
		}
		return cadets[i].Name < cadets[j].Name
	})
}

// ValidateCohortFields checks year, division and platoon labels.
// Empty values are accepted; required-ness is decided by the caller.
func ValidateCohortFields(year, division, platoon string) error {
	if year != "" && !contains(ValidYears, year) {
		return ErrInvalidYear
	}
	if division != "" && !contains(ValidDivisions, division) {
		return ErrInvalidDivision
	}
	if platoon != "" && !contains(ValidPlatoons, platoon) {
		return ErrInvalidPlatoon
	}
	return nil
}

// ValidateRank checks a rank label. Empty is accepted.
func ValidateRank(rank string) error {
	if rank != "" && !contains(ValidRanks, rank) {
		return ErrInvalidRank
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
