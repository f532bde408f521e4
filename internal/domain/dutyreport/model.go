package dutyreport

import (
	"errors"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// MaxObservationsLength bounds the free-text observations field.
const MaxObservationsLength = 4000

var (
	ErrEmptyCadet       = errors.New("duty report must reference a cadet")
	ErrInvalidDate      = errors.New("duty date must be YYYY-MM-DD")
	ErrEmptyDutyType    = errors.New("duty type is required")
	ErrEmptyLocation    = errors.New("duty location is required")
	ErrInvalidTime      = errors.New("start and end time must be HH:MM")
	ErrEndBeforeStart   = errors.New("end time cannot be before start time")
	ErrObservationsLong = errors.New("observations cannot exceed 4000 characters")
	ErrNotFound         = errors.New("duty report not found")
)

// Report records one on-duty assignment carried out by a cadet.
// CadetName, RegisterNumber and Rank are captured when the report is filed.
type Report struct {
	ID             string    `json:"id"`
	CadetID        string    `json:"cadetId"`
	CadetName      string    `json:"cadetName"`
	RegisterNumber string    `json:"registerNumber"`
	Rank           string    `json:"rank,omitempty"`
	Date           string    `json:"date"`
	DutyType       string    `json:"dutyType"`
	Location       string    `json:"location"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	Observations   string    `json:"observations"`
	CreatedAt      time.Time `json:"createdAt"`
	CreatedBy      string    `json:"createdBy"`
}

// Validate checks if the Report has valid data.
// PRE: Report struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Report) Validate() error {
	if r.CadetID == "" {
		return ErrEmptyCadet
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return ErrInvalidDate
	}
	if strings.TrimSpace(r.DutyType) == "" {
		return ErrEmptyDutyType
	}
	if strings.TrimSpace(r.Location) == "" {
		return ErrEmptyLocation
	}
	start, err := time.Parse(clockLayout, r.StartTime)
	if err != nil {
		return ErrInvalidTime
	}
	end, err := time.Parse(clockLayout, r.EndTime)
	if err != nil {
		return ErrInvalidTime
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	if len(r.Observations) > MaxObservationsLength {
		return ErrObservationsLong
	}
	return nil
}
