package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"cadetportal/internal/domain/account"
	"cadetportal/internal/domain/dutyreport"
)

// DutyReportStore defines the store interface needed by the duty report orchestrators.
type DutyReportStore interface {
	Save(ctx context.Context, r dutyreport.Report) error
	Delete(ctx context.Context, id string) error
}

// AccountReader loads accounts by id.
type AccountReader interface {
	GetByID(ctx context.Context, id string) (account.Account, error)
}

// CreateDutyReportInput carries input for the create duty report orchestrator.
type CreateDutyReportInput struct {
	CadetID      string
	Date         string
	DutyType     string
	Location     string
	StartTime    string
	EndTime      string
	Observations string
	ActorID      string
}

// DutyReportDeps holds dependencies for the duty report orchestrators.
type DutyReportDeps struct {
	Reports    DutyReportStore
	Accounts   AccountReader
	GenerateID func() string
	Now        func() time.Time
}

// ExecuteCreateDutyReport files a duty report against a cadet.
// PRE: CadetID references an existing account
// POST: Report persisted with the cadet's name, register number and rank as of now
func ExecuteCreateDutyReport(ctx context.Context, input CreateDutyReportInput, deps DutyReportDeps) (dutyreport.Report, error) {
	subject, err := deps.Accounts.GetByID(ctx, input.CadetID)
	if err != nil {
		return dutyreport.Report{}, err
	}
	r := dutyreport.Report{
		ID:             deps.GenerateID(),
		CadetID:        subject.ID,
		CadetName:      subject.Profile.Name,
		RegisterNumber: subject.Profile.RegisterNumber,
		Rank:           subject.Profile.Rank,
		Date:           strings.TrimSpace(input.Date),
		DutyType:       strings.TrimSpace(input.DutyType),
		Location:       strings.TrimSpace(input.Location),
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Observations:   strings.TrimSpace(input.Observations),
		CreatedAt:      deps.Now(),
		CreatedBy:      input.ActorID,
	}
	if err := r.Validate(); err != nil {
		return dutyreport.Report{}, err
	}
	if err := deps.Reports.Save(ctx, r); err != nil {
		return dutyreport.Report{}, err
	}
	slog.Info("duty_event", "event", "duty_report_created", "report_id", r.ID, "cadet_id", r.CadetID, "actor", r.CreatedBy)
	return r, nil
}

// ExecuteDeleteDutyReport removes a duty report.
func ExecuteDeleteDutyReport(ctx context.Context, id, actorID string, deps DutyReportDeps) error {
	if err := deps.Reports.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("duty_event", "event", "duty_report_deleted", "report_id", id, "actor", actorID)
	return nil
}
