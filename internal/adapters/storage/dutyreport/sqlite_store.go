package dutyreport

import (
	"context"
	"database/sql"
	"errors"

	"cadetportal/internal/adapters/storage"
	domain "cadetportal/internal/domain/dutyreport"
)

const reportColumns = "id, cadet_id, cadet_name, register_number, rank, date, duty_type, location, start_time, end_time, observations, created_at, created_by"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new duty report store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a report.
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Report, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+reportColumns+" FROM duty_report WHERE id = ?", id)
	r, err := scanReport(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Report{}, domain.ErrNotFound
	}
	return r, err
}

// Save persists a report (insert or update).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, r domain.Report) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO duty_report (`+reportColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET date = excluded.date, duty_type = excluded.duty_type,
			location = excluded.location, start_time = excluded.start_time, end_time = excluded.end_time,
			observations = excluded.observations`,
		r.ID, r.CadetID, r.CadetName, r.RegisterNumber, r.Rank, r.Date, r.DutyType, r.Location,
		r.StartTime, r.EndTime, r.Observations, storage.FormatTime(r.CreatedAt), r.CreatedBy)
	return err
}

// Delete removes a report.
// POST: domain.ErrNotFound when nothing matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM duty_report WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns reports ordered by duty date descending.
func (s *SQLiteStore) List(ctx context.Context, cadetID string) ([]domain.Report, error) {
	query := "SELECT " + reportColumns + " FROM duty_report"
	var args []any
	if cadetID != "" {
		query += " WHERE cadet_id = ?"
		args = append(args, cadetID)
	}
	query += " ORDER BY date DESC, start_time DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Report
	for rows.Next() {
		r, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanReport(scan func(dest ...any) error) (domain.Report, error) {
	var r domain.Report
	var createdAt string
	err := scan(&r.ID, &r.CadetID, &r.CadetName, &r.RegisterNumber, &r.Rank, &r.Date, &r.DutyType,
		&r.Location, &r.StartTime, &r.EndTime, &r.Observations, &createdAt, &r.CreatedBy)
	if err != nil {
		return domain.Report{}, err
	}
	r.CreatedAt = storage.ParseTime(createdAt)
	return r, nil
}
