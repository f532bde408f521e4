package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cadetportal/internal/adapters/storage"
	domain "cadetportal/internal/domain/attendance"
)

const sessionColumns = "id, title, date, type, year, division, platoon, location, created_at, created_by, locked, total_cadets"

const upsertMark = `INSERT INTO attendance_mark (session_id, cadet_id, status, timestamp)
	SELECT ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM attendance_session WHERE id = ? AND locked = 0)
	ON CONFLICT(session_id, cadet_id) DO UPDATE SET status = excluded.status, timestamp = excluded.timestamp`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// CreateWithMarks inserts a session together with its initial marks.
// PRE: session has been validated; every mark references session.ID
// POST: Either the session and all marks exist, or nothing was written
func (s *SQLiteStore) CreateWithMarks(ctx context.Context, session domain.Session, marks []domain.Mark) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO attendance_session (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Title, session.Date, session.Type, session.Year, session.Division,
		session.Platoon, session.Location, storage.FormatTime(session.CreatedAt), session.CreatedBy,
		boolToInt(session.Locked), session.TotalCadets,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO attendance_mark (session_id, cadet_id, status, timestamp) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range marks {
		if _, err := stmt.ExecContext(ctx, session.ID, m.CadetID, m.Status, storage.FormatTime(m.Timestamp)); err != nil {
			return fmt.Errorf("insert mark %s: %w", m.CadetID, err)
		}
	}
	return tx.Commit()
}

// GetByID retrieves a session.
// PRE: id is non-empty
// POST: Returns the session or domain.ErrSessionNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM attendance_session WHERE id = ?", id)
	session, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, err
}

// List returns sessions newest first.
// POST: Ordered by date descending, then creation time descending
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Session, error) {
	query := "SELECT " + sessionColumns + " FROM attendance_session WHERE 1 = 1"
	var args []any
	if filter.Year != "" {
		query += " AND year = ?"
		args = append(args, filter.Year)
	}
	if filter.Division != "" {
		query += " AND division = ?"
		args = append(args, filter.Division)
	}
	query += " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Session
	for rows.Next() {
		session, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, session)
	}
	return results, rows.Err()
}

// Lock marks a session locked.
// PRE: id is non-empty
// POST: locked = 1; locking an already locked session succeeds
func (s *SQLiteStore) Lock(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE attendance_session SET locked = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Delete removes a session and every mark recorded against it.
// PRE: id is non-empty
// POST: No session or mark rows remain for id
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM attendance_mark WHERE session_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM attendance_session WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// SetMark upserts one mark if the session exists and is unlocked.
// PRE: mark has been validated
// POST: Mark is persisted, or ErrSessionLocked / ErrSessionNotFound is returned and nothing changed
// INVARIANT: A locked session never receives a mark write
func (s *SQLiteStore) SetMark(ctx context.Context, m domain.Mark) error {
	res, err := s.db.ExecContext(ctx, upsertMark, m.SessionID, m.CadetID, m.Status, storage.FormatTime(m.Timestamp), m.SessionID)
	if err != nil {
		return fmt.Errorf("set mark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	session, err := s.GetByID(ctx, m.SessionID)
	if err != nil {
		return err
	}
	if session.Locked {
		return domain.ErrSessionLocked
	}
	return fmt.Errorf("set mark: no row written for %s/%s", m.SessionID, m.CadetID)
}

// SetMarks upserts a batch of marks for one session in a single transaction.
// PRE: every mark references sessionID
// POST: Either every mark is written or none is
func (s *SQLiteStore) SetMarks(ctx context.Context, sessionID string, marks []domain.Mark) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked int
	err = tx.QueryRowContext(ctx, "SELECT locked FROM attendance_session WHERE id = ?", sessionID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if locked != 0 {
		return domain.ErrSessionLocked
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO attendance_mark (session_id, cadet_id, status, timestamp) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, cadet_id) DO UPDATE SET status = excluded.status, timestamp = excluded.timestamp`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range marks {
		if _, err := stmt.ExecContext(ctx, sessionID, m.CadetID, m.Status, storage.FormatTime(m.Timestamp)); err != nil {
			return fmt.Errorf("set mark %s: %w", m.CadetID, err)
		}
	}
	return tx.Commit()
}

// GetMark retrieves one cadet's mark in a session.
// POST: Returns the mark or domain.ErrMarkNotFound
func (s *SQLiteStore) GetMark(ctx context.Context, sessionID, cadetID string) (domain.Mark, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT session_id, cadet_id, status, timestamp FROM attendance_mark WHERE session_id = ? AND cadet_id = ?",
		sessionID, cadetID)
	m, err := scanMark(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Mark{}, domain.ErrMarkNotFound
	}
	return m, err
}

// ListMarks returns every mark recorded for a session.
func (s *SQLiteStore) ListMarks(ctx context.Context, sessionID string) ([]domain.Mark, error) {
	return s.queryMarks(ctx, "SELECT session_id, cadet_id, status, timestamp FROM attendance_mark WHERE session_id = ? ORDER BY cadet_id", sessionID)
}

// ListMarksForCadet returns every mark recorded for a cadet across sessions.
func (s *SQLiteStore) ListMarksForCadet(ctx context.Context, cadetID string) ([]domain.Mark, error) {
	return s.queryMarks(ctx, "SELECT session_id, cadet_id, status, timestamp FROM attendance_mark WHERE cadet_id = ? ORDER BY session_id", cadetID)
}

func (s *SQLiteStore) queryMarks(ctx context.Context, query string, arg string) ([]domain.Mark, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Mark
	for rows.Next() {
		m, err := scanMark(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

func scanSession(scan func(dest ...any) error) (domain.Session, error) {
	var session domain.Session
	var createdAt string
	var locked int
	err := scan(
		&session.ID, &session.Title, &session.Date, &session.Type, &session.Year, &session.Division,
		&session.Platoon, &session.Location, &createdAt, &session.CreatedBy, &locked, &session.TotalCadets,
	)
	if err != nil {
		return domain.Session{}, err
	}
	session.CreatedAt = storage.ParseTime(createdAt)
	session.Locked = locked != 0
	return session, nil
}

func scanMark(scan func(dest ...any) error) (domain.Mark, error) {
	var m domain.Mark
	var ts string
	if err := scan(&m.SessionID, &m.CadetID, &m.Status, &ts); err != nil {
		return domain.Mark{}, err
	}
	m.Timestamp = storage.ParseTime(ts)
	return m, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
