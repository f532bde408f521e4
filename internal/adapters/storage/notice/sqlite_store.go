package notice

import (
	"context"
	"database/sql"
	"errors"

	"cadetportal/internal/adapters/storage"
	domain "cadetportal/internal/domain/notice"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new announcement store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an announcement.
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Notice, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, title, body, author_name, created_by, created_at FROM notice WHERE id = ?", id)
	n, err := scanNotice(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notice{}, domain.ErrNotFound
	}
	return n, err
}

// Save persists an announcement (insert or update).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, n domain.Notice) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO notice (id, title, body, author_name, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, body = excluded.body`,
		n.ID, n.Title, n.Body, n.AuthorName, n.CreatedBy, storage.FormatTime(n.CreatedAt))
	return err
}

// Delete removes an announcement.
// POST: domain.ErrNotFound when nothing matched
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notice WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns announcements newest first. limit <= 0 returns all.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]domain.Notice, error) {
	query := "SELECT id, title, body, author_name, created_by, created_at FROM notice ORDER BY created_at DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Notice
	for rows.Next() {
		n, err := scanNotice(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

func scanNotice(scan func(dest ...any) error) (domain.Notice, error) {
	var n domain.Notice
	var createdAt string
	if err := scan(&n.ID, &n.Title, &n.Body, &n.AuthorName, &n.CreatedBy, &createdAt); err != nil {
		return domain.Notice{}, err
	}
	n.CreatedAt = storage.ParseTime(createdAt)
	return n, nil
}
