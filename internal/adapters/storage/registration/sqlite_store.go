package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cadetportal/internal/adapters/storage"
	accountDomain "cadetportal/internal/domain/account"
	domain "cadetportal/internal/domain/registration"
)

var pendingColumns = append([]string{"id", "email", "password_hash", "created_at"}, storage.ProfileColumns...)

var selectPending = "SELECT " + strings.Join(pendingColumns, ", ") + " FROM pending_registration"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new pending registration store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a pending registration.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Pending, error) {
	row := s.db.QueryRowContext(ctx, selectPending+" WHERE id = ?", id)
	p, err := scanPending(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Pending{}, domain.ErrNotFound
	}
	return p, err
}

// ExistsByEmail reports whether a pending registration uses email.
func (s *SQLiteStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_registration WHERE email = ?", accountDomain.NormalizeEmail(email)).Scan(&n)
	return n > 0, err
}

// Save inserts a pending registration.
// PRE: entity has been validated
// POST: Entity is persisted; a duplicate email returns account.ErrEmailTaken
func (s *SQLiteStore) Save(ctx context.Context, p domain.Pending) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(pendingColumns)), ", ")
	query := fmt.Sprintf("INSERT INTO pending_registration (%s) VALUES (%s)", strings.Join(pendingColumns, ", "), placeholders)

	args := []any{p.ID, accountDomain.NormalizeEmail(p.Email), p.PasswordHash, storage.FormatTime(p.CreatedAt)}
	args = append(args, storage.ProfileArgs(p.Profile)...)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if storage.IsUniqueViolation(err) {
			return accountDomain.ErrEmailTaken
		}
		return fmt.Errorf("save pending registration: %w", err)
	}
	return nil
}

// Delete removes a pending registration.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_registration WHERE id = ?", id)
	return err
}

// List returns every pending registration, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Pending, error) {
	rows, err := s.db.QueryContext(ctx, selectPending+" ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Pending
	for rows.Next() {
		p, err := scanPending(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

func scanPending(scan func(dest ...any) error) (domain.Pending, error) {
	var p domain.Pending
	var createdAt string
	dest := append([]any{&p.ID, &p.Email, &p.PasswordHash, &createdAt}, storage.ProfileDest(&p.Profile)...)
	if err := scan(dest...); err != nil {
		return domain.Pending{}, err
	}
	p.CreatedAt = storage.ParseTime(createdAt)
	return p, nil
}
