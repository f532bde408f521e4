package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cadetportal/internal/adapters/storage"
	domain "cadetportal/internal/domain/account"
)

var accountColumns = append([]string{
	"id", "email", "password_hash", "role", "status",
	"created_at", "updated_at", "failed_logins", "locked_until", "password_changed_at",
}, storage.ProfileColumns...)

var selectAccount = "SELECT " + strings.Join(accountColumns, ", ") + " FROM account"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new account store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectAccount+" WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	return entity, err
}

// GetByEmail retrieves an Account by normalized email.
// PRE: email is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectAccount+" WHERE email = ?", domain.NormalizeEmail(email))
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, domain.ErrNotFound
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update); a duplicate email returns domain.ErrEmailTaken
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := make([]string, len(accountColumns))
	var updates []string
	for i, col := range accountColumns {
		placeholders[i] = "?"
		if col != "id" && col != "created_at" {
			updates = append(updates, col+"=excluded."+col)
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO account (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		strings.Join(accountColumns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(updates, ", "),
	)

	args := []any{
		entity.ID,
		domain.NormalizeEmail(entity.Email),
		entity.PasswordHash,
		entity.Role,
		entity.Status,
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.UpdatedAt),
		entity.FailedLogins,
		storage.NullableTime(entity.LockedUntil),
		storage.NullableTime(entity.PasswordChangedAt),
	}
	args = append(args, storage.ProfileArgs(entity.Profile)...)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if storage.IsUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("save account: %w", err)
	}
	return tx.Commit()
}

// Delete removes an Account from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
	return err
}

// List retrieves Accounts based on the filter, ordered by name.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	var qb strings.Builder
	var where []string
	var args []any

	qb.WriteString(selectAccount)
	if filter.Role != "" {
		where = append(where, "role = ?")
		args = append(args, filter.Role)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if len(where) > 0 {
		qb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	qb.WriteString(" ORDER BY name COLLATE NOCASE, email")
	if filter.Limit > 0 {
		qb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, filter.Limit, filter.Offset)
	}
	return s.query(ctx, qb.String(), args...)
}

// ListCadets returns every active account holding a cadet role.
// POST: Result ordered by register number
func (s *SQLiteStore) ListCadets(ctx context.Context) ([]domain.Account, error) {
	query := selectAccount + " WHERE status = ? AND role IN (?, ?, ?) ORDER BY register_number COLLATE NOCASE, name"
	return s.query(ctx, query, domain.StatusActive, domain.RoleMember, domain.RoleSubadmin, domain.RoleAdmin)
}

// CountByRole returns how many accounts hold role.
func (s *SQLiteStore) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account WHERE role = ?", role).Scan(&count)
	return count, err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt, updatedAt string
	var lockedUntil, passwordChangedAt sql.NullString
	dest := []any{
		&entity.ID,
		&entity.Email,
		&entity.PasswordHash,
		&entity.Role,
		&entity.Status,
		&createdAt,
		&updatedAt,
		&entity.FailedLogins,
		&lockedUntil,
		&passwordChangedAt,
	}
	dest = append(dest, storage.ProfileDest(&entity.Profile)...)
	if err := scan(dest...); err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt = storage.ParseTime(createdAt)
	entity.UpdatedAt = storage.ParseTime(updatedAt)
	entity.LockedUntil = storage.ParseNullTime(lockedUntil)
	entity.PasswordChangedAt = storage.ParseNullTime(passwordChangedAt)
	return entity, nil
}
