package cms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cadetportal/internal/adapters/storage"
	domain "cadetportal/internal/domain/cms"
)

// SQLiteStore implements Store using SQLite. Sections are kept as a JSON array.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new page store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves a page by key.
// POST: Returns the page or domain.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, key string) (domain.Page, error) {
	var p domain.Page
	var sections, updatedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT key, title, sections, visibility, updated_at, updated_by FROM cms_page WHERE key = ?", key,
	).Scan(&p.Key, &p.Title, &sections, &p.Visibility, &updatedAt, &p.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Page{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Page{}, err
	}
	if err := json.Unmarshal([]byte(sections), &p.Sections); err != nil {
		return domain.Page{}, fmt.Errorf("decode sections for %s: %w", key, err)
	}
	p.UpdatedAt = storage.ParseTime(updatedAt)
	return p, nil
}

// Save replaces the stored page.
// PRE: page has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Page) error {
	sections := p.Sections
	if sections == nil {
		sections = []domain.Section{}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO cms_page (key, title, sections, visibility, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET title = excluded.title, sections = excluded.sections,
			visibility = excluded.visibility, updated_at = excluded.updated_at, updated_by = excluded.updated_by`,
		p.Key, p.Title, string(raw), p.Visibility, storage.FormatTime(p.UpdatedAt), p.UpdatedBy)
	return err
}
