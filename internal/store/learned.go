package store

import (
	"database/sql"
	"fmt"

	"github.com/noamsh/makolet/internal/model"
)

// LearnedCategoryStore remembers which category a user assigned to an
// item name, so repeat mentions classify without the keyword tables.
type LearnedCategoryStore struct {
	db *sql.DB
}

func NewLearnedCategoryStore(db *sql.DB) *LearnedCategoryStore {
	return &LearnedCategoryStore{db: db}
}

func (s *LearnedCategoryStore) Set(name string, category model.Category) error {
	_, err := s.db.Exec(
		`INSERT INTO learned_categories (name, category) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET category = excluded.category`,
		name, string(category),
	)
	if err != nil {
		return fmt.Errorf("set learned category: %w", err)
	}
	return nil
}

// Lookup satisfies category.LearnedLookup. Errors read as a miss so
// classification falls through to the keyword rules.
func (s *LearnedCategoryStore) Lookup(name string) (model.Category, bool) {
	row := s.db.QueryRow(`SELECT category FROM learned_categories WHERE name = ? COLLATE NOCASE`, name)
	var cat string
	if err := row.Scan(&cat); err != nil {
		return "", false
	}
	return model.Category(cat), true
}

func (s *LearnedCategoryStore) All() (map[string]model.Category, error) {
	rows, err := s.db.Query(`SELECT name, category FROM learned_categories`)
	if err != nil {
		return nil, fmt.Errorf("list learned categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Category)
	for rows.Next() {
		var name, cat string
		if err := rows.Scan(&name, &cat); err != nil {
			return nil, fmt.Errorf("scan learned category: %w", err)
		}
		out[name] = model.Category(cat)
	}
	return out, rows.Err()
}
