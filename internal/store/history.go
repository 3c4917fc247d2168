package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/noamsh/makolet/internal/model"
)

type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func scanHistoryEntry(scanner interface{ Scan(...any) error }) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	err := scanner.Scan(&e.ID, &e.Name, &e.Category, &e.Quantity, &e.PurchasedBy, &e.PurchasedDate, &e.Notes)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

const historyCols = `id, name, category, quantity, purchased_by, purchased_date, notes`

// Append adds one entry to the purchase log. The log is append-only;
// there is no update or delete.
func (s *HistoryStore) Append(entry model.HistoryEntry) (*model.HistoryEntry, error) {
	if entry.PurchasedDate.IsZero() {
		entry.PurchasedDate = time.Now().UTC()
	}
	result, err := s.db.Exec(
		`INSERT INTO history_entries (name, category, quantity, purchased_by, purchased_date, notes) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Name, entry.Category, entry.Quantity, entry.PurchasedBy, entry.PurchasedDate, entry.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("append history entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return &entry, nil
}

// InsertWithID inserts an entry preserving its original identifier
// (snapshot import).
func (s *HistoryStore) InsertWithID(entry model.HistoryEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO history_entries (`+historyCols+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.Category, entry.Quantity, entry.PurchasedBy, entry.PurchasedDate, entry.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert history entry with id: %w", err)
	}
	return nil
}

func (s *HistoryStore) GetByID(id int64) (*model.HistoryEntry, error) {
	row := s.db.QueryRow(`SELECT `+historyCols+` FROM history_entries WHERE id = ?`, id)
	e, err := scanHistoryEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history entry: %w", err)
	}
	return e, nil
}

// List returns entries newest first. name, when non-empty, filters
// case-insensitively by substring.
func (s *HistoryStore) List(name string) ([]model.HistoryEntry, error) {
	query := `SELECT ` + historyCols + ` FROM history_entries`
	var args []any
	if name != "" {
		query += ` WHERE name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+name+"%")
	}
	query += ` ORDER BY purchased_date DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
