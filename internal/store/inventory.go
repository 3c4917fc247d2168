package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/noamsh/makolet/internal/model"
)

type InventoryStore struct {
	db *sql.DB
}

func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func scanInventoryItem(scanner interface{ Scan(...any) error }) (*model.InventoryItem, error) {
	var item model.InventoryItem
	var expiration sql.NullTime
	err := scanner.Scan(
		&item.ID, &item.Name, &item.Category, &item.Quantity,
		&item.MinQuantity, &expiration, &item.LastRestocked, &item.Notes,
	)
	if err != nil {
		return nil, err
	}
	if expiration.Valid {
		item.ExpirationDate = &expiration.Time
	}
	return &item, nil
}

const inventoryCols = `id, name, category, quantity, min_quantity, expiration_date, last_restocked, notes`

func (s *InventoryStore) Create(item model.InventoryItem) (*model.InventoryItem, error) {
	if item.LastRestocked.IsZero() {
		item.LastRestocked = time.Now().UTC()
	}
	if item.MinQuantity == 0 {
		item.MinQuantity = 1
	}
	result, err := s.db.Exec(
		`INSERT INTO inventory_items (name, category, quantity, min_quantity, expiration_date, last_restocked, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.Quantity, item.MinQuantity, nullTime(item.ExpirationDate), item.LastRestocked, item.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// InsertWithID inserts a row preserving its original identifier (snapshot
// import).
func (s *InventoryStore) InsertWithID(item model.InventoryItem) error {
	_, err := s.db.Exec(
		`INSERT INTO inventory_items (`+inventoryCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Category, item.Quantity, item.MinQuantity,
		nullTime(item.ExpirationDate), item.LastRestocked, item.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert inventory item with id: %w", err)
	}
	return nil
}

func (s *InventoryStore) GetByID(id int64) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE id = ?`, id)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

func (s *InventoryStore) List() ([]model.InventoryItem, error) {
	rows, err := s.db.Query(`SELECT ` + inventoryCols + ` FROM inventory_items ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FindByName returns the inventory item with the given name
// (case-insensitive), or nil. At most one exists per name.
func (s *InventoryStore) FindByName(name string) (*model.InventoryItem, error) {
	row := s.db.QueryRow(`SELECT `+inventoryCols+` FROM inventory_items WHERE name = ? COLLATE NOCASE LIMIT 1`, name)
	item, err := scanInventoryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find inventory item by name: %w", err)
	}
	return item, nil
}

func (s *InventoryStore) Update(item model.InventoryItem) (*model.InventoryItem, error) {
	_, err := s.db.Exec(
		`UPDATE inventory_items SET name = ?, category = ?, quantity = ?, min_quantity = ?, expiration_date = ?, notes = ? WHERE id = ?`,
		item.Name, item.Category, item.Quantity, item.MinQuantity, nullTime(item.ExpirationDate), item.Notes, item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}
	return s.GetByID(item.ID)
}

// SetQuantity writes an absolute quantity. When restocked is true the
// last_restocked timestamp moves to now.
func (s *InventoryStore) SetQuantity(id int64, quantity float64, restocked bool) error {
	var err error
	if restocked {
		_, err = s.db.Exec(
			`UPDATE inventory_items SET quantity = ?, last_restocked = ? WHERE id = ?`,
			quantity, time.Now().UTC(), id,
		)
	} else {
		_, err = s.db.Exec(`UPDATE inventory_items SET quantity = ? WHERE id = ?`, quantity, id)
	}
	if err != nil {
		return fmt.Errorf("set inventory quantity: %w", err)
	}
	return nil
}

func (s *InventoryStore) SetMinQuantity(id int64, minQuantity float64) error {
	_, err := s.db.Exec(`UPDATE inventory_items SET min_quantity = ? WHERE id = ?`, minQuantity, id)
	if err != nil {
		return fmt.Errorf("set min quantity: %w", err)
	}
	return nil
}

func (s *InventoryStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
