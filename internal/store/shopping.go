package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/noamsh/makolet/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var purchased int
	err := scanner.Scan(
		&item.ID, &item.Name, &item.Category, &item.Quantity,
		&purchased, &item.AddedBy, &item.AddedDate, &item.Notes,
	)
	if err != nil {
		return nil, err
	}
	item.Purchased = purchased != 0
	return &item, nil
}

const shoppingCols = `id, name, category, quantity, purchased, added_by, added_date, notes`

func (s *ShoppingStore) Create(item model.ShoppingItem) (*model.ShoppingItem, error) {
	if item.AddedDate.IsZero() {
		item.AddedDate = time.Now().UTC()
	}
	result, err := s.db.Exec(
		`INSERT INTO shopping_items (name, category, quantity, purchased, added_by, added_date, notes) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.Quantity, boolToInt(item.Purchased), item.AddedBy, item.AddedDate, item.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// InsertWithID inserts a row preserving its original identifier. Used by
// snapshot import, which unions collections by id.
func (s *ShoppingStore) InsertWithID(item model.ShoppingItem) error {
	_, err := s.db.Exec(
		`INSERT INTO shopping_items (`+shoppingCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Category, item.Quantity, boolToInt(item.Purchased), item.AddedBy, item.AddedDate, item.Notes,
	)
	if err != nil {
		return fmt.Errorf("insert shopping item with id: %w", err)
	}
	return nil
}

func (s *ShoppingStore) GetByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

func (s *ShoppingStore) List() ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(`SELECT ` + shoppingCols + ` FROM shopping_items ORDER BY purchased ASC, added_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// FindUnpurchasedByName returns the unpurchased item with the given name
// (case-insensitive), or nil. The reconciler keeps at most one such row
// per name.
func (s *ShoppingStore) FindUnpurchasedByName(name string) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(
		`SELECT `+shoppingCols+` FROM shopping_items WHERE name = ? COLLATE NOCASE AND purchased = 0 ORDER BY id ASC LIMIT 1`,
		name,
	)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find shopping item by name: %w", err)
	}
	return item, nil
}

func (s *ShoppingStore) Update(item model.ShoppingItem) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET name = ?, category = ?, quantity = ?, purchased = ?, notes = ? WHERE id = ?`,
		item.Name, item.Category, item.Quantity, boolToInt(item.Purchased), item.Notes, item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return s.GetByID(item.ID)
}

func (s *ShoppingStore) AddQuantity(id int64, delta float64) error {
	_, err := s.db.Exec(`UPDATE shopping_items SET quantity = quantity + ? WHERE id = ?`, delta, id)
	if err != nil {
		return fmt.Errorf("add shopping quantity: %w", err)
	}
	return nil
}

func (s *ShoppingStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

// DeleteByName removes every row matching the name, case-insensitively,
// regardless of who added it.
func (s *ShoppingStore) DeleteByName(name string) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE name = ? COLLATE NOCASE`, name)
	if err != nil {
		return fmt.Errorf("delete shopping items by name: %w", err)
	}
	return nil
}

// DeleteAutoByName removes only reconciler-created (added_by = Auto)
// unpurchased rows for the name.
func (s *ShoppingStore) DeleteAutoByName(name string) error {
	_, err := s.db.Exec(
		`DELETE FROM shopping_items WHERE name = ? COLLATE NOCASE AND purchased = 0 AND added_by = ?`,
		name, model.AutoAddedBy,
	)
	if err != nil {
		return fmt.Errorf("delete auto shopping items: %w", err)
	}
	return nil
}

// PropagateRename pushes an inventory item's new name and category onto
// shopping rows that match either the old or the new name.
func (s *ShoppingStore) PropagateRename(oldName, newName string, category model.Category) error {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET name = ?, category = ? WHERE name = ? COLLATE NOCASE OR name = ? COLLATE NOCASE`,
		newName, category, oldName, newName,
	)
	if err != nil {
		return fmt.Errorf("propagate rename: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
