package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/noamsh/makolet/internal/model"
)

type GroceryListStore struct {
	db *sql.DB
}

func NewGroceryListStore(db *sql.DB) *GroceryListStore {
	return &GroceryListStore{db: db}
}

func scanGroceryList(scanner interface{ Scan(...any) error }) (*model.GroceryList, error) {
	var l model.GroceryList
	err := scanner.Scan(&l.ID, &l.Date, &l.StoreName, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const groceryListCols = `id, date, store_name, created_at`
const groceryListItemCols = `id, list_id, name, quantity, selected`

func (s *GroceryListStore) Create(date, storeName string) (*model.GroceryList, error) {
	result, err := s.db.Exec(
		`INSERT INTO grocery_lists (date, store_name, created_at) VALUES (?, ?, ?)`,
		date, storeName, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert grocery list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroceryListStore) GetByID(id int64) (*model.GroceryList, error) {
	row := s.db.QueryRow(`SELECT `+groceryListCols+` FROM grocery_lists WHERE id = ?`, id)
	l, err := scanGroceryList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get grocery list: %w", err)
	}
	items, err := s.listItems(l.ID)
	if err != nil {
		return nil, err
	}
	l.Items = items
	return l, nil
}

// FindByDate returns the earliest list created for a calendar date
// (YYYY-MM-DD), the default merge target for voice-derived items, or nil.
func (s *GroceryListStore) FindByDate(date string) (*model.GroceryList, error) {
	row := s.db.QueryRow(`SELECT `+groceryListCols+` FROM grocery_lists WHERE date = ? ORDER BY id ASC LIMIT 1`, date)
	l, err := scanGroceryList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find grocery list by date: %w", err)
	}
	items, err := s.listItems(l.ID)
	if err != nil {
		return nil, err
	}
	l.Items = items
	return l, nil
}

// List returns all lists newest first, items included.
func (s *GroceryListStore) List() ([]model.GroceryList, error) {
	rows, err := s.db.Query(`SELECT ` + groceryListCols + ` FROM grocery_lists ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list grocery lists: %w", err)
	}
	defer rows.Close()

	var lists []model.GroceryList
	for rows.Next() {
		l, err := scanGroceryList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan grocery list: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		items, err := s.listItems(lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}
	return lists, nil
}

func (s *GroceryListStore) SetStoreName(id int64, storeName string) error {
	_, err := s.db.Exec(`UPDATE grocery_lists SET store_name = ? WHERE id = ?`, storeName, id)
	if err != nil {
		return fmt.Errorf("set store name: %w", err)
	}
	return nil
}

func (s *GroceryListStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete grocery list: %w", err)
	}
	return nil
}

// InsertWithID inserts a whole list, items included, preserving
// identifiers (snapshot import).
func (s *GroceryListStore) InsertWithID(list model.GroceryList) error {
	_, err := s.db.Exec(
		`INSERT INTO grocery_lists (`+groceryListCols+`) VALUES (?, ?, ?, ?)`,
		list.ID, list.Date, list.StoreName, list.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert grocery list with id: %w", err)
	}
	for _, item := range list.Items {
		_, err := s.db.Exec(
			`INSERT INTO grocery_list_items (`+groceryListItemCols+`) VALUES (?, ?, ?, ?, ?)`,
			item.ID, list.ID, item.Name, item.Quantity, boolToInt(item.Selected),
		)
		if err != nil {
			return fmt.Errorf("insert grocery list item with id: %w", err)
		}
	}
	return nil
}

// --- Item methods ---

func (s *GroceryListStore) listItems(listID int64) ([]model.GroceryListItem, error) {
	rows, err := s.db.Query(
		`SELECT `+groceryListItemCols+` FROM grocery_list_items WHERE list_id = ? ORDER BY id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list grocery list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryListItem
	for rows.Next() {
		var item model.GroceryListItem
		var selected int
		if err := rows.Scan(&item.ID, &item.ListID, &item.Name, &item.Quantity, &selected); err != nil {
			return nil, fmt.Errorf("scan grocery list item: %w", err)
		}
		item.Selected = selected != 0
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *GroceryListStore) AddItem(listID int64, name string, quantity float64) error {
	_, err := s.db.Exec(
		`INSERT INTO grocery_list_items (list_id, name, quantity) VALUES (?, ?, ?)`,
		listID, name, quantity,
	)
	if err != nil {
		return fmt.Errorf("add grocery list item: %w", err)
	}
	return nil
}

// FindItemByName returns the list item with the given name
// (case-insensitive), or nil.
func (s *GroceryListStore) FindItemByName(listID int64, name string) (*model.GroceryListItem, error) {
	row := s.db.QueryRow(
		`SELECT `+groceryListItemCols+` FROM grocery_list_items WHERE list_id = ? AND name = ? COLLATE NOCASE LIMIT 1`,
		listID, name,
	)
	var item model.GroceryListItem
	var selected int
	err := row.Scan(&item.ID, &item.ListID, &item.Name, &item.Quantity, &selected)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find grocery list item: %w", err)
	}
	item.Selected = selected != 0
	return &item, nil
}

func (s *GroceryListStore) SetItemQuantity(itemID int64, quantity float64) error {
	_, err := s.db.Exec(`UPDATE grocery_list_items SET quantity = ? WHERE id = ?`, quantity, itemID)
	if err != nil {
		return fmt.Errorf("set grocery list item quantity: %w", err)
	}
	return nil
}

func (s *GroceryListStore) SetItemSelected(itemID int64, selected bool) error {
	_, err := s.db.Exec(`UPDATE grocery_list_items SET selected = ? WHERE id = ?`, boolToInt(selected), itemID)
	if err != nil {
		return fmt.Errorf("set grocery list item selected: %w", err)
	}
	return nil
}

func (s *GroceryListStore) DeleteItem(itemID int64) error {
	_, err := s.db.Exec(`DELETE FROM grocery_list_items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("delete grocery list item: %w", err)
	}
	return nil
}
