package model

import "time"

// SnapshotVersion tags exported snapshots so future formats can be told apart.
const SnapshotVersion = "1.0"

// Snapshot is a self-describing full-state export. It round-trips through
// JSON and merges back by id-union: rows whose id already exists locally
// are skipped, never overwritten.
type Snapshot struct {
	Version   string       `json:"version"`
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Data      SnapshotData `json:"data"`
}

// SnapshotData holds every persisted collection. Absent collections
// decode to nil and are skipped on import.
type SnapshotData struct {
	ShoppingList      []ShoppingItem      `json:"shopping_list"`
	Inventory         []InventoryItem     `json:"inventory"`
	History           []HistoryEntry      `json:"history"`
	LearnedCategories map[string]Category `json:"learned_categories"`
	GroceryLists      []GroceryList       `json:"grocery_lists"`
	Settings          map[string]string   `json:"settings"`
}
