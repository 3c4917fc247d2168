package backup

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/store"
)

// Exporter builds full-state snapshots and merges them back in.
type Exporter struct {
	shopping  *store.ShoppingStore
	inventory *store.InventoryStore
	history   *store.HistoryStore
	lists     *store.GroceryListStore
	learned   *store.LearnedCategoryStore
	settings  *store.SettingsStore
}

func NewExporter(shopping *store.ShoppingStore, inventory *store.InventoryStore, history *store.HistoryStore, lists *store.GroceryListStore, learned *store.LearnedCategoryStore, settings *store.SettingsStore) *Exporter {
	return &Exporter{
		shopping:  shopping,
		inventory: inventory,
		history:   history,
		lists:     lists,
		learned:   learned,
		settings:  settings,
	}
}

// Export captures every collection into a snapshot with a fresh unique id.
func (e *Exporter) Export() (*model.Snapshot, error) {
	shopping, err := e.shopping.List()
	if err != nil {
		return nil, fmt.Errorf("export shopping list: %w", err)
	}
	inventory, err := e.inventory.List()
	if err != nil {
		return nil, fmt.Errorf("export inventory: %w", err)
	}
	history, err := e.history.List("")
	if err != nil {
		return nil, fmt.Errorf("export history: %w", err)
	}
	lists, err := e.lists.List()
	if err != nil {
		return nil, fmt.Errorf("export grocery lists: %w", err)
	}
	learned, err := e.learned.All()
	if err != nil {
		return nil, fmt.Errorf("export learned categories: %w", err)
	}
	settings, err := e.settings.GetAll()
	if err != nil {
		return nil, fmt.Errorf("export settings: %w", err)
	}

	return &model.Snapshot{
		Version:   model.SnapshotVersion,
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Data: model.SnapshotData{
			ShoppingList:      shopping,
			Inventory:         inventory,
			History:           history,
			LearnedCategories: learned,
			GroceryLists:      lists,
			Settings:          settings,
		},
	}, nil
}

// ImportStats counts what an import actually added.
type ImportStats struct {
	ShoppingItems  int `json:"shopping_items"`
	InventoryItems int `json:"inventory_items"`
	HistoryEntries int `json:"history_entries"`
	GroceryLists   int `json:"grocery_lists"`
	Learned        int `json:"learned_categories"`
	Settings       int `json:"settings"`
}

// Import merges a snapshot into the current state. Rows are matched by
// id: an id that already exists locally is skipped, never overwritten.
// Learned categories always take the imported value; settings are only
// filled in where no local value exists. Collections absent from the
// snapshot are left untouched.
func (e *Exporter) Import(snap *model.Snapshot) (ImportStats, error) {
	var stats ImportStats

	for _, item := range snap.Data.ShoppingList {
		existing, err := e.shopping.GetByID(item.ID)
		if err != nil {
			return stats, fmt.Errorf("import shopping item: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := e.shopping.InsertWithID(item); err != nil {
			return stats, err
		}
		stats.ShoppingItems++
	}

	for _, item := range snap.Data.Inventory {
		existing, err := e.inventory.GetByID(item.ID)
		if err != nil {
			return stats, fmt.Errorf("import inventory item: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := e.inventory.InsertWithID(item); err != nil {
			return stats, err
		}
		stats.InventoryItems++
	}

	for _, entry := range snap.Data.History {
		existing, err := e.history.GetByID(entry.ID)
		if err != nil {
			return stats, fmt.Errorf("import history entry: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := e.history.InsertWithID(entry); err != nil {
			return stats, err
		}
		stats.HistoryEntries++
	}

	for _, list := range snap.Data.GroceryLists {
		existing, err := e.lists.GetByID(list.ID)
		if err != nil {
			return stats, fmt.Errorf("import grocery list: %w", err)
		}
		if existing != nil {
			continue
		}
		if err := e.lists.InsertWithID(list); err != nil {
			return stats, err
		}
		stats.GroceryLists++
	}

	for name, cat := range snap.Data.LearnedCategories {
		if err := e.learned.Set(name, cat); err != nil {
			return stats, err
		}
		stats.Learned++
	}

	for key, value := range snap.Data.Settings {
		current, err := e.settings.Get(key)
		if err != nil {
			return stats, err
		}
		if current != "" {
			continue
		}
		if err := e.settings.Set(key, value); err != nil {
			return stats, err
		}
		stats.Settings++
	}

	return stats, nil
}
