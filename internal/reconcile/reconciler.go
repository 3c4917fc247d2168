// Package reconcile keeps the shopping list, the pantry inventory, and
// the purchase history consistent with each other. Every mutation that
// touches more than one collection lives here.
package reconcile

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/store"
	"github.com/noamsh/makolet/internal/voice"
)

type Reconciler struct {
	shopping  *store.ShoppingStore
	inventory *store.InventoryStore
	history   *store.HistoryStore
	lists     *store.GroceryListStore
	learned   *store.LearnedCategoryStore
}

func New(shopping *store.ShoppingStore, inventory *store.InventoryStore, history *store.HistoryStore, lists *store.GroceryListStore, learned *store.LearnedCategoryStore) *Reconciler {
	return &Reconciler{
		shopping:  shopping,
		inventory: inventory,
		history:   history,
		lists:     lists,
		learned:   learned,
	}
}

// Purchase records that quantity units of a shopping item were bought.
// The shopping row becomes a history entry, the quantity merges into
// inventory (creating the pantry item if it is new), and the shopping
// row is removed. Returns nil when the shopping item does not exist.
func (r *Reconciler) Purchase(itemID int64, quantity float64, purchasedBy string) (*model.HistoryEntry, error) {
	item, err := r.shopping.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("purchase quantity must be positive, got %v", quantity)
	}

	entry, err := r.history.Append(model.HistoryEntry{
		Name:        item.Name,
		Category:    item.Category,
		Quantity:    quantity,
		PurchasedBy: purchasedBy,
		Notes:       item.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	if err := r.stockUp(item.Name, item.Category, quantity, item.Notes); err != nil {
		return nil, err
	}

	if err := r.shopping.Delete(item.ID); err != nil {
		return nil, err
	}

	slog.Info("purchase reconciled", "name", item.Name, "quantity", quantity, "by", purchasedBy)
	return entry, nil
}

// stockUp merges quantity into the inventory item of the same name,
// creating it when absent.
func (r *Reconciler) stockUp(name string, category model.Category, quantity float64, notes string) error {
	existing, err := r.inventory.FindByName(name)
	if err != nil {
		return err
	}
	if existing != nil {
		return r.inventory.SetQuantity(existing.ID, existing.Quantity+quantity, true)
	}
	_, err = r.inventory.Create(model.InventoryItem{
		Name:        name,
		Category:    category,
		Quantity:    quantity,
		MinQuantity: 1,
		Notes:       notes,
	})
	return err
}

// AdjustQuantity applies a delta to an inventory quantity, clamping at
// zero. Dropping to or below the minimum auto-adds the item to the
// shopping list. Returns nil when the item does not exist.
func (r *Reconciler) AdjustQuantity(itemID int64, delta float64) (*model.InventoryItem, error) {
	item, err := r.inventory.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	item.Quantity = math.Max(0, item.Quantity+delta)
	if err := r.inventory.SetQuantity(item.ID, item.Quantity, false); err != nil {
		return nil, err
	}

	if item.LowStock() {
		if _, err := r.ensureOnShoppingList(item, lowStockNote(item)); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// SetMinQuantity changes the restock threshold. The shopping list
// follows: low stock ensures an auto-added row, sufficient stock
// removes any auto-added rows for the item. Returns nil when the item
// does not exist.
func (r *Reconciler) SetMinQuantity(itemID int64, minQuantity float64) (*model.InventoryItem, error) {
	if minQuantity < 0 {
		return nil, fmt.Errorf("minimum quantity must not be negative, got %v", minQuantity)
	}
	item, err := r.inventory.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	item.MinQuantity = minQuantity
	if err := r.inventory.SetMinQuantity(item.ID, minQuantity); err != nil {
		return nil, err
	}

	if item.LowStock() {
		if _, err := r.ensureOnShoppingList(item, lowStockNote(item)); err != nil {
			return nil, err
		}
	} else {
		if err := r.shopping.DeleteAutoByName(item.Name); err != nil {
			return nil, err
		}
	}
	return item, nil
}

// UpdateInventoryItem saves an edited pantry item. The chosen category
// is remembered for future classification, and shopping rows carrying
// the old or the new name are renamed and recategorized to match.
func (r *Reconciler) UpdateInventoryItem(item model.InventoryItem) (*model.InventoryItem, error) {
	old, err := r.inventory.GetByID(item.ID)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, nil
	}

	item.Quantity = math.Max(0, item.Quantity)
	// Zero is a valid minimum ("never auto-add"); only negatives clamp.
	item.MinQuantity = math.Max(0, item.MinQuantity)
	updated, err := r.inventory.Update(item)
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(strings.TrimSpace(item.Name))
	if err := r.learned.Set(key, item.Category); err != nil {
		return nil, err
	}
	if err := r.shopping.PropagateRename(old.Name, item.Name, item.Category); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteInventoryItem removes a pantry item together with every
// shopping row of the same name.
func (r *Reconciler) DeleteInventoryItem(itemID int64) error {
	item, err := r.inventory.GetByID(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return nil
	}
	if err := r.inventory.Delete(item.ID); err != nil {
		return err
	}
	return r.shopping.DeleteByName(item.Name)
}

// Run sweeps the inventory for expired and low-stock items and
// auto-adds them to the shopping list. Items already on the list are
// skipped, so repeated runs are harmless.
func (r *Reconciler) Run() error {
	items, err := r.inventory.List()
	if err != nil {
		return err
	}

	now := time.Now()
	added := 0
	for i := range items {
		item := &items[i]
		if item.ExpiredAt(now) {
			ok, err := r.ensureOnShoppingList(item, expiredNote(item))
			if err != nil {
				return err
			}
			if ok {
				added++
			}
			continue
		}
		if item.LowStock() {
			ok, err := r.ensureOnShoppingList(item, lowStockNote(item))
			if err != nil {
				return err
			}
			if ok {
				added++
			}
		}
	}

	if added > 0 {
		slog.Info("inventory sweep added shopping items", "count", added)
	}
	return nil
}

// ensureOnShoppingList auto-adds one unit of the item unless any
// unpurchased row with the same name already exists. Reports whether a
// row was added.
func (r *Reconciler) ensureOnShoppingList(item *model.InventoryItem, note string) (bool, error) {
	existing, err := r.shopping.FindUnpurchasedByName(item.Name)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	_, err = r.shopping.Create(model.ShoppingItem{
		Name:     item.Name,
		Category: item.Category,
		Quantity: 1,
		AddedBy:  model.AutoAddedBy,
		Notes:    note,
	})
	if err != nil {
		return false, fmt.Errorf("auto-add %q: %w", item.Name, err)
	}
	return true, nil
}

func lowStockNote(item *model.InventoryItem) string {
	need := int(math.Ceil(item.MinQuantity - item.Quantity))
	return fmt.Sprintf("⚠️ קנה %d להגיע למינימום!", need)
}

func expiredNote(item *model.InventoryItem) string {
	return fmt.Sprintf("Expired on %s", item.ExpirationDate.Format("2.1.2006"))
}

// AddPurchasedItems stocks voice-recognized items into inventory,
// clears matching shopping rows, and records the trip on today's
// grocery list.
func (r *Reconciler) AddPurchasedItems(items []voice.Item) ([]model.InventoryItem, error) {
	var stocked []model.InventoryItem
	for _, v := range items {
		existing, err := r.inventory.FindByName(v.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := r.inventory.SetQuantity(existing.ID, existing.Quantity+v.Quantity, true); err != nil {
				return nil, err
			}
			existing.Quantity += v.Quantity
			stocked = append(stocked, *existing)
		} else {
			created, err := r.inventory.Create(model.InventoryItem{
				Name:        v.Name,
				Category:    v.Category,
				Quantity:    v.Quantity,
				MinQuantity: 1,
				Notes:       "נוסף בהקלטה חכמה",
			})
			if err != nil {
				return nil, err
			}
			stocked = append(stocked, *created)
		}

		if err := r.shopping.DeleteByName(v.Name); err != nil {
			return nil, err
		}
	}

	if err := r.recordTrip(items); err != nil {
		return nil, err
	}
	return stocked, nil
}

// recordTrip merges the items into the grocery list for today's date,
// creating the list on the first trip of the day.
func (r *Reconciler) recordTrip(items []voice.Item) error {
	if len(items) == 0 {
		return nil
	}
	today := time.Now().Format("2006-01-02")
	list, err := r.lists.FindByDate(today)
	if err != nil {
		return err
	}
	if list == nil {
		list, err = r.lists.Create(today, "")
		if err != nil {
			return err
		}
	}

	for _, v := range items {
		existing, err := r.lists.FindItemByName(list.ID, v.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := r.lists.SetItemQuantity(existing.ID, existing.Quantity+v.Quantity); err != nil {
				return err
			}
			continue
		}
		if err := r.lists.AddItem(list.ID, v.Name, v.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// AddShoppingItems puts voice-recognized items on the shopping list,
// merging quantities into existing unpurchased rows by name.
func (r *Reconciler) AddShoppingItems(items []voice.Item, addedBy string) ([]model.ShoppingItem, error) {
	if addedBy == "" {
		addedBy = "קולי"
	}
	return r.MergeShoppingItems(items, addedBy, "🎤 נוסף בהקלטה")
}

// MergeShoppingItems folds items into the shopping list: quantities sum
// into existing unpurchased rows, anything else becomes a new row with
// the given attribution and notes.
func (r *Reconciler) MergeShoppingItems(items []voice.Item, addedBy, notes string) ([]model.ShoppingItem, error) {
	var result []model.ShoppingItem
	for _, v := range items {
		existing, err := r.shopping.FindUnpurchasedByName(v.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := r.shopping.AddQuantity(existing.ID, v.Quantity); err != nil {
				return nil, err
			}
			existing.Quantity += v.Quantity
			result = append(result, *existing)
			continue
		}
		created, err := r.shopping.Create(model.ShoppingItem{
			Name:     v.Name,
			Category: v.Category,
			Quantity: v.Quantity,
			AddedBy:  addedBy,
			Notes:    notes,
		})
		if err != nil {
			return nil, err
		}
		result = append(result, *created)
	}
	return result, nil
}
