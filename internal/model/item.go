package model

import "time"

// AutoAddedBy marks shopping items created by the reconciler rather than a
// person. The min-quantity rules only ever remove entries carrying this
// sentinel; user-added entries are left alone.
const AutoAddedBy = "Auto"

// ShoppingItem is a request for a named good. At most one unpurchased item
// exists per case-insensitive name; the reconciler merges instead of
// duplicating.
type ShoppingItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Quantity  float64   `json:"quantity"`
	Purchased bool      `json:"purchased"`
	AddedBy   string    `json:"added_by"`
	AddedDate time.Time `json:"added_date"`
	Notes     string    `json:"notes"`
}

// InventoryItem is an on-hand stock record. At most one exists per
// case-insensitive name.
type InventoryItem struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Category       Category   `json:"category"`
	Quantity       float64    `json:"quantity"`
	MinQuantity    float64    `json:"min_quantity"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
	LastRestocked  time.Time  `json:"last_restocked"`
	Notes          string     `json:"notes"`
}

// LowStock reports whether the item is at or below its minimum quantity.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.MinQuantity
}

// ExpiredAt reports whether the item's expiration date has passed,
// comparing dates only (an item expiring today is not yet expired).
func (i InventoryItem) ExpiredAt(now time.Time) bool {
	if i.ExpirationDate == nil {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	ey, em, ed := i.ExpirationDate.Date()
	expiry := time.Date(ey, em, ed, 0, 0, 0, 0, now.Location())
	return expiry.Before(today)
}

// HistoryEntry records one completed purchase. The log is append-only.
type HistoryEntry struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	Quantity      float64   `json:"quantity"`
	PurchasedBy   string    `json:"purchased_by"`
	PurchasedDate time.Time `json:"purchased_date"`
	Notes         string    `json:"notes"`
}

// GroceryList is a dated snapshot of one shopping trip. Voice-derived
// items merge into the list for the current calendar date.
type GroceryList struct {
	ID        int64             `json:"id"`
	Date      string            `json:"date"` // YYYY-MM-DD
	StoreName string            `json:"store_name"`
	Items     []GroceryListItem `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
}

// GroceryListItem is one line of a trip snapshot.
type GroceryListItem struct {
	ID       int64   `json:"id"`
	ListID   int64   `json:"list_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Selected bool    `json:"selected"`
}
