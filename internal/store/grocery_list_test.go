package store

import (
	"testing"

	"github.com/noamsh/makolet/internal/database"
	"github.com/noamsh/makolet/internal/model"
)

func setupGroceryListTestDB(t *testing.T) *GroceryListStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGroceryListStore(db)
}

func TestGroceryListCreateAndGet(t *testing.T) {
	gs := setupGroceryListTestDB(t)

	list, err := gs.Create("2026-08-30", "שופרסל")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if list.ID == 0 {
		t.Error("expected nonzero id")
	}
	if list.Date != "2026-08-30" {
		t.Errorf("date = %q", list.Date)
	}
	if list.StoreName != "שופרסל" {
		t.Errorf("store name = %q", list.StoreName)
	}
	if len(list.Items) != 0 {
		t.Errorf("new list has %d items", len(list.Items))
	}
}

func TestGroceryListFindByDate(t *testing.T) {
	gs := setupGroceryListTestDB(t)

	first, _ := gs.Create("2026-08-30", "")
	gs.Create("2026-08-30", "שוק")
	gs.Create("2026-08-29", "")

	got, err := gs.FindByDate("2026-08-30")
	if err != nil {
		t.Fatalf("find by date: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("expected earliest list for the date, got %+v", got)
	}

	got, err = gs.FindByDate("2026-01-01")
	if err != nil {
		t.Fatalf("find by date: %v", err)
	}
	if got != nil {
		t.Error("expected nil for date with no list")
	}
}

func TestGroceryListItems(t *testing.T) {
	gs := setupGroceryListTestDB(t)

	list, _ := gs.Create("2026-08-30", "")

	if err := gs.AddItem(list.ID, "חלב", 2); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := gs.AddItem(list.ID, "ביצה", 12); err != nil {
		t.Fatalf("add item: %v", err)
	}

	item, err := gs.FindItemByName(list.ID, "חלב")
	if err != nil {
		t.Fatalf("find item: %v", err)
	}
	if item == nil || item.Quantity != 2 {
		t.Fatalf("got %+v", item)
	}

	if err := gs.SetItemQuantity(item.ID, 5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if err := gs.SetItemSelected(item.ID, true); err != nil {
		t.Fatalf("set selected: %v", err)
	}

	got, _ := gs.GetByID(list.ID)
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Errorf("quantity = %v, want 5", got.Items[0].Quantity)
	}
	if !got.Items[0].Selected {
		t.Error("expected item selected")
	}

	if err := gs.DeleteItem(item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}
	got, _ = gs.GetByID(list.ID)
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item after delete, got %d", len(got.Items))
	}
}

func TestGroceryListDeleteCascadesItems(t *testing.T) {
	gs := setupGroceryListTestDB(t)

	list, _ := gs.Create("2026-08-30", "")
	gs.AddItem(list.ID, "לחם", 1)

	if err := gs.Delete(list.ID); err != nil {
		t.Fatalf("delete list: %v", err)
	}
	var count int
	if err := gs.db.QueryRow(`SELECT COUNT(*) FROM grocery_list_items`).Scan(&count); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 items after cascade, got %d", count)
	}
}

func TestGroceryListInsertWithID(t *testing.T) {
	gs := setupGroceryListTestDB(t)

	err := gs.InsertWithID(model.GroceryList{
		ID:   11,
		Date: "2026-07-01",
		Items: []model.GroceryListItem{
			{ID: 3, ListID: 11, Name: "קמח", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("insert with id: %v", err)
	}
	got, err := gs.GetByID(11)
	if err != nil {
		t.Fatalf("get list: %v", err)
	}
	if got == nil || len(got.Items) != 1 || got.Items[0].ID != 3 {
		t.Fatalf("got %+v", got)
	}
}
