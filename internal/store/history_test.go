package store

import (
	"testing"

	"github.com/noamsh/makolet/internal/database"
	"github.com/noamsh/makolet/internal/model"
)

func setupHistoryTestDB(t *testing.T) *HistoryStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHistoryStore(db)
}

func TestHistoryAppendAndList(t *testing.T) {
	hs := setupHistoryTestDB(t)

	entry, err := hs.Append(model.HistoryEntry{
		Name:        "חלב",
		Category:    model.CategoryDairy,
		Quantity:    2,
		PurchasedBy: "נועם",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected nonzero id")
	}
	if entry.PurchasedDate.IsZero() {
		t.Error("purchased_date should default to now")
	}

	hs.Append(model.HistoryEntry{Name: "לחם", Category: model.CategoryBakery, Quantity: 1})

	entries, err := hs.List("")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "לחם" {
		t.Errorf("entries[0].Name = %q, want newest first", entries[0].Name)
	}
}

func TestHistoryListFilter(t *testing.T) {
	hs := setupHistoryTestDB(t)

	hs.Append(model.HistoryEntry{Name: "חלב", Quantity: 1})
	hs.Append(model.HistoryEntry{Name: "חלב סויה", Quantity: 1})
	hs.Append(model.HistoryEntry{Name: "לחם", Quantity: 1})

	entries, err := hs.List("חלב")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 matching entries, got %d", len(entries))
	}
}
