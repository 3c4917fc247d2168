package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/noamsh/makolet/internal/category"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/quantity"
	"github.com/noamsh/makolet/internal/reconcile"
	"github.com/noamsh/makolet/internal/store"
	"github.com/noamsh/makolet/internal/websocket"
)

type InventoryHandler struct {
	inventoryStore *store.InventoryStore
	reconciler     *reconcile.Reconciler
	classifier     *category.Classifier
	hub            *websocket.Hub
}

func NewInventoryHandler(is *store.InventoryStore, r *reconcile.Reconciler, c *category.Classifier, hub *websocket.Hub) *InventoryHandler {
	return &InventoryHandler{inventoryStore: is, reconciler: r, classifier: c, hub: hub}
}

func (h *InventoryHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type inventoryItemRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Quantity       string `json:"quantity"`
	MinQuantity    string `json:"min_quantity"`
	ExpirationDate string `json:"expiration_date"` // YYYY-MM-DD, empty clears
	Notes          string `json:"notes"`
}

func parseExpiration(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventoryStore.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}

	if r.URL.Query().Get("low_stock") == "true" {
		low := make([]model.InventoryItem, 0, len(items))
		for _, item := range items {
			if item.LowStock() {
				low = append(low, item)
			}
		}
		items = low
	}

	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	existing, err := h.inventoryStore.FindByName(req.Name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "item already exists"})
		return
	}

	qty := 0.0
	if req.Quantity != "" {
		parsed, ok := quantity.Parse(req.Quantity)
		if !ok || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		qty = parsed
	}

	min := 1.0
	if req.MinQuantity != "" {
		parsed, ok := quantity.Parse(req.MinQuantity)
		if !ok || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_quantity"})
			return
		}
		min = parsed
	}

	expiration, err := parseExpiration(req.ExpirationDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expiration_date"})
		return
	}

	cat := model.Category(req.Category)
	if cat == "" {
		cat = h.classifier.Classify(req.Name)
	}

	item, err := h.inventoryStore.Create(model.InventoryItem{
		Name:           req.Name,
		Category:       cat,
		Quantity:       qty,
		MinQuantity:    min,
		ExpirationDate: expiration,
		Notes:          req.Notes,
	})
	if err != nil {
		slog.Error("failed to create inventory item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityInventory, websocket.ActionCreated, item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

// Update goes through the reconciler so category corrections are
// remembered and renames follow the item onto the shopping list.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.inventoryStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		item.Name = name
	}
	if req.Category != "" {
		item.Category = model.Category(req.Category)
	}
	if req.Quantity != "" {
		parsed, ok := quantity.Parse(req.Quantity)
		if !ok || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		item.Quantity = parsed
	}
	if req.MinQuantity != "" {
		parsed, ok := quantity.Parse(req.MinQuantity)
		if !ok || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_quantity"})
			return
		}
		item.MinQuantity = parsed
	}
	expiration, err := parseExpiration(req.ExpirationDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expiration_date"})
		return
	}
	item.ExpirationDate = expiration
	item.Notes = req.Notes

	updated, err := h.reconciler.UpdateInventoryItem(*item)
	if err != nil {
		slog.Error("failed to update inventory item", "item_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityInventory, websocket.ActionUpdated, updated.ID, nil))
	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
	writeJSON(w, http.StatusOK, updated)
}

type adjustRequest struct {
	Delta float64 `json:"delta"`
}

func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delta is required"})
		return
	}

	item, err := h.reconciler.AdjustQuantity(id, req.Delta)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to adjust quantity"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityInventory, websocket.ActionUpdated, item.ID, nil))
	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
	writeJSON(w, http.StatusOK, item)
}

type minQuantityRequest struct {
	MinQuantity string `json:"min_quantity"`
}

func (h *InventoryHandler) SetMinQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req minQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	min, ok := quantity.Parse(req.MinQuantity)
	if !ok || min < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid min_quantity"})
		return
	}

	item, err := h.reconciler.SetMinQuantity(id, min)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set minimum"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityInventory, websocket.ActionUpdated, item.ID, nil))
	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.reconciler.DeleteInventoryItem(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityInventory, websocket.ActionDeleted, id, nil))
	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Reconcile runs a low-stock and expiration sweep on demand, outside
// the hourly schedule.
func (h *InventoryHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if err := h.reconciler.Run(); err != nil {
		slog.Error("reconcile sweep failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reconcile failed"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
