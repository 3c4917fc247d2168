package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/noamsh/makolet/internal/category"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/quantity"
	"github.com/noamsh/makolet/internal/reconcile"
	"github.com/noamsh/makolet/internal/store"
	"github.com/noamsh/makolet/internal/websocket"
)

type ShoppingHandler struct {
	shoppingStore *store.ShoppingStore
	reconciler    *reconcile.Reconciler
	classifier    *category.Classifier
	hub           *websocket.Hub
}

func NewShoppingHandler(ss *store.ShoppingStore, r *reconcile.Reconciler, c *category.Classifier, hub *websocket.Hub) *ShoppingHandler {
	return &ShoppingHandler{shoppingStore: ss, reconciler: r, classifier: c, hub: hub}
}

func (h *ShoppingHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type shoppingItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity string `json:"quantity"`
	AddedBy  string `json:"added_by"`
	Notes    string `json:"notes"`
}

func (h *ShoppingHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.shoppingStore.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	qty := 1.0
	if req.Quantity != "" {
		parsed, ok := quantity.Parse(req.Quantity)
		if !ok || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		qty = parsed
	}

	// Merge into an existing unpurchased entry instead of creating a
	// duplicate row for the same name.
	existing, err := h.shoppingStore.FindUnpurchasedByName(req.Name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}
	if existing != nil {
		if err := h.shoppingStore.AddQuantity(existing.ID, qty); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
			return
		}
		merged, err := h.shoppingStore.GetByID(existing.ID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
			return
		}
		h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionUpdated, merged.ID, nil))
		writeJSON(w, http.StatusOK, merged)
		return
	}

	cat := model.Category(req.Category)
	if cat == "" {
		cat = h.classifier.Classify(req.Name)
	}

	item, err := h.shoppingStore.Create(model.ShoppingItem{
		Name:     req.Name,
		Category: cat,
		Quantity: qty,
		AddedBy:  strings.TrimSpace(req.AddedBy),
		Notes:    req.Notes,
	})
	if err != nil {
		slog.Error("failed to create shopping item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionCreated, item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShoppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req shoppingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.shoppingStore.GetByID(id)
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
		if !ok || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		item.Quantity = parsed
	}
	if req.AddedBy != "" {
		item.AddedBy = req.AddedBy
	}
	item.Notes = req.Notes

	updated, err := h.shoppingStore.Update(*item)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionUpdated, updated.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

type purchaseRequest struct {
	Quantity    string `json:"quantity"`
	PurchasedBy string `json:"purchased_by"`
}

// Purchase records a buy: the entry moves to history, the bought amount
// lands in inventory, and the shopping row disappears.
func (h *ShoppingHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.shoppingStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	qty := item.Quantity
	if req.Quantity != "" {
		parsed, ok := quantity.Parse(req.Quantity)
		if !ok || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		qty = parsed
	}

	entry, err := h.reconciler.Purchase(id, qty, strings.TrimSpace(req.PurchasedBy))
	if err != nil {
		slog.Error("failed to record purchase", "item_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to record purchase"})
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionPurchased, id, nil))
	h.broadcast(websocket.NewMessage(websocket.EntityInventory, websocket.ActionReconciled, 0, nil))
	writeJSON(w, http.StatusOK, entry)
}

func (h *ShoppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.shoppingStore.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionDeleted, id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
