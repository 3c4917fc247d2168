package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/noamsh/makolet/internal/category"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/quantity"
	"github.com/noamsh/makolet/internal/reconcile"
	"github.com/noamsh/makolet/internal/store"
	"github.com/noamsh/makolet/internal/voice"
	"github.com/noamsh/makolet/internal/websocket"
)

type GroceryListHandler struct {
	listStore  *store.GroceryListStore
	reconciler *reconcile.Reconciler
	classifier *category.Classifier
	hub        *websocket.Hub
}

func NewGroceryListHandler(ls *store.GroceryListStore, r *reconcile.Reconciler, c *category.Classifier, hub *websocket.Hub) *GroceryListHandler {
	return &GroceryListHandler{listStore: ls, reconciler: r, classifier: c, hub: hub}
}

func (h *GroceryListHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *GroceryListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.listStore.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list trips"})
		return
	}
	if lists == nil {
		lists = []model.GroceryList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *GroceryListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	list, err := h.listStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get trip"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type groceryListRequest struct {
	Date      string `json:"date"` // YYYY-MM-DD, defaults to today
	StoreName string `json:"store_name"`
}

func (h *GroceryListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req groceryListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}

	list, err := h.listStore.Create(date, strings.TrimSpace(req.StoreName))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create trip"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityGroceryList, websocket.ActionCreated, list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

func (h *GroceryListHandler) SetStoreName(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req groceryListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.listStore.SetStoreName(id, strings.TrimSpace(req.StoreName)); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update trip"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityGroceryList, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *GroceryListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.listStore.Delete(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete trip"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityGroceryList, websocket.ActionDeleted, id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type groceryListItemRequest struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Selected *bool  `json:"selected"`
}

func (h *GroceryListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req groceryListItemRequest
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

	list, err := h.listStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}

	// Same-name lines merge rather than repeat.
	if existing, err := h.listStore.FindItemByName(id, req.Name); err == nil && existing != nil {
		if err := h.listStore.SetItemQuantity(existing.ID, existing.Quantity+qty); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
			return
		}
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	} else if err := h.listStore.AddItem(id, req.Name, qty); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}

	updated, err := h.listStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityGroceryList, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, updated)
}

func parseItemIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("item_id"), 10, 64)
}

func (h *GroceryListHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	itemID, err := parseItemIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return
	}

	var req groceryListItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Quantity != "" {
		parsed, ok := quantity.Parse(req.Quantity)
		if !ok || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid quantity"})
			return
		}
		if err := h.listStore.SetItemQuantity(itemID, parsed); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
			return
		}
	}
	if req.Selected != nil {
		if err := h.listStore.SetItemSelected(itemID, *req.Selected); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
			return
		}
	}

	h.broadcast(websocket.NewMessage(websocket.EntityGroceryList, websocket.ActionUpdated, listID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type toShoppingRequest struct {
	AddedBy string `json:"added_by"`
}

// ToShoppingList copies the trip's selected lines onto the shopping
// list, merging with any unpurchased same-name entries.
func (h *GroceryListHandler) ToShoppingList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req toShoppingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	list, err := h.listStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get trip"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "trip not found"})
		return
	}

	var items []voice.Item
	for _, line := range list.Items {
		if !line.Selected {
			continue
		}
		items = append(items, voice.Item{
			Name:     line.Name,
			Quantity: line.Quantity,
			Category: h.classifier.Classify(line.Name),
		})
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no items selected"})
		return
	}

	added, err := h.reconciler.MergeShoppingItems(items, strings.TrimSpace(req.AddedBy), "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add items"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
	writeJSON(w, http.StatusOK, added)
}

func (h *GroceryListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	itemID, err := parseItemIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item_id"})
		return
	}

	if err := h.listStore.DeleteItem(itemID); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntityGroceryList, websocket.ActionUpdated, listID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
