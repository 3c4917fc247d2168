package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/noamsh/makolet/internal/category"
	"github.com/noamsh/makolet/internal/reconcile"
	"github.com/noamsh/makolet/internal/voice"
	"github.com/noamsh/makolet/internal/websocket"
)

type VoiceHandler struct {
	reconciler *reconcile.Reconciler
	classifier *category.Classifier
	hub        *websocket.Hub
}

func NewVoiceHandler(r *reconcile.Reconciler, c *category.Classifier, hub *websocket.Hub) *VoiceHandler {
	return &VoiceHandler{reconciler: r, classifier: c, hub: hub}
}

func (h *VoiceHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type parseTranscriptRequest struct {
	Transcript string `json:"transcript"`
}

type parseTranscriptResponse struct {
	Recognized bool         `json:"recognized"`
	Target     string       `json:"target"`
	Items      []voice.Item `json:"items"`
}

func targetName(t voice.Target) string {
	switch t {
	case voice.TargetInventory:
		return "inventory"
	case voice.TargetShopping:
		return "shopping"
	}
	return ""
}

// Parse turns a finalized transcript into a reviewable item list. Nothing
// is written yet; the client shows the preview and calls Confirm.
func (h *VoiceHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Transcript = strings.TrimSpace(req.Transcript)
	if req.Transcript == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "transcript is required"})
		return
	}

	target, remainder := voice.DetectCommand(req.Transcript)
	items := voice.ParseTranscript(remainder, h.classifier.Classify)
	if items == nil {
		items = []voice.Item{}
	}

	writeJSON(w, http.StatusOK, parseTranscriptResponse{
		Recognized: len(items) > 0,
		Target:     targetName(target),
		Items:      items,
	})
}

type confirmVoiceRequest struct {
	Target  string       `json:"target"`
	Items   []voice.Item `json:"items"`
	AddedBy string       `json:"added_by"`
}

// Confirm applies a reviewed item list. Inventory targets restock the
// pantry and record a trip; everything else lands on the shopping list.
func (h *VoiceHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	for i := range req.Items {
		req.Items[i].Name = strings.TrimSpace(req.Items[i].Name)
		if req.Items[i].Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item name is required"})
			return
		}
		if req.Items[i].Quantity <= 0 {
			req.Items[i].Quantity = 1
		}
		if req.Items[i].Category == "" {
			req.Items[i].Category = h.classifier.Classify(req.Items[i].Name)
		}
	}

	switch req.Target {
	case "inventory":
		items, err := h.reconciler.AddPurchasedItems(req.Items)
		if err != nil {
			slog.Error("failed to restock from voice items", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add items"})
			return
		}
		h.broadcast(websocket.NewMessage(websocket.EntityInventory, websocket.ActionReconciled, 0, nil))
		h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
		h.broadcast(websocket.NewMessage(websocket.EntityGroceryList, websocket.ActionUpdated, 0, nil))
		writeJSON(w, http.StatusOK, items)
	default:
		items, err := h.reconciler.AddShoppingItems(req.Items, strings.TrimSpace(req.AddedBy))
		if err != nil {
			slog.Error("failed to add voice items to shopping list", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add items"})
			return
		}
		h.broadcast(websocket.NewMessage(websocket.EntityShopping, websocket.ActionReconciled, 0, nil))
		writeJSON(w, http.StatusOK, items)
	}
}
