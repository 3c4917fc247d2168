package handler

import (
	"net/http"

	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/store"
)

type HistoryHandler struct {
	historyStore *store.HistoryStore
}

func NewHistoryHandler(hs *store.HistoryStore) *HistoryHandler {
	return &HistoryHandler{historyStore: hs}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.historyStore.List(r.URL.Query().Get("name"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list history"})
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
