package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/noamsh/makolet/internal/backup"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/websocket"
)

type SnapshotHandler struct {
	exporter *backup.Exporter
	hub      *websocket.Hub
}

func NewSnapshotHandler(e *backup.Exporter, hub *websocket.Hub) *SnapshotHandler {
	return &SnapshotHandler{exporter: e, hub: hub}
}

func (h *SnapshotHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Export serves the full state as a downloadable JSON file.
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.exporter.Export()
	if err != nil {
		slog.Error("snapshot export failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "export failed"})
		return
	}

	filename := fmt.Sprintf("makolet-backup-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	json.NewEncoder(w).Encode(snap)
}

// Import merges an uploaded snapshot into the current state. Existing
// rows win; the upload only ever fills gaps.
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snap model.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if snap.Version == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "not a snapshot file"})
		return
	}

	stats, err := h.exporter.Import(&snap)
	if err != nil {
		slog.Error("snapshot import failed", "snapshot_id", snap.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "import failed"})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntitySnapshot, websocket.ActionUpdated, 0, nil))
	writeJSON(w, http.StatusOK, stats)
}
