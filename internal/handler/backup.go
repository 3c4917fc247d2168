package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/noamsh/makolet/internal/backup"
	"github.com/noamsh/makolet/internal/model"
	"github.com/noamsh/makolet/internal/websocket"
)

type BackupHandler struct {
	manager *backup.Manager
	hub     *websocket.Hub
}

func NewBackupHandler(m *backup.Manager, hub *websocket.Hub) *BackupHandler {
	return &BackupHandler{manager: m, hub: hub}
}

func (h *BackupHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	backups, err := h.manager.List(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if backups == nil {
		backups = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, backups)
}

type backupRequest struct {
	Passphrase string `json:"passphrase"`
}

// Run triggers an immediate encrypted backup. The passphrase is cached
// for the scheduled runs that follow.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	id, err := h.manager.RunNow(r.Context(), req.Passphrase)
	if err != nil {
		slog.Error("backup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.manager.CachePassphrase(req.Passphrase)
	h.broadcast(websocket.NewMessage(websocket.EntityBackup, websocket.ActionCreated, id, nil))
	writeJSON(w, http.StatusOK, map[string]int64{"backup_id": id})
}

// Restore merges a stored snapshot back in. Current data is never
// overwritten; only missing rows are added.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req backupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Passphrase == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "passphrase is required"})
		return
	}

	stats, err := h.manager.Restore(r.Context(), id, req.Passphrase)
	if err != nil {
		slog.Error("restore failed", "backup_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	h.broadcast(websocket.NewMessage(websocket.EntitySnapshot, websocket.ActionUpdated, 0, nil))
	writeJSON(w, http.StatusOK, stats)
}

// Download streams the encrypted snapshot object as stored. Decryption
// happens wherever the file ends up, with the passphrase.
func (h *BackupHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	body, size, err := h.manager.Download(r.Context(), id)
	if err != nil {
		slog.Error("backup download failed", "backup_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("backup-%d.json.enc", id)))
	if size > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	}
	io.Copy(w, body)
}
