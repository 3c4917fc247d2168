package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/noamsh/makolet/internal/backup"
	"github.com/noamsh/makolet/internal/store"
	"github.com/noamsh/makolet/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	backupManager *backup.Manager
	hub           *websocket.Hub
}

func NewSettingsHandler(ss *store.SettingsStore, bm *backup.Manager, hub *websocket.Hub) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, backupManager: bm, hub: hub}
}

func (h *SettingsHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *SettingsHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.GetAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := validateSettings(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s3Changed := false
	for key, value := range req {
		if err := h.settingsStore.Set(key, value); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to save settings"})
			return
		}
		if s3Keys[key] {
			s3Changed = true
		}
	}

	if s3Changed && h.backupManager != nil {
		cfg, err := backup.LoadS3Config(h.settingsStore)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reload backup config"})
			return
		}
		h.backupManager.UpdateS3Config(cfg)
	}

	h.broadcast(websocket.NewMessage(websocket.EntitySettings, websocket.ActionUpdated, 0, nil))

	settings, err := h.settingsStore.GetAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get settings"})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

var s3Keys = map[string]bool{
	"backup_s3_bucket":     true,
	"backup_s3_region":     true,
	"backup_s3_endpoint":   true,
	"backup_s3_access_key": true,
	"backup_s3_secret_key": true,
}

var allowedSettingKeys = map[string]bool{
	"user_name":             true,
	"partner_name":          true,
	"backup_enabled":        true,
	"backup_schedule_hour":  true,
	"backup_retention_days": true,
	"backup_s3_bucket":      true,
	"backup_s3_region":      true,
	"backup_s3_endpoint":    true,
	"backup_s3_access_key":  true,
	"backup_s3_secret_key":  true,
}

func validateSettings(settings map[string]string) error {
	for key, value := range settings {
		if !allowedSettingKeys[key] {
			return fmt.Errorf("unknown setting: %s", key)
		}
		switch key {
		case "backup_enabled":
			if value != "true" && value != "false" {
				return fmt.Errorf("backup_enabled must be true or false")
			}
		case "backup_schedule_hour":
			hour, err := strconv.Atoi(value)
			if err != nil || hour < 0 || hour > 23 {
				return fmt.Errorf("backup_schedule_hour must be 0-23")
			}
		case "backup_retention_days":
			days, err := strconv.Atoi(value)
			if err != nil || days < 1 {
				return fmt.Errorf("backup_retention_days must be a positive number")
			}
		}
	}
	return nil
}
