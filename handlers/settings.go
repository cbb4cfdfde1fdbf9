package handlers

import (
	"encoding/json"
	"net/http"

	"scenevault/config"
)

// SettingsHandler exposes the server configuration. The PIN is never echoed
// back; it is only delivered once on first boot via the server log.
type SettingsHandler struct {
	Manager *config.Manager
}

func NewSettingsHandler(manager *config.Manager) *SettingsHandler {
	return &SettingsHandler{Manager: manager}
}

func redact(s config.Settings) config.Settings {
	s.Server.PIN = ""
	s.Server.APIKey = ""
	return s
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Manager.Load()
	if err != nil {
		http.Error(w, "load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, redact(settings))
}

// Update applies changes to the tunable sections. Server PIN and scheduled
// tasks have their own endpoints and are ignored here.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		YouTube *config.YouTubeSettings `json:"youtube,omitempty"`
		Log     *config.LogConfig       `json:"log,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.Manager.Load()
	if err != nil {
		http.Error(w, "load settings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if req.YouTube != nil {
		settings.YouTube = *req.YouTube
	}
	if req.Log != nil {
		settings.Log = *req.Log
	}

	if err := h.Manager.Save(settings); err != nil {
		http.Error(w, "save settings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, redact(settings))
}

func (h *SettingsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
