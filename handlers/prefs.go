package handlers

import (
	"encoding/json"
	"net/http"

	"scenevault/models"
	"scenevault/services/prefs"
)

type prefsService interface {
	Get(userID string) (models.UserPrefs, error)
	Update(userID string, p models.UserPrefs) error
	UpdateFilter(userID string, fs models.FilterState) error
	SetAPIKey(userID, key string) error
}

var _ prefsService = (*prefs.Service)(nil)

// PrefsHandler serves per-user preferences. The API key is write-only: reads
// only reveal whether one is set.
type PrefsHandler struct {
	Service prefsService
}

func NewPrefsHandler(service prefsService) *PrefsHandler {
	return &PrefsHandler{Service: service}
}

type prefsResponse struct {
	Filter                models.FilterState        `json:"filter"`
	HasAPIKey             bool                      `json:"hasApiKey"`
	DeletedPlaylistVideos models.MissingVideoAction `json:"deletedPlaylistVideos"`
}

func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Get(requestUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefsResponse{
		Filter:                p.Filter,
		HasAPIKey:             p.YouTubeAPIKey != "",
		DeletedPlaylistVideos: p.DeletedPlaylistVideos,
	})
}

func (h *PrefsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)

	var req struct {
		Filter                *models.FilterState       `json:"filter,omitempty"`
		DeletedPlaylistVideos models.MissingVideoAction `json:"deletedPlaylistVideos,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	current, err := h.Service.Get(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Filter != nil {
		current.Filter = *req.Filter
	}
	if req.DeletedPlaylistVideos != "" {
		current.DeletedPlaylistVideos = req.DeletedPlaylistVideos
	}

	if err := h.Service.Update(userID, current); err != nil {
		writeError(w, err)
		return
	}
	h.Get(w, r)
}

func (h *PrefsHandler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	var fs models.FilterState
	if err := json.NewDecoder(r.Body).Decode(&fs); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateFilter(requestUser(r), fs); err != nil {
		writeError(w, err)
		return
	}
	h.Get(w, r)
}

func (h *PrefsHandler) SetAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.SetAPIKey(requestUser(r), req.APIKey); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"hasApiKey": req.APIKey != ""})
}

func (h *PrefsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
