package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"scenevault/models"
	"scenevault/services/playlists"
	"scenevault/services/syncer"
)

type playlistService interface {
	List(userID string) ([]models.Playlist, error)
	Rename(userID, playlistID, title string) (models.Playlist, error)
}

var _ playlistService = (*playlists.Service)(nil)

type syncService interface {
	Import(ctx context.Context, userID, playlistURL string, category models.Category) (syncer.Result, error)
	Refresh(ctx context.Context, userID, playlistID string, category models.Category) (syncer.Result, error)
	DeletePlaylist(userID, playlistID string) (int, error)
}

var _ syncService = (*syncer.Service)(nil)

// PlaylistsHandler serves playlist listing, import and lifecycle endpoints.
type PlaylistsHandler struct {
	Service playlistService
	Syncer  syncService
}

func NewPlaylistsHandler(service playlistService, sync syncService) *PlaylistsHandler {
	return &PlaylistsHandler{Service: service, Syncer: sync}
}

func (h *PlaylistsHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.Service.List(requestUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// Import fetches a playlist by URL and adds its videos to the collection.
func (h *PlaylistsHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string          `json:"url"`
		Category models.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Syncer.Import(r.Context(), requestUser(r), req.URL, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Refresh re-imports a known playlist, adding only videos not seen before.
func (h *PlaylistsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	playlistID := requirePlaylistID(w, r)
	if playlistID == "" {
		return
	}

	var req struct {
		Category models.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Syncer.Refresh(r.Context(), requestUser(r), playlistID, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PlaylistsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	playlistID := requirePlaylistID(w, r)
	if playlistID == "" {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	renamed, err := h.Service.Rename(requestUser(r), playlistID, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renamed)
}

// Delete removes a playlist record and cascades to its imported scenes.
func (h *PlaylistsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	playlistID := requirePlaylistID(w, r)
	if playlistID == "" {
		return
	}

	removed, err := h.Syncer.DeletePlaylist(requestUser(r), playlistID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"scenes_removed": removed})
}

func (h *PlaylistsHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func requirePlaylistID(w http.ResponseWriter, r *http.Request) string {
	playlistID := strings.TrimSpace(mux.Vars(r)["playlistID"])
	if playlistID == "" {
		http.Error(w, "playlist id is required", http.StatusBadRequest)
	}
	return playlistID
}
