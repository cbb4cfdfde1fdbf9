// Package handlers contains the HTTP surface of the server. Handlers decode
// requests, delegate to services and translate service errors to statuses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"scenevault/models"
	"scenevault/services/playlists"
	"scenevault/services/prefs"
	"scenevault/services/reconcile"
	"scenevault/services/scenes"
	"scenevault/services/syncer"
	"scenevault/services/transfer"
	"scenevault/services/youtube"
)

// requestUser resolves the acting user. Single-profile installs omit the
// header and fall back to the default user.
func requestUser(r *http.Request) string {
	if userID := strings.TrimSpace(r.Header.Get("X-User-ID")); userID != "" {
		return userID
	}
	return models.DefaultUserID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusForError(err))
}

// statusForError maps service errors onto HTTP statuses.
func statusForError(err error) int {
	var apiErr *youtube.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case youtube.CodeInvalidAPIKey:
			return http.StatusUnauthorized
		case youtube.CodeQuotaExceeded:
			return http.StatusTooManyRequests
		case youtube.CodePlaylistNotFound:
			return http.StatusNotFound
		default:
			return http.StatusBadGateway
		}
	}

	switch {
	case errors.Is(err, scenes.ErrNotFound),
		errors.Is(err, playlists.ErrNotFound),
		errors.Is(err, syncer.ErrNoVideosFound),
		errors.Is(err, reconcile.ErrNothingToCheck):
		return http.StatusNotFound
	case errors.Is(err, youtube.ErrAPIKeyRequired):
		return http.StatusUnauthorized
	case errors.Is(err, syncer.ErrPlaylistTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, reconcile.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, scenes.ErrUserIDRequired),
		errors.Is(err, scenes.ErrIDRequired),
		errors.Is(err, scenes.ErrTitleRequired),
		errors.Is(err, scenes.ErrInvalidPlatform),
		errors.Is(err, scenes.ErrInvalidCategory),
		errors.Is(err, scenes.ErrPlaylistInvariant),
		errors.Is(err, playlists.ErrUserIDRequired),
		errors.Is(err, playlists.ErrPlaylistIDRequired),
		errors.Is(err, playlists.ErrTitleRequired),
		errors.Is(err, syncer.ErrInvalidPlaylistURL),
		errors.Is(err, syncer.ErrInvalidCategory),
		errors.Is(err, transfer.ErrInvalidPayload),
		errors.Is(err, transfer.ErrUnknownFormat),
		errors.Is(err, transfer.ErrUnknownMode),
		errors.Is(err, prefs.ErrUserIDRequired),
		errors.Is(err, reconcile.ErrSceneNotChecked):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
