// Package api mounts the HTTP surface onto the router and carries the
// cross-cutting middleware.
package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/mux"

	"scenevault/handlers"
)

// corsMiddleware handles CORS for API routes.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PINAuthMiddleware guards the API with the server PIN, supplied either as
// the X-PIN header or a pin query parameter.
func PINAuthMiddleware(pin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pin == "" {
				next.ServeHTTP(w, r)
				return
			}

			supplied := r.Header.Get("X-PIN")
			if supplied == "" {
				supplied = r.URL.Query().Get("pin")
			}
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(pin)) != 1 {
				http.Error(w, "invalid or missing PIN", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Register mounts API endpoints onto the provided router.
func Register(
	r *mux.Router,
	pin string,
	scenesHandler *handlers.ScenesHandler,
	playlistsHandler *handlers.PlaylistsHandler,
	reconcileHandler *handlers.ReconcileHandler,
	transferHandler *handlers.TransferHandler,
	prefsHandler *handlers.PrefsHandler,
	settingsHandler *handlers.SettingsHandler,
	tasksHandler *handlers.ScheduledTasksHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	// Health probe stays unauthenticated.
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(PINAuthMiddleware(pin))

	// Scenes
	protected.HandleFunc("/scenes", scenesHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/scenes", scenesHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/scenes", scenesHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/scenes/stats", scenesHandler.Stats).Methods(http.MethodGet)
	protected.HandleFunc("/scenes/bulk/delete", scenesHandler.BulkDelete).Methods(http.MethodPost)
	protected.HandleFunc("/scenes/bulk/category", scenesHandler.BulkCategory).Methods(http.MethodPost)
	protected.HandleFunc("/scenes/bulk/status", scenesHandler.BulkStatus).Methods(http.MethodPost)
	protected.HandleFunc("/scenes/{sceneID}", scenesHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/scenes/{sceneID}", scenesHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/scenes/{sceneID}", scenesHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/scenes/{sceneID}", scenesHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/scenes/{sceneID}/check", scenesHandler.CheckStatus).Methods(http.MethodPost)

	// Playlists
	protected.HandleFunc("/playlists", playlistsHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/playlists", playlistsHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/playlists/import", playlistsHandler.Import).Methods(http.MethodPost)
	protected.HandleFunc("/playlists/{playlistID}", playlistsHandler.Rename).Methods(http.MethodPut)
	protected.HandleFunc("/playlists/{playlistID}", playlistsHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/playlists/{playlistID}", playlistsHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/playlists/{playlistID}/refresh", playlistsHandler.Refresh).Methods(http.MethodPost)

	// Bulk availability reconciliation
	protected.HandleFunc("/check-status", reconcileHandler.Start).Methods(http.MethodPost)
	protected.HandleFunc("/check-status", reconcileHandler.Status).Methods(http.MethodGet)
	protected.HandleFunc("/check-status", reconcileHandler.Cancel).Methods(http.MethodDelete)
	protected.HandleFunc("/check-status", reconcileHandler.Options).Methods(http.MethodOptions)

	// Import / export
	protected.HandleFunc("/export", transferHandler.Export).Methods(http.MethodGet)
	protected.HandleFunc("/import", transferHandler.Import).Methods(http.MethodPost)
	protected.HandleFunc("/import", transferHandler.Options).Methods(http.MethodOptions)

	// Preferences
	protected.HandleFunc("/prefs", prefsHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/prefs", prefsHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/prefs", prefsHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/prefs/filter", prefsHandler.UpdateFilter).Methods(http.MethodPut)
	protected.HandleFunc("/prefs/api-key", prefsHandler.SetAPIKey).Methods(http.MethodPut)

	// Server settings
	protected.HandleFunc("/settings", settingsHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/settings", settingsHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/settings", settingsHandler.Options).Methods(http.MethodOptions)

	// Scheduled tasks
	protected.HandleFunc("/scheduled-tasks", tasksHandler.ListTasks).Methods(http.MethodGet)
	protected.HandleFunc("/scheduled-tasks", tasksHandler.CreateTask).Methods(http.MethodPost)
	protected.HandleFunc("/scheduled-tasks", tasksHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/scheduled-tasks/{taskID}", tasksHandler.UpdateTask).Methods(http.MethodPut)
	protected.HandleFunc("/scheduled-tasks/{taskID}", tasksHandler.DeleteTask).Methods(http.MethodDelete)
	protected.HandleFunc("/scheduled-tasks/{taskID}", tasksHandler.Options).Methods(http.MethodOptions)
	protected.HandleFunc("/scheduled-tasks/{taskID}/run", tasksHandler.RunTask).Methods(http.MethodPost)
}
