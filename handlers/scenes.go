package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"scenevault/models"
	"scenevault/services/reconcile"
	"scenevault/services/scenes"
)

type sceneService interface {
	List(userID string) ([]models.Scene, error)
	Get(userID, id string) (models.Scene, error)
	Create(userID string, input models.SceneUpsert) (models.Scene, error)
	Update(userID, id string, update models.SceneUpdate) (models.Scene, error)
	Delete(userID, id string) error
	DeleteBulk(userID string, ids []string) (int, error)
	SetCategoryBulk(userID string, ids []string, category models.Category) (int, error)
	SetStatusBulk(userID string, ids []string, status models.Status) (int, error)
	Stats(userID string) (models.Stats, error)
}

var _ sceneService = (*scenes.Service)(nil)

// ScenesHandler serves scene CRUD and bulk operations.
type ScenesHandler struct {
	Service    sceneService
	Reconciler *reconcile.Service
}

func NewScenesHandler(service sceneService, reconciler *reconcile.Service) *ScenesHandler {
	return &ScenesHandler{Service: service, Reconciler: reconciler}
}

func (h *ScenesHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.Service.List(requestUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *ScenesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.SceneUpsert
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	scene, err := h.Service.Create(requestUser(r), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, scene)
}

func (h *ScenesHandler) Get(w http.ResponseWriter, r *http.Request) {
	scene, err := h.Service.Get(requestUser(r), mux.Vars(r)["sceneID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *ScenesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update models.SceneUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	scene, err := h.Service.Update(requestUser(r), mux.Vars(r)["sceneID"], update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *ScenesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(requestUser(r), mux.Vars(r)["sceneID"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkRequest struct {
	IDs      []string        `json:"ids"`
	Category models.Category `json:"category,omitempty"`
	Status   models.Status   `json:"status,omitempty"`
}

func decodeBulk(w http.ResponseWriter, r *http.Request) (bulkRequest, bool) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return bulkRequest{}, false
	}
	if len(req.IDs) == 0 {
		http.Error(w, "ids are required", http.StatusBadRequest)
		return bulkRequest{}, false
	}
	return req, true
}

func (h *ScenesHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBulk(w, r)
	if !ok {
		return
	}
	deleted, err := h.Service.DeleteBulk(requestUser(r), req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *ScenesHandler) BulkCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBulk(w, r)
	if !ok {
		return
	}
	changed, err := h.Service.SetCategoryBulk(requestUser(r), req.IDs, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": changed})
}

func (h *ScenesHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBulk(w, r)
	if !ok {
		return
	}
	changed, err := h.Service.SetStatusBulk(requestUser(r), req.IDs, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": changed})
}

func (h *ScenesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(requestUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// CheckStatus re-checks availability of a single scene against the provider.
func (h *ScenesHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	sceneID := strings.TrimSpace(mux.Vars(r)["sceneID"])
	if sceneID == "" {
		http.Error(w, "scene id is required", http.StatusBadRequest)
		return
	}

	scene, err := h.Reconciler.CheckOne(r.Context(), requestUser(r), sceneID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scene)
}

func (h *ScenesHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
